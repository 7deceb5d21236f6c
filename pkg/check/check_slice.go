package check

// Contains checks whether the actual value is contained in the expected list. This method returns
// an error with the provided message if the check fails.
func Contains(actual interface{}, expected []interface{}, msgAndArgs ...interface{}) error {
	for _, value := range expected {
		if value == actual {
			return nil
		}
	}
	return check(false, msgAndArgs, "%v not in %v", actual, expected)
}

// SameLength checks whether two slices have the same number of elements.
func SameLength(a, b int, msgAndArgs ...interface{}) error {
	return check(a == b, msgAndArgs, "lengths differ: %d != %d", a, b)
}
