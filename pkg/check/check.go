package check

import (
	"fmt"

	"github.com/pkg/errors"
)

// check returns nil when condition holds. Otherwise the error message is built from the caller's
// msgAndArgs followed by the default description of the failed check.
func check(condition bool, msgAndArgs []interface{}, defaultMsg string, args ...interface{}) error {
	if condition {
		return nil
	}
	description := fmt.Sprintf(defaultMsg, args...)
	if msg := messageFromMsgAndArgs(msgAndArgs...); msg != "" {
		return errors.Errorf("%s: %s", msg, description)
	}
	return errors.New(description)
}

// Panic panics if the provided error is not nil.
func Panic(err error) {
	if err != nil {
		panic(err)
	}
}

// True checks whether the condition is true.
func True(condition bool, msgAndArgs ...interface{}) error {
	return check(condition, msgAndArgs, "expected true, got false")
}

// False checks whether the condition is false.
func False(condition bool, msgAndArgs ...interface{}) error {
	return check(!condition, msgAndArgs, "expected false, got true")
}

// Equal checks whether the actual value is equal to the expected value.
func Equal(actual, expected interface{}, msgAndArgs ...interface{}) error {
	return check(actual == expected, msgAndArgs,
		"%s is not equal to %s", format(actual), format(expected))
}

// NotEmpty checks whether the string is not empty.
func NotEmpty(actual string, msgAndArgs ...interface{}) error {
	return check(actual != "", msgAndArgs, "expected a non-empty string")
}

// GreaterThan checks whether actual is strictly greater than expected.
func GreaterThan(actual, expected float64, msgAndArgs ...interface{}) error {
	return check(actual > expected, msgAndArgs, "%v is not greater than %v", actual, expected)
}

// GreaterThanOrEqualTo checks whether actual is greater than or equal to expected.
func GreaterThanOrEqualTo(actual, expected float64, msgAndArgs ...interface{}) error {
	return check(actual >= expected, msgAndArgs,
		"%v is not greater than or equal to %v", actual, expected)
}

// LessThan checks whether actual is strictly less than expected.
func LessThan(actual, expected float64, msgAndArgs ...interface{}) error {
	return check(actual < expected, msgAndArgs, "%v is not less than %v", actual, expected)
}

// LessThanOrEqualTo checks whether actual is less than or equal to expected.
func LessThanOrEqualTo(actual, expected float64, msgAndArgs ...interface{}) error {
	return check(actual <= expected, msgAndArgs,
		"%v is not less than or equal to %v", actual, expected)
}

// Between checks whether lo <= actual <= hi.
func Between(actual, lo, hi float64, msgAndArgs ...interface{}) error {
	return check(lo <= actual && actual <= hi, msgAndArgs,
		"%v is not in [%v, %v]", actual, lo, hi)
}

// In checks whether the actual string is one of the expected strings.
func In(actual string, expected []string, msgAndArgs ...interface{}) error {
	for _, value := range expected {
		if value == actual {
			return nil
		}
	}
	return check(false, msgAndArgs, "%q not in %v", actual, expected)
}
