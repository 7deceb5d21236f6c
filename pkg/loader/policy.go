package loader

import (
	"github.com/pkg/errors"
)

// DuplicatePolicy decides what happens when a mapping repeats a key.
type DuplicatePolicy string

const (
	// RejectDuplicates fails the load with a DuplicateKeyError. It is the default.
	RejectDuplicates DuplicatePolicy = "reject"
	// KeepLastDuplicate keeps the last occurrence of each repeated key, whole subtree included,
	// and logs a warning for every dropped occurrence.
	KeepLastDuplicate DuplicatePolicy = "last"
)

// ParseDuplicatePolicy parses a policy name; the empty string is the default policy.
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch DuplicatePolicy(s) {
	case "", RejectDuplicates:
		return RejectDuplicates, nil
	case KeepLastDuplicate:
		return KeepLastDuplicate, nil
	default:
		return "", errors.Errorf("unknown duplicate key policy %q (want %q or %q)",
			s, RejectDuplicates, KeepLastDuplicate)
	}
}

// String implements pflag.Value.
func (p DuplicatePolicy) String() string {
	if p == "" {
		return string(RejectDuplicates)
	}
	return string(p)
}

// Set implements pflag.Value.
func (p *DuplicatePolicy) Set(s string) error {
	parsed, err := ParseDuplicatePolicy(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Type implements pflag.Value.
func (p DuplicatePolicy) Type() string {
	return "policy"
}
