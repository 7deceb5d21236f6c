package check

import (
	"testing"
)

func TestContains(t *testing.T) {
	type args struct {
		actual     interface{}
		expected   []interface{}
		msgAndArgs []interface{}
	}
	type testCase struct {
		name    string
		args    args
		wantErr bool
	}
	tests := []testCase{
		{"nil value", args{expected: []interface{}{nil}}, false},
		{"nil list", args{}, true},
		{"contains", args{actual: "RandomSampler", expected: []interface{}{"RandomSampler"}}, false},
		{"not contains", args{actual: 1, expected: []interface{}{0, 2, 3}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Contains(tt.args.actual, tt.args.expected, tt.args.msgAndArgs...)
			if (err != nil) != tt.wantErr {
				t.Errorf("Contains() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSameLength(t *testing.T) {
	if err := SameLength(2, 2); err != nil {
		t.Errorf("SameLength(2, 2) = %v, want nil", err)
	}
	err := SameLength(2, 1, "roots and types")
	if err == nil || err.Error() != "roots and types: lengths differ: 2 != 1" {
		t.Errorf("SameLength(2, 1) = %v", err)
	}
}
