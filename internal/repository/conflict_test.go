package repository

import (
	"errors"
	"testing"
)

func TestIsDuplicateKeyErr(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"duplicate entry message", errors.New("Error 1062: Duplicate entry 'x' for key 'idx'"), true},
		{"bare error code", errors.New("Error 1062 (23000)"), true},
		{"unrelated error", errors.New("connection refused"), false},
	}
	for _, c := range cases {
		if got := isDuplicateKeyErr(c.err); got != c.want {
			t.Errorf("%s: isDuplicateKeyErr() = %v, want %v", c.name, got, c.want)
		}
	}
}
