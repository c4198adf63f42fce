package internal

import (
	"strconv"
	"testing"
)

func TestNewCodeDigitCount(t *testing.T) {
	for digits := 4; digits <= 10; digits++ {
		code, err := NewCode(digits)
		if err != nil {
			t.Fatalf("NewCode(%d) failed: %v", digits, err)
		}
		if len(code) != digits {
			t.Fatalf("NewCode(%d) returned %q", digits, code)
		}
		if code[0] == '0' {
			t.Fatalf("NewCode(%d) returned leading zero: %q", digits, code)
		}
		if _, err := strconv.ParseInt(code, 10, 64); err != nil {
			t.Fatalf("NewCode(%d) returned non-numeric %q", digits, code)
		}
	}
}

func TestNewCodeRejectsBadLength(t *testing.T) {
	for _, digits := range []int{0, 3, 11} {
		if _, err := NewCode(digits); err == nil {
			t.Errorf("NewCode(%d): expected error", digits)
		}
	}
}

func TestNewCodeVaries(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 32; i++ {
		code, err := NewCode(6)
		if err != nil {
			t.Fatalf("NewCode failed: %v", err)
		}
		seen[code] = true
	}
	// 32 draws from a 900000-value space should essentially never collapse
	// to a handful of values.
	if len(seen) < 16 {
		t.Fatalf("suspiciously low code variety: %d distinct of 32", len(seen))
	}
}
