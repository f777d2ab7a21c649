package generator

import (
	"strings"
	"testing"
)

func TestGenerateLengthAndAlphabet(t *testing.T) {
	for _, length := range []int{4, 8, 32, 128} {
		pw, err := Generate(length, Alnum)
		if err != nil {
			t.Fatalf("Generate(%d, Alnum): %v", length, err)
		}
		got := pw.Expose()
		if len(got) != length {
			t.Fatalf("length = %d, want %d", len(got), length)
		}
		for _, r := range got {
			if !strings.ContainsRune(lower+upper+digits, r) {
				t.Fatalf("character %q outside alnum alphabet", r)
			}
		}
		assertClassCoverage(t, got)
	}
}

func TestGenerateFullAlphabet(t *testing.T) {
	pw, err := Generate(64, Full)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	got := pw.Expose()
	for _, r := range got {
		if !strings.ContainsRune(lower+upper+digits+symbols, r) {
			t.Fatalf("character %q outside full alphabet", r)
		}
	}
	assertClassCoverage(t, got)
}

func TestGenerateRejectsOutOfRangeLength(t *testing.T) {
	if _, err := Generate(3, Alnum); err == nil {
		t.Fatal("expected error for length below minimum")
	}
	if _, err := Generate(129, Alnum); err == nil {
		t.Fatal("expected error for length above maximum")
	}
}

func TestGenerateIsNotDeterministic(t *testing.T) {
	a, err := Generate(32, Alnum)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	b, err := Generate(32, Alnum)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if a.Expose() == b.Expose() {
		t.Fatal("two independently generated passwords collided")
	}
}

func assertClassCoverage(t *testing.T, s string) {
	t.Helper()
	var hasLower, hasUpper, hasDigit bool
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= '0' && r <= '9':
			hasDigit = true
		}
	}
	if !hasLower || !hasUpper || !hasDigit {
		t.Fatalf("password %q missing a required character class (lower=%v upper=%v digit=%v)", s, hasLower, hasUpper, hasDigit)
	}
}
