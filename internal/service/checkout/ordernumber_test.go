package checkout

import (
	"regexp"
	"testing"
	"time"
)

func TestNumberGeneratorFormat(t *testing.T) {
	fixed := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	gen := NewNumberGenerator("ORD", func() time.Time { return fixed })

	number, err := gen.Next()
	if err != nil {
		t.Fatalf("next: %v", err)
	}

	pattern := regexp.MustCompile(`^ORD-20260830-[A-Z0-9]{4}$`)
	if !pattern.MatchString(number) {
		t.Fatalf("number %q does not match PREFIX-YYYYMMDD-XXXX", number)
	}
}

func TestNumberGeneratorDefaults(t *testing.T) {
	gen := NewNumberGenerator("", nil)

	number, err := gen.Next()
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if number[:4] != "ORD-" {
		t.Fatalf("expected default ORD prefix, got %q", number)
	}
}

func TestNumberGeneratorVariesSuffix(t *testing.T) {
	gen := NewNumberGenerator("ORD", nil)

	seen := make(map[string]struct{})
	for i := 0; i < 50; i++ {
		number, err := gen.Next()
		if err != nil {
			t.Fatalf("next: %v", err)
		}
		seen[number] = struct{}{}
	}
	// Коллизии возможны, но 50 подряд одинаковых — признак поломанного
	// источника случайности.
	if len(seen) < 2 {
		t.Fatalf("expected varied suffixes, got %d distinct of 50", len(seen))
	}
}
