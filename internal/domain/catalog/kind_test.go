package catalog

import (
	"errors"
	"testing"
)

func TestParseKind(t *testing.T) {
	for _, raw := range []string{"trip", "Trip", " TRIP "} {
		kind, err := ParseKind(raw)
		if err != nil {
			t.Fatalf("ParseKind(%q) returned error: %v", raw, err)
		}
		if kind != KindTrip {
			t.Fatalf("ParseKind(%q) = %q, want %q", raw, kind, KindTrip)
		}
	}

	for _, raw := range []string{"", "museum", "trips"} {
		if _, err := ParseKind(raw); !errors.Is(err, ErrUnknownKind) {
			t.Fatalf("ParseKind(%q): expected ErrUnknownKind, got %v", raw, err)
		}
	}
}

func TestKindDisplay(t *testing.T) {
	if got := KindRestaurant.Display(); got != "Restaurant" {
		t.Fatalf("Display() = %q, want %q", got, "Restaurant")
	}
	if got := Kind("").Display(); got != "" {
		t.Fatalf("Display() on empty kind = %q, want empty", got)
	}
}

func TestKindsAreValid(t *testing.T) {
	for _, kind := range Kinds() {
		if !kind.Valid() {
			t.Fatalf("kind %q reported invalid", kind)
		}
	}
	if Kind("hotel").Valid() {
		t.Fatal("unexpected kind reported valid")
	}
}
