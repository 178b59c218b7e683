package reserve

import (
	"strings"
	"testing"
	"time"
)

func at(h int) time.Time {
	return time.Date(2030, 6, 1, h, 0, 0, 0, time.UTC)
}

func TestOverlaps(t *testing.T) {
	cases := []struct {
		name                           string
		aStart, aEnd, bStart, bEnd     time.Time
		want                           bool
	}{
		{"identical", at(10), at(11), at(10), at(11), true},
		{"contained", at(10), at(14), at(11), at(12), true},
		{"partial left", at(10), at(12), at(11), at(13), true},
		{"partial right", at(11), at(13), at(10), at(12), true},
		{"touching end-to-start", at(10), at(11), at(11), at(12), false},
		{"touching start-to-end", at(11), at(12), at(10), at(11), false},
		{"disjoint", at(8), at(9), at(11), at(12), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Overlaps(tc.aStart, tc.aEnd, tc.bStart, tc.bEnd); got != tc.want {
				t.Fatalf("Overlaps(%v,%v,%v,%v) = %v, want %v",
					tc.aStart, tc.aEnd, tc.bStart, tc.bEnd, got, tc.want)
			}
			// symmetry
			if got := Overlaps(tc.bStart, tc.bEnd, tc.aStart, tc.aEnd); got != tc.want {
				t.Fatalf("Overlaps not symmetric for %s", tc.name)
			}
		})
	}
}

func TestConflictErrorMessageCarriesWindow(t *testing.T) {
	err := &ConflictError{Start: at(10), End: at(11), Status: StatusConfirmed}
	msg := err.Error()
	if want := "confirmed"; !strings.Contains(msg, want) {
		t.Fatalf("error message %q missing status %q", msg, want)
	}
	if !strings.Contains(msg, "2030-06-01T10:00:00Z") || !strings.Contains(msg, "2030-06-01T11:00:00Z") {
		t.Fatalf("error message %q missing window", msg)
	}
}
