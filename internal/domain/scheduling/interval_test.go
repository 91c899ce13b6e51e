package scheduling

import (
	"testing"
	"time"
)

func mustInterval(t *testing.T, start, end time.Time) TimeInterval {
	t.Helper()
	iv, err := NewTimeInterval(start, end, "")
	if err != nil {
		t.Fatalf("NewTimeInterval(%v, %v): %v", start, end, err)
	}
	return iv
}

func TestNewTimeInterval_RejectsInvertedBounds(t *testing.T) {
	start := time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC)

	if _, err := NewTimeInterval(start, start, ""); err == nil {
		t.Error("expected error for zero-length interval")
	}
	if _, err := NewTimeInterval(start, start.Add(-time.Hour), ""); err == nil {
		t.Error("expected error for end before start")
	}
	if _, err := NewTimeInterval(start, start.Add(time.Hour), "checkup"); err != nil {
		t.Errorf("unexpected error for valid interval: %v", err)
	}
}

func TestTimeInterval_Overlaps(t *testing.T) {
	day := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)
	at := func(h, m int) time.Time { return day.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute) }

	tests := []struct {
		name string
		a    TimeInterval
		b    TimeInterval
		want bool
	}{
		{"identical", mustInterval(t, at(9, 0), at(10, 0)), mustInterval(t, at(9, 0), at(10, 0)), true},
		{"partial overlap", mustInterval(t, at(9, 0), at(10, 0)), mustInterval(t, at(9, 30), at(10, 30)), true},
		{"contained", mustInterval(t, at(9, 0), at(12, 0)), mustInterval(t, at(10, 0), at(11, 0)), true},
		{"touching boundaries", mustInterval(t, at(9, 0), at(10, 0)), mustInterval(t, at(10, 0), at(11, 0)), false},
		{"disjoint", mustInterval(t, at(9, 0), at(10, 0)), mustInterval(t, at(14, 0), at(15, 0)), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Overlaps(tt.b); got != tt.want {
				t.Errorf("a.Overlaps(b) = %v, want %v", got, tt.want)
			}
			// Overlap is symmetric.
			if got := tt.b.Overlaps(tt.a); got != tt.want {
				t.Errorf("b.Overlaps(a) = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTimeInterval_ContainsTime(t *testing.T) {
	start := time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)
	iv := mustInterval(t, start, start.Add(time.Hour))

	if !iv.ContainsTime(start) {
		t.Error("expected start instant to be contained")
	}
	if !iv.ContainsTime(start.Add(time.Hour)) {
		t.Error("expected end instant to be contained")
	}
	if !iv.ContainsTime(start.Add(30 * time.Minute)) {
		t.Error("expected midpoint to be contained")
	}
	if iv.ContainsTime(start.Add(-time.Second)) {
		t.Error("did not expect instant before start to be contained")
	}
	if iv.ContainsTime(start.Add(time.Hour + time.Second)) {
		t.Error("did not expect instant after end to be contained")
	}
}

func TestTimeInterval_Contains(t *testing.T) {
	day := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)
	outer := mustInterval(t, day.Add(9*time.Hour), day.Add(12*time.Hour))
	inner := mustInterval(t, day.Add(10*time.Hour), day.Add(11*time.Hour))

	if !outer.Contains(inner) {
		t.Error("expected outer to contain inner")
	}
	if inner.Contains(outer) {
		t.Error("did not expect inner to contain outer")
	}
	if !outer.Contains(outer) {
		t.Error("expected interval to contain itself")
	}
}

func TestTimeInterval_IsAdjacentTo(t *testing.T) {
	day := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)
	a := mustInterval(t, day.Add(9*time.Hour), day.Add(10*time.Hour))
	b := mustInterval(t, day.Add(10*time.Hour), day.Add(11*time.Hour))
	c := mustInterval(t, day.Add(11*time.Hour), day.Add(12*time.Hour))

	if !a.IsAdjacentTo(b) || !b.IsAdjacentTo(a) {
		t.Error("expected a and b to be adjacent")
	}
	if a.IsAdjacentTo(c) {
		t.Error("did not expect a and c to be adjacent")
	}
}

func TestTimeInterval_Validate(t *testing.T) {
	day := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)

	ok := mustInterval(t, day.Add(9*time.Hour), day.Add(10*time.Hour))
	if errs := ok.Validate(); len(errs) != 0 {
		t.Errorf("expected no violations, got %v", errs)
	}
	if !ok.IsValid() {
		t.Error("expected IsValid true")
	}

	short := mustInterval(t, day.Add(9*time.Hour), day.Add(9*time.Hour+2*time.Minute))
	if errs := short.Validate(); len(errs) != 1 {
		t.Errorf("expected 1 violation for 2m interval, got %v", errs)
	}

	long := mustInterval(t, day.Add(8*time.Hour), day.Add(17*time.Hour))
	if errs := long.Validate(); len(errs) != 1 {
		t.Errorf("expected 1 violation for 9h interval, got %v", errs)
	}

	crossDay := mustInterval(t, day.Add(22*time.Hour), day.Add(26*time.Hour))
	if errs := crossDay.Validate(); len(errs) != 1 {
		t.Errorf("expected 1 violation for cross-day interval, got %v", errs)
	}
	if crossDay.IsValid() {
		t.Error("expected IsValid false for cross-day interval")
	}
}

func TestTimeInterval_Duration(t *testing.T) {
	start := time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)
	iv := mustInterval(t, start, start.Add(45*time.Minute))
	if iv.Duration() != 45*time.Minute {
		t.Errorf("Duration() = %v, want 45m", iv.Duration())
	}
}
