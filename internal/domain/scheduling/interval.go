package scheduling

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Duration bounds applied by generic interval validation. These are sanity
// bounds on any interval, not booking policy; the conflict pipeline applies
// its own stricter appointment ceiling (see detector.go).
const (
	minIntervalDuration = 5 * time.Minute
	maxIntervalDuration = 8 * time.Hour
)

// TimeInterval is a half-open span [Start, End). Two intervals that merely
// touch at a boundary do not overlap.
type TimeInterval struct {
	ID          uuid.UUID `json:"id"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Description string    `json:"description,omitempty"`
}

// NewTimeInterval creates an interval, rejecting End <= Start. That ordering
// rule is the one hard invariant; everything else is collected by Validate.
func NewTimeInterval(start, end time.Time, description string) (TimeInterval, error) {
	if !end.After(start) {
		return TimeInterval{}, fmt.Errorf("interval end %s must be after start %s", end.Format(time.RFC3339), start.Format(time.RFC3339))
	}
	return TimeInterval{
		ID:          uuid.New(),
		Start:       start,
		End:         end,
		Description: description,
	}, nil
}

// rehydrateInterval rebuilds an interval with a known ID, for repository
// loads. It enforces the same ordering invariant as NewTimeInterval.
func rehydrateInterval(id uuid.UUID, start, end time.Time, description string) (TimeInterval, error) {
	if !end.After(start) {
		return TimeInterval{}, fmt.Errorf("interval end %s must be after start %s", end.Format(time.RFC3339), start.Format(time.RFC3339))
	}
	return TimeInterval{ID: id, Start: start, End: end, Description: description}, nil
}

// Duration returns End - Start.
func (t TimeInterval) Duration() time.Duration {
	return t.End.Sub(t.Start)
}

// Overlaps reports whether the two half-open intervals intersect.
func (t TimeInterval) Overlaps(other TimeInterval) bool {
	return t.Start.Before(other.End) && other.Start.Before(t.End)
}

// ContainsTime reports whether the instant falls inside the interval,
// inclusive on both ends.
func (t TimeInterval) ContainsTime(at time.Time) bool {
	return !at.Before(t.Start) && !at.After(t.End)
}

// Contains reports whether other lies entirely within this interval.
func (t TimeInterval) Contains(other TimeInterval) bool {
	return !t.Start.After(other.Start) && !t.End.Before(other.End)
}

// IsAdjacentTo reports whether the intervals share exactly one boundary.
func (t TimeInterval) IsAdjacentTo(other TimeInterval) bool {
	return t.End.Equal(other.Start) || other.End.Equal(t.Start)
}

// canMergeWith reports whether two intervals span a contiguous range.
func (t TimeInterval) canMergeWith(other TimeInterval) bool {
	return t.Overlaps(other) || t.IsAdjacentTo(other)
}

// mergeSpan returns the combined span min(Start)..max(End). Callers must
// check canMergeWith first; merge rules per concrete type live with the
// concrete types.
func (t TimeInterval) mergeSpan(other TimeInterval) (time.Time, time.Time) {
	start := t.Start
	if other.Start.Before(start) {
		start = other.Start
	}
	end := t.End
	if other.End.After(end) {
		end = other.End
	}
	return start, end
}

// Validate collects soft rule violations: duration outside the generic
// bounds and spans that cross a calendar day. Violations are reported, never
// thrown; the hard End > Start rule is enforced at construction instead.
func (t TimeInterval) Validate() []string {
	var errs []string
	d := t.Duration()
	if d < minIntervalDuration {
		errs = append(errs, fmt.Sprintf("duration %s is shorter than the %s minimum", d, minIntervalDuration))
	}
	if d > maxIntervalDuration {
		errs = append(errs, fmt.Sprintf("duration %s exceeds the %s maximum", d, maxIntervalDuration))
	}
	startY, startM, startD := t.Start.Date()
	endY, endM, endD := t.End.Date()
	if startY != endY || startM != endM || startD != endD {
		errs = append(errs, "interval must start and end on the same calendar day")
	}
	return errs
}

// IsValid reports whether Validate finds no violations.
func (t TimeInterval) IsValid() bool {
	return len(t.Validate()) == 0
}
