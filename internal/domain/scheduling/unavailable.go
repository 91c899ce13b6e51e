package scheduling

import (
	"time"

	"github.com/google/uuid"
)

// UnavailabilityReason classifies why a time range is blocked.
type UnavailabilityReason string

const (
	ReasonNonBusinessHours UnavailabilityReason = "non-business-hours"
	ReasonHoliday          UnavailabilityReason = "holiday"
	ReasonPersonalLeave    UnavailabilityReason = "personal-leave"
	ReasonEmergency        UnavailabilityReason = "emergency"
	ReasonMaintenance      UnavailabilityReason = "maintenance"
	ReasonOther            UnavailabilityReason = "other"
)

// UnavailableBlock is a blocked time range. A nil PhysicianID means the block
// is facility-wide and applies to every physician's schedule.
type UnavailableBlock struct {
	TimeInterval
	Reason      UnavailabilityReason `json:"reason"`
	PhysicianID *uuid.UUID           `json:"physician_id,omitempty"`
}

// NewUnavailableBlock creates a physician-scoped block. physicianID may be
// nil for a facility-wide block; NewFacilityBlock is the explicit spelling.
func NewUnavailableBlock(physicianID *uuid.UUID, start, end time.Time, reason UnavailabilityReason, description string) (*UnavailableBlock, error) {
	iv, err := NewTimeInterval(start, end, description)
	if err != nil {
		return nil, err
	}
	return &UnavailableBlock{TimeInterval: iv, Reason: reason, PhysicianID: physicianID}, nil
}

// NewFacilityBlock creates a block that applies to every physician.
func NewFacilityBlock(start, end time.Time, reason UnavailabilityReason, description string) (*UnavailableBlock, error) {
	return NewUnavailableBlock(nil, start, end, reason, description)
}

// RehydrateUnavailableBlock rebuilds a persisted block with its original id.
func RehydrateUnavailableBlock(id uuid.UUID, physicianID *uuid.UUID, start, end time.Time, reason UnavailabilityReason, description string) (*UnavailableBlock, error) {
	iv, err := rehydrateInterval(id, start, end, description)
	if err != nil {
		return nil, err
	}
	return &UnavailableBlock{TimeInterval: iv, Reason: reason, PhysicianID: physicianID}, nil
}

// IsFacilityWide reports whether the block applies to all physicians.
func (b *UnavailableBlock) IsFacilityWide() bool {
	return b.PhysicianID == nil
}

// AppliesTo reports whether the block constrains the given physician.
func (b *UnavailableBlock) AppliesTo(physicianID uuid.UUID) bool {
	return b.PhysicianID == nil || *b.PhysicianID == physicianID
}

// MergeWith combines overlapping or adjacent blocks with the same reason and
// scope into one spanning block. Returns false when no merge is possible.
func (b *UnavailableBlock) MergeWith(other *UnavailableBlock) (*UnavailableBlock, bool) {
	if other == nil || !b.canMergeWith(other.TimeInterval) {
		return nil, false
	}
	if b.Reason != other.Reason {
		return nil, false
	}
	if (b.PhysicianID == nil) != (other.PhysicianID == nil) {
		return nil, false
	}
	if b.PhysicianID != nil && *b.PhysicianID != *other.PhysicianID {
		return nil, false
	}
	start, end := b.mergeSpan(other.TimeInterval)
	merged, err := NewUnavailableBlock(b.PhysicianID, start, end, b.Reason, b.Description)
	if err != nil {
		return nil, false
	}
	return merged, true
}

// Clone returns a copy safe to hand out past the manager's locks.
func (b *UnavailableBlock) Clone() *UnavailableBlock {
	cp := *b
	if b.PhysicianID != nil {
		id := *b.PhysicianID
		cp.PhysicianID = &id
	}
	return &cp
}
