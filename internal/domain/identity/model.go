package identity

import (
	"time"

	"github.com/google/uuid"
)

// Patient maps to the patient table.
type Patient struct {
	ID                    uuid.UUID  `db:"id" json:"id"`
	Active                bool       `db:"active" json:"active"`
	MRN                   string     `db:"mrn" json:"mrn"`
	FirstName             string     `db:"first_name" json:"first_name"`
	MiddleName            *string    `db:"middle_name" json:"middle_name,omitempty"`
	LastName              string     `db:"last_name" json:"last_name"`
	BirthDate             *time.Time `db:"birth_date" json:"birth_date,omitempty"`
	Gender                *string    `db:"gender" json:"gender,omitempty"`
	Phone                 *string    `db:"phone" json:"phone,omitempty"`
	Email                 *string    `db:"email" json:"email,omitempty"`
	AddressLine1          *string    `db:"address_line1" json:"address_line1,omitempty"`
	AddressLine2          *string    `db:"address_line2" json:"address_line2,omitempty"`
	City                  *string    `db:"city" json:"city,omitempty"`
	State                 *string    `db:"state" json:"state,omitempty"`
	PostalCode            *string    `db:"postal_code" json:"postal_code,omitempty"`
	Country               *string    `db:"country" json:"country,omitempty"`
	PreferredLanguage     *string    `db:"preferred_language" json:"preferred_language,omitempty"`
	EmergencyContactName  *string    `db:"emergency_contact_name" json:"emergency_contact_name,omitempty"`
	EmergencyContactPhone *string    `db:"emergency_contact_phone" json:"emergency_contact_phone,omitempty"`
	InsuranceProvider     *string    `db:"insurance_provider" json:"insurance_provider,omitempty"`
	InsuranceMemberID     *string    `db:"insurance_member_id" json:"insurance_member_id,omitempty"`
	CreatedAt             time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time  `db:"updated_at" json:"updated_at"`
}

// FullName returns the patient's display name.
func (p *Patient) FullName() string {
	if p.MiddleName != nil && *p.MiddleName != "" {
		return p.FirstName + " " + *p.MiddleName + " " + p.LastName
	}
	return p.FirstName + " " + p.LastName
}

// Physician maps to the physician table.
type Physician struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	Active        bool       `db:"active" json:"active"`
	FirstName     string     `db:"first_name" json:"first_name"`
	LastName      string     `db:"last_name" json:"last_name"`
	Specialty     string     `db:"specialty" json:"specialty"`
	NPINumber     *string    `db:"npi_number" json:"npi_number,omitempty"`
	LicenseNumber *string    `db:"license_number" json:"license_number,omitempty"`
	LicenseState  *string    `db:"license_state" json:"license_state,omitempty"`
	Phone         *string    `db:"phone" json:"phone,omitempty"`
	Email         *string    `db:"email" json:"email,omitempty"`
	HireDate      *time.Time `db:"hire_date" json:"hire_date,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// FullName returns the physician's display name.
func (p *Physician) FullName() string {
	return "Dr. " + p.FirstName + " " + p.LastName
}
