package model

import "time"

// CleanedRecord is a validated, typed customer row produced by the record
// cleaner. Optional fields are pointers; nil means the value was absent or
// unparseable in the source extract.
//
// Invariants: CustomerName, CustomerID and OpenDate are always present and
// CustomerID is at most 18 characters. Rows violating these never leave the
// cleaner.
type CleanedRecord struct {
	CustomerName      string     `json:"customer_name" validate:"required"`
	CustomerID        string     `json:"customer_id" validate:"required,max=18"`
	OpenDate          time.Time  `json:"open_date" validate:"required"`
	LastConsultedDate *time.Time `json:"last_consulted_date,omitempty"`
	VaccinationID     *string    `json:"vaccination_id,omitempty"`
	DrName            *string    `json:"dr_name,omitempty"`
	State             *string    `json:"state,omitempty"`
	Country           *string    `json:"country,omitempty"`
	DOB               *time.Time `json:"dob,omitempty"`
	IsActive          *string    `json:"is_active,omitempty" validate:"omitempty,len=1"`
}

// ToStaging converts the cleaned record into a staging row with the
// processed flag unset. The staging id is assigned by the database.
func (c CleanedRecord) ToStaging() StagingRecord {
	return StagingRecord{
		CustomerName:      c.CustomerName,
		CustomerID:        c.CustomerID,
		OpenDate:          c.OpenDate,
		LastConsultedDate: c.LastConsultedDate,
		VaccinationID:     c.VaccinationID,
		DrName:            c.DrName,
		State:             c.State,
		Country:           c.Country,
		DOB:               c.DOB,
		IsActive:          c.IsActive,
		Processed:         false,
	}
}
