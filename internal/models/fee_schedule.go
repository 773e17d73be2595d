package models

import "time"

// FeeSchedule is one per-unit price row. The price in force for a given
// document/processing pair is the row with the latest effective_date that is
// not in the future. There is no cached "current" schedule; resolution is an
// explicit query every time.
type FeeSchedule struct {
	ID             int        `json:"id"`
	DocumentType   string     `json:"document_type"`
	ProcessingType string     `json:"processing_type"`
	UnitPrice      float64    `json:"unit_price"`
	EffectiveDate  time.Time  `json:"effective_date"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      *time.Time `json:"updated_at,omitempty"`
}
