package models

import (
	"time"
)

// Document types a student can request from the registrar.
const (
	DocumentTranscript     = "transcript_of_records"
	DocumentEnrollmentCert = "certificate_of_enrollment"
	DocumentGradesCert     = "certificate_of_grades"
	DocumentGoodMoralCert  = "certificate_of_good_moral"
	DocumentDiplomaCopy    = "diploma_copy"
)

// Processing tiers. Rush requests are priced higher and fulfilled sooner.
const (
	ProcessingRegular = "regular"
	ProcessingRush    = "rush"
)

func IsValidDocumentType(t string) bool {
	switch t {
	case DocumentTranscript, DocumentEnrollmentCert, DocumentGradesCert, DocumentGoodMoralCert, DocumentDiplomaCopy:
		return true
	}
	return false
}

func IsValidProcessingType(t string) bool {
	return t == ProcessingRegular || t == ProcessingRush
}

// DocumentRequest is a student's application for an official academic
// document. Amount is always recomputed server-side from the fee schedule,
// never taken from client input.
type DocumentRequest struct {
	ID              int64      `json:"id"`
	RequestNumber   string     `json:"request_number"`
	StudentID       int        `json:"student_id"`
	DocumentType    string     `json:"document_type"`
	ProcessingType  string     `json:"processing_type"`
	Quantity        int        `json:"quantity"`
	Purpose         string     `json:"purpose"`
	Amount          float64    `json:"amount"`
	Status          string     `json:"status"`
	PaymentDeadline time.Time  `json:"payment_deadline"`
	ReleasedAt      *time.Time `json:"released_at,omitempty"`
	CancelledAt     *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       *time.Time `json:"updated_at,omitempty"`
}

type CreateRequestInput struct {
	DocumentType   string `json:"document_type"`
	ProcessingType string `json:"processing_type"`
	Quantity       int    `json:"quantity"`
	Purpose        string `json:"purpose"`
}

// RequestStatusView is the public payload of the status query endpoint.
type RequestStatusView struct {
	RequestNumber   string    `json:"request_number"`
	DocumentType    string    `json:"document_type"`
	ProcessingType  string    `json:"processing_type"`
	Quantity        int       `json:"quantity"`
	Amount          float64   `json:"amount"`
	Status          string    `json:"status"`
	PaymentDeadline time.Time `json:"payment_deadline"`
	Payments        []Payment `json:"payments"`
}
