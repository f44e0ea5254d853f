package model

import (
	"time"

	"github.com/google/uuid"
)

// Certificate links a certificate serial to the result it attests.
// Rows are written asynchronously by the certificate worker.
type Certificate struct {
	SerialNumber       string    `json:"serial_number"`
	ResultID           uuid.UUID `json:"result_id"`
	TestID             uuid.UUID `json:"test_id"`
	RegistrationNumber *string   `json:"registration_number,omitempty"`
	IssuedAt           time.Time `json:"issued_at"`
}

// CertificateIssue is the queue payload consumed by the certificate
// worker after a durable result write.
type CertificateIssue struct {
	SerialNumber       string    `json:"serial_number"`
	ResultID           uuid.UUID `json:"result_id"`
	TestID             uuid.UUID `json:"test_id"`
	RegistrationNumber *string   `json:"registration_number,omitempty"`
}

// Verification is the public view returned by the certificate
// verification endpoint. QRPayload is the URL a printed QR code resolves
// to for this serial.
type Verification struct {
	Valid         bool      `json:"valid"`
	SerialNumber  string    `json:"serial_number"`
	CandidateName string    `json:"candidate_name,omitempty"`
	TestTitle     string    `json:"test_title"`
	Course        string    `json:"course"`
	Score         int       `json:"score"`
	TotalMarks    int       `json:"total_marks"`
	SubmittedAt   time.Time `json:"submitted_at"`
	QRPayload     string    `json:"qr_payload,omitempty"`
}
