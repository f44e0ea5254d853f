package model

import (
	"time"
)

// Operator is a staff account allowed to perform administrative resets.
type Operator struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// ResetAttemptRequest is the payload for an operator-initiated reset of a
// stuck or abandoned attempt.
type ResetAttemptRequest struct {
	TestID             string `json:"test_id" binding:"required,uuid"`
	RegistrationNumber string `json:"registration_number" binding:"omitempty,min=4,max=32"`
	CandidateID        string `json:"candidate_id" binding:"omitempty,min=1,max=128"`
}
