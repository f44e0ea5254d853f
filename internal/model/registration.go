package model

import (
	"time"
)

// Registration is an externally issued exam registration. The profile
// fields are what certificate rendering (external) consumes alongside a
// finalized result.
type Registration struct {
	Number        string    `json:"registration_number"`
	CandidateName string    `json:"candidate_name"`
	Course        string    `json:"course"`
	FranchiseCode string    `json:"franchise_code,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}
