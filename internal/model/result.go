package model

import (
	"time"

	"github.com/google/uuid"
)

// QuestionResponse captures the outcome of one question within a result.
// SelectedOption is nil when the question was left unanswered.
type QuestionResponse struct {
	QuestionID     uuid.UUID `json:"question_id"`
	SelectedOption *int      `json:"selected_option"`
	Correct        bool      `json:"correct"`
	MarksAwarded   int       `json:"marks_awarded"`
}

// ResultRecord is the write-once outcome of a completed attempt. Official
// results get ID and SubmittedAt assigned by the durable store at write
// time; informal results carry a locally generated key and local clock.
type ResultRecord struct {
	ID                 uuid.UUID          `json:"id"`
	RegistrationNumber *string            `json:"registration_number,omitempty"`
	CandidateID        string             `json:"candidate_id"`
	TestID             uuid.UUID          `json:"test_id"`
	TestTitle          string             `json:"test_title"`
	Course             string             `json:"course"`
	Score              int                `json:"score"`
	TotalMarks         int                `json:"total_marks"`
	Accuracy           float64            `json:"accuracy"`
	TimeTakenSeconds   int                `json:"time_taken_seconds"`
	Responses          []QuestionResponse `json:"responses"`
	CertificateID      string             `json:"certificate_id"`
	AutoSubmitted      bool               `json:"auto_submitted"`
	SubmittedAt        time.Time          `json:"submitted_at"`
}

// AttemptRef returns the value scoping this result to one attempt key:
// the registration number when present, the candidate identity otherwise.
func (r *ResultRecord) AttemptRef() string {
	if r.RegistrationNumber != nil && *r.RegistrationNumber != "" {
		return *r.RegistrationNumber
	}
	return r.CandidateID
}
