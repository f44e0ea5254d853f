package model

import (
	"time"

	"github.com/google/uuid"
)

// MockTest is a test definition: the question set a candidate attempts.
// It is read-only to the attempt engine; questions keep their stored order
// for the lifetime of an attempt.
type MockTest struct {
	ID              uuid.UUID  `json:"id"`
	Title           string     `json:"title"`
	Course          string     `json:"course"`
	DurationMinutes int        `json:"duration_minutes"`
	TotalMarks      int        `json:"total_marks"`
	IsPublished     bool       `json:"is_published"`
	Questions       []Question `json:"questions,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// TestSummary is a catalog entry for a published test (no questions).
type TestSummary struct {
	ID              uuid.UUID `json:"id"`
	Title           string    `json:"title"`
	Course          string    `json:"course"`
	DurationMinutes int       `json:"duration_minutes"`
	TotalMarks      int       `json:"total_marks"`
	QuestionCount   int       `json:"question_count"`
}

// TestPaper is the cached candidate-facing payload: the full question set
// with correct answers and explanations stripped.
type TestPaper struct {
	TestID          uuid.UUID       `json:"test_id"`
	Title           string          `json:"title"`
	Course          string          `json:"course"`
	DurationMinutes int             `json:"duration_minutes"`
	TotalMarks      int             `json:"total_marks"`
	Questions       []PaperQuestion `json:"questions"`
}

// PaperQuestion is a question as shown to the candidate.
type PaperQuestion struct {
	ID           uuid.UUID `json:"id"`
	QuestionText string    `json:"question_text"`
	Options      []string  `json:"options"`
	OrderNum     int       `json:"order_num"`
}

// Paper builds the candidate-facing payload from a full test definition.
func (t *MockTest) Paper() *TestPaper {
	questions := make([]PaperQuestion, len(t.Questions))
	for i, q := range t.Questions {
		questions[i] = PaperQuestion{
			ID:           q.ID,
			QuestionText: q.QuestionText,
			Options:      q.Options,
			OrderNum:     q.OrderNum,
		}
	}
	return &TestPaper{
		TestID:          t.ID,
		Title:           t.Title,
		Course:          t.Course,
		DurationMinutes: t.DurationMinutes,
		TotalMarks:      t.TotalMarks,
		Questions:       questions,
	}
}
