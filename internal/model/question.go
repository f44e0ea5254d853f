package model

import (
	"github.com/google/uuid"
)

// OptionCount is the fixed number of options per question.
const OptionCount = 4

// Question represents a single multiple-choice question. Immutable once an
// attempt on its test has started.
type Question struct {
	ID            uuid.UUID `json:"id"`
	TestID        uuid.UUID `json:"test_id"`
	QuestionText  string    `json:"question_text"`
	Options       []string  `json:"options"`
	CorrectOption int       `json:"correct_option"`
	Marks         int       `json:"marks"`
	Explanation   string    `json:"explanation,omitempty"`
	OrderNum      int       `json:"order_num"`
}

// MarkValue returns the marks this question awards, defaulting to 1 when
// the stored value is unset.
func (q *Question) MarkValue() int {
	if q.Marks <= 0 {
		return 1
	}
	return q.Marks
}
