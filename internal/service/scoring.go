package service

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/anooppatell7/education-pixel-backend/internal/model"
)

// BuildResult scores a finished attempt against its test definition and
// assembles the result record. It is a pure function and performs no I/O;
// the submission pipeline assigns ID and timestamp afterwards.
//
// An unanswered slot is never correct and never throws; accuracy is
// correct/attempted over answered slots only (0 when nothing was
// answered). Elapsed time is the planned duration minus the remaining
// clock, clamped at zero.
func BuildResult(test *model.MockTest, state *model.SessionState, candidateID string, kind model.AttemptKind, autoSubmitted bool) *model.ResultRecord {
	responses := make([]model.QuestionResponse, len(test.Questions))
	score := 0
	correct := 0
	attempted := 0

	for i, q := range test.Questions {
		selected := model.Unanswered
		if i < len(state.Answers) {
			selected = state.Answers[i]
		}

		resp := model.QuestionResponse{QuestionID: q.ID}
		if selected != model.Unanswered {
			sel := selected
			resp.SelectedOption = &sel
			attempted++
			if selected == q.CorrectOption {
				resp.Correct = true
				resp.MarksAwarded = q.MarkValue()
				score += resp.MarksAwarded
				correct++
			}
		}
		responses[i] = resp
	}

	accuracy := 0.0
	if attempted > 0 {
		accuracy = float64(correct) / float64(attempted) * 100
	}

	elapsed := test.DurationMinutes*60 - state.RemainingSeconds
	if elapsed < 0 {
		elapsed = 0
	}

	totalMarks := test.TotalMarks
	if totalMarks <= 0 {
		for _, q := range test.Questions {
			totalMarks += q.MarkValue()
		}
	}

	rec := &model.ResultRecord{
		CandidateID:      candidateID,
		TestID:           test.ID,
		TestTitle:        test.Title,
		Course:           test.Course,
		Score:            score,
		TotalMarks:       totalMarks,
		Accuracy:         accuracy,
		TimeTakenSeconds: elapsed,
		Responses:        responses,
		CertificateID:    NewCertificateSerial(time.Now()),
		AutoSubmitted:    autoSubmitted,
	}
	if regNo, ok := kind.RegistrationNumber(); ok {
		rec.RegistrationNumber = &regNo
	}
	return rec
}

// NewCertificateSerial mints a human-readable certificate serial: issue
// year plus a 9-digit random suffix. Wide enough that collisions are
// practically negligible at this volume; the unique index on results is
// the only backstop if one ever lands.
func NewCertificateSerial(now time.Time) string {
	return fmt.Sprintf("EP-%d-%09d", now.Year(), rand.Int64N(1_000_000_000))
}
