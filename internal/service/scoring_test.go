package service

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/anooppatell7/education-pixel-backend/internal/model"
)

func twoQuestionTest() *model.MockTest {
	testID := uuid.New()
	return &model.MockTest{
		ID:              testID,
		Title:           "Tally Fundamentals",
		Course:          "Tally",
		DurationMinutes: 30,
		IsPublished:     true,
		Questions: []model.Question{
			{ID: uuid.New(), TestID: testID, QuestionText: "Q1", Options: []string{"a", "b", "c", "d"}, CorrectOption: 2, OrderNum: 1},
			{ID: uuid.New(), TestID: testID, QuestionText: "Q2", Options: []string{"a", "b", "c", "d"}, CorrectOption: 0, OrderNum: 2},
		},
	}
}

func TestBuildResultScoresAnsweredOnly(t *testing.T) {
	test := twoQuestionTest()
	state := model.NewSessionState(test)
	state.Answers[0] = 2 // correct
	// question 2 left unanswered
	state.RemainingSeconds = 0
	state.Expired = true

	rec := BuildResult(test, state, "cand-1", model.InformalAttempt(), true)

	if rec.Score != 1 {
		t.Errorf("score = %d, want 1", rec.Score)
	}
	if rec.Accuracy != 100 {
		t.Errorf("accuracy = %v, want 100 (one attempted, one correct)", rec.Accuracy)
	}
	if rec.TimeTakenSeconds != 30*60 {
		t.Errorf("time taken = %d, want %d", rec.TimeTakenSeconds, 30*60)
	}
	if !rec.AutoSubmitted {
		t.Error("expected auto-submitted flag")
	}

	if rec.Responses[0].SelectedOption == nil || *rec.Responses[0].SelectedOption != 2 {
		t.Errorf("response 0 selection = %v, want 2", rec.Responses[0].SelectedOption)
	}
	if !rec.Responses[0].Correct || rec.Responses[0].MarksAwarded != 1 {
		t.Errorf("response 0 = %+v, want correct with 1 mark", rec.Responses[0])
	}
	if rec.Responses[1].SelectedOption != nil {
		t.Errorf("response 1 selection = %v, want nil for unanswered", rec.Responses[1])
	}
	if rec.Responses[1].Correct || rec.Responses[1].MarksAwarded != 0 {
		t.Errorf("unanswered response scored: %+v", rec.Responses[1])
	}
}

func TestBuildResultNothingAnswered(t *testing.T) {
	test := twoQuestionTest()
	state := model.NewSessionState(test)

	rec := BuildResult(test, state, "cand-1", model.InformalAttempt(), false)

	if rec.Score != 0 {
		t.Errorf("score = %d, want 0", rec.Score)
	}
	if rec.Accuracy != 0 {
		t.Errorf("accuracy = %v, want 0 when nothing attempted", rec.Accuracy)
	}
}

func TestBuildResultWrongAnswerLowersAccuracy(t *testing.T) {
	test := twoQuestionTest()
	state := model.NewSessionState(test)
	state.Answers[0] = 2 // correct
	state.Answers[1] = 3 // wrong
	state.RemainingSeconds = 25 * 60

	rec := BuildResult(test, state, "cand-1", model.OfficialAttempt("EP-REG-1001"), false)

	if rec.Score != 1 {
		t.Errorf("score = %d, want 1", rec.Score)
	}
	if rec.Accuracy != 50 {
		t.Errorf("accuracy = %v, want 50", rec.Accuracy)
	}
	if rec.TimeTakenSeconds != 5*60 {
		t.Errorf("time taken = %d, want %d", rec.TimeTakenSeconds, 5*60)
	}
	if rec.RegistrationNumber == nil || *rec.RegistrationNumber != "EP-REG-1001" {
		t.Errorf("registration number = %v, want EP-REG-1001", rec.RegistrationNumber)
	}
}

func TestBuildResultTotalMarksFallsBackToQuestionSum(t *testing.T) {
	test := twoQuestionTest()
	test.TotalMarks = 0

	rec := BuildResult(test, model.NewSessionState(test), "cand-1", model.InformalAttempt(), false)

	if rec.TotalMarks != 2 {
		t.Errorf("total marks = %d, want 2 (sum of per-question marks)", rec.TotalMarks)
	}
}

func TestBuildResultClampsNegativeElapsed(t *testing.T) {
	test := twoQuestionTest()
	state := model.NewSessionState(test)
	state.RemainingSeconds = test.DurationMinutes*60 + 120

	rec := BuildResult(test, state, "cand-1", model.InformalAttempt(), false)

	if rec.TimeTakenSeconds != 0 {
		t.Errorf("time taken = %d, want clamp to 0", rec.TimeTakenSeconds)
	}
}

func TestNewCertificateSerialFormat(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	serial := NewCertificateSerial(now)

	if !strings.HasPrefix(serial, "EP-2026-") {
		t.Fatalf("serial = %q, want EP-2026- prefix", serial)
	}
	suffix := strings.TrimPrefix(serial, "EP-2026-")
	if len(suffix) != 9 {
		t.Errorf("suffix %q has length %d, want 9 digits", suffix, len(suffix))
	}
	for _, c := range suffix {
		if c < '0' || c > '9' {
			t.Errorf("suffix %q contains non-digit %q", suffix, c)
		}
	}
}
