package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/anooppatell7/education-pixel-backend/internal/middleware"
	"github.com/anooppatell7/education-pixel-backend/internal/model"
	"github.com/anooppatell7/education-pixel-backend/internal/repository"
	"github.com/anooppatell7/education-pixel-backend/internal/response"
	"github.com/anooppatell7/education-pixel-backend/internal/service"
	"github.com/anooppatell7/education-pixel-backend/internal/validator"
)

// AttemptHandler exposes the attempt lifecycle over REST. Every endpoint
// resolves the attempt kind from the request body: a registration number
// makes the attempt official, its absence makes it an informal practice
// run under the candidate's token identity.
type AttemptHandler struct {
	attempts      *service.AttemptService
	registrations *repository.RegistrationRepository
}

// NewAttemptHandler creates a new AttemptHandler.
func NewAttemptHandler(attempts *service.AttemptService, registrations *repository.RegistrationRepository) *AttemptHandler {
	return &AttemptHandler{attempts: attempts, registrations: registrations}
}

// resolveKind turns an optional registration number into an attempt kind,
// checking official registrations against the registry.
func (h *AttemptHandler) resolveKind(c *gin.Context, regNo string) (model.AttemptKind, bool) {
	if regNo == "" {
		return model.InformalAttempt(), true
	}

	if _, err := h.registrations.GetByNumber(c.Request.Context(), regNo); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidRegistration)
		} else {
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return model.AttemptKind{}, false
	}
	return model.OfficialAttempt(regNo), true
}

func (h *AttemptHandler) attemptKey(c *gin.Context, testID uuid.UUID, regNo string) (string, model.AttemptKind, bool) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return "", model.AttemptKind{}, false
	}

	kind, ok := h.resolveKind(c, regNo)
	if !ok {
		return "", model.AttemptKind{}, false
	}
	return h.attempts.Key(testID, claims.Subject, kind), kind, true
}

func parseTestID(c *gin.Context) (uuid.UUID, bool) {
	testID, err := uuid.Parse(c.Param("test_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return uuid.Nil, false
	}
	return testID, true
}

// failAttemptError maps attempt engine errors onto API error codes.
func failAttemptError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTestNotAvailable):
		response.Fail(c, http.StatusNotFound, response.ErrTestNotAvailable)
	case errors.Is(err, service.ErrNoQuestions):
		response.Fail(c, http.StatusConflict, response.ErrNoQuestions)
	case errors.Is(err, service.ErrInvalidDuration):
		response.Fail(c, http.StatusConflict, response.ErrTestNotAvailable)
	case errors.Is(err, service.ErrAttemptNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrAttemptNotFound)
	case errors.Is(err, service.ErrAttemptCompleted):
		response.Fail(c, http.StatusConflict, response.ErrAttemptCompleted)
	case errors.Is(err, service.ErrAttemptLocked):
		response.Fail(c, http.StatusConflict, response.ErrAttemptLocked)
	case errors.Is(err, service.ErrSubmissionInProgress):
		response.Fail(c, http.StatusConflict, response.ErrSubmissionInProgress)
	case errors.Is(err, service.ErrQuestionIndexRange), errors.Is(err, service.ErrOptionIndexRange):
		response.Fail(c, http.StatusBadRequest, response.ErrIndexOutOfRange)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

// StartAttempt godoc
// POST /api/v1/tests/:test_id/attempt/start
// Begins a fresh attempt or resumes one persisted earlier. Idempotent
// while the attempt is active.
func (h *AttemptHandler) StartAttempt(c *gin.Context) {
	testID, ok := parseTestID(c)
	if !ok {
		return
	}

	var req model.StartAttemptRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	kind, ok := h.resolveKind(c, req.RegistrationNumber)
	if !ok {
		return
	}

	state, err := h.attempts.Start(c.Request.Context(), testID, claims.Subject, kind)
	if err != nil {
		failAttemptError(c, err)
		return
	}

	response.Success(c, http.StatusOK, state)
}

// GetAttemptState godoc
// GET /api/v1/tests/:test_id/attempt/state
// Returns the live session state. Covers page reload: answers, review
// marks, position, and the remaining clock.
func (h *AttemptHandler) GetAttemptState(c *gin.Context) {
	testID, ok := parseTestID(c)
	if !ok {
		return
	}

	key, _, ok := h.attemptKey(c, testID, c.Query("registration_number"))
	if !ok {
		return
	}

	state, err := h.attempts.State(key)
	if err != nil {
		failAttemptError(c, err)
		return
	}

	response.Success(c, http.StatusOK, state)
}

// SelectAnswer godoc
// POST /api/v1/tests/:test_id/attempt/answer
func (h *AttemptHandler) SelectAnswer(c *gin.Context) {
	testID, ok := parseTestID(c)
	if !ok {
		return
	}

	var req model.SelectAnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	key, _, ok := h.attemptKey(c, testID, req.RegistrationNumber)
	if !ok {
		return
	}

	state, err := h.attempts.SelectAnswer(c.Request.Context(), key, req.QuestionIndex, req.OptionIndex)
	if err != nil {
		failAttemptError(c, err)
		return
	}

	response.Success(c, http.StatusOK, state)
}

// ToggleReview godoc
// POST /api/v1/tests/:test_id/attempt/review
func (h *AttemptHandler) ToggleReview(c *gin.Context) {
	testID, ok := parseTestID(c)
	if !ok {
		return
	}

	var req model.ToggleReviewRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	key, _, ok := h.attemptKey(c, testID, req.RegistrationNumber)
	if !ok {
		return
	}

	state, err := h.attempts.ToggleReview(c.Request.Context(), key, req.QuestionIndex)
	if err != nil {
		failAttemptError(c, err)
		return
	}

	response.Success(c, http.StatusOK, state)
}

// Navigate godoc
// POST /api/v1/tests/:test_id/attempt/position
func (h *AttemptHandler) Navigate(c *gin.Context) {
	testID, ok := parseTestID(c)
	if !ok {
		return
	}

	var req model.NavigateRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	key, _, ok := h.attemptKey(c, testID, req.RegistrationNumber)
	if !ok {
		return
	}

	state, err := h.attempts.Navigate(c.Request.Context(), key, req.QuestionIndex)
	if err != nil {
		failAttemptError(c, err)
		return
	}

	response.Success(c, http.StatusOK, state)
}

// SubmitAttempt godoc
// POST /api/v1/tests/:test_id/attempt/submit
// Finalizes the attempt on user confirmation and returns the outcome.
func (h *AttemptHandler) SubmitAttempt(c *gin.Context) {
	testID, ok := parseTestID(c)
	if !ok {
		return
	}

	var req model.SubmitAttemptRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	key, _, ok := h.attemptKey(c, testID, req.RegistrationNumber)
	if !ok {
		return
	}

	outcome, err := h.attempts.Submit(c.Request.Context(), key, false)
	if err != nil {
		failAttemptError(c, err)
		return
	}

	response.Success(c, http.StatusOK, outcome)
}
