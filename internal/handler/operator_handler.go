package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/anooppatell7/education-pixel-backend/internal/model"
	"github.com/anooppatell7/education-pixel-backend/internal/response"
	"github.com/anooppatell7/education-pixel-backend/internal/service"
	"github.com/anooppatell7/education-pixel-backend/internal/validator"
)

// OperatorHandler exposes staff-only administrative actions.
type OperatorHandler struct {
	attempts    *service.AttemptService
	testService *service.TestService
}

// NewOperatorHandler creates a new OperatorHandler.
func NewOperatorHandler(attempts *service.AttemptService, testService *service.TestService) *OperatorHandler {
	return &OperatorHandler{attempts: attempts, testService: testService}
}

// ResetAttempt godoc
// POST /api/v1/operator/attempts/reset
// Discards a stuck or abandoned attempt so the candidate can start over.
// This is the only path back from a completed or wedged attempt.
func (h *OperatorHandler) ResetAttempt(c *gin.Context) {
	var req model.ResetAttemptRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	ref := req.RegistrationNumber
	if ref == "" {
		ref = req.CandidateID
	}
	if ref == "" {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
			map[string]string{"registration_number": "registration_number or candidate_id is required"})
		return
	}

	testID, err := uuid.Parse(req.TestID)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.attempts.Reset(c.Request.Context(), testID, ref); err != nil {
		if errors.Is(err, service.ErrSubmissionInProgress) {
			response.Fail(c, http.StatusConflict, response.ErrSubmissionInProgress)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"status": "reset"})
}

// WarmTestCache godoc
// POST /api/v1/operator/tests/:test_id/warm-cache
// Refreshes the cached paper after a test edit.
func (h *OperatorHandler) WarmTestCache(c *gin.Context) {
	testID, err := uuid.Parse(c.Param("test_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.testService.WarmTestCache(c.Request.Context(), testID); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"status": "warmed"})
}
