package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/anooppatell7/education-pixel-backend/internal/repository"
	"github.com/anooppatell7/education-pixel-backend/internal/response"
	"github.com/anooppatell7/education-pixel-backend/internal/store"
)

// ResultHandler serves finalized results: durable ones for official exams,
// ephemeral ones for practice runs.
type ResultHandler struct {
	results  *repository.ResultRepository
	practice *store.PracticeResultStore
}

// NewResultHandler creates a new ResultHandler.
func NewResultHandler(results *repository.ResultRepository, practice *store.PracticeResultStore) *ResultHandler {
	return &ResultHandler{results: results, practice: practice}
}

// GetResult godoc
// GET /api/v1/results/:result_id
// Returns a durable official result by its store-assigned ID.
func (h *ResultHandler) GetResult(c *gin.Context) {
	resultID, err := uuid.Parse(c.Param("result_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	rec, err := h.results.GetByID(c.Request.Context(), resultID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, rec)
}

// GetPracticeResult godoc
// GET /api/v1/results/practice/:key
// Returns an ephemeral practice result. These live in process memory with
// a TTL and disappear on restart.
func (h *ResultHandler) GetPracticeResult(c *gin.Context) {
	rec, ok := h.practice.Get(c.Param("key"))
	if !ok {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	response.Success(c, http.StatusOK, rec)
}
