package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/anooppatell7/education-pixel-backend/internal/response"
	"github.com/anooppatell7/education-pixel-backend/internal/service"
	"github.com/anooppatell7/education-pixel-backend/internal/validator"
)

// IdentityHandler mints candidate identity tokens for the portal.
type IdentityHandler struct {
	identity *service.IdentityService
}

// NewIdentityHandler creates a new IdentityHandler.
func NewIdentityHandler(identity *service.IdentityService) *IdentityHandler {
	return &IdentityHandler{identity: identity}
}

type issueIdentityRequest struct {
	Name string `json:"name" binding:"omitempty,max=128"`
}

// IssueIdentity godoc
// POST /api/v1/identity
// Mints a candidate identity token. The portal calls this once and replays
// the token on every subsequent request.
func (h *IdentityHandler) IssueIdentity(c *gin.Context) {
	var req issueIdentityRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	token, candidateID, err := h.identity.IssueToken(req.Name)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"token":        token,
		"candidate_id": candidateID,
	})
}
