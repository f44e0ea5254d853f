package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"

	"github.com/anooppatell7/education-pixel-backend/internal/model"
	"github.com/anooppatell7/education-pixel-backend/internal/repository"
	"github.com/anooppatell7/education-pixel-backend/internal/response"
)

// VerifyHandler answers public certificate verification lookups, the
// endpoint printed QR codes resolve to. No authentication: anyone holding
// a serial may check it.
type VerifyHandler struct {
	certificates  *repository.CertificateRepository
	results       *repository.ResultRepository
	registrations *repository.RegistrationRepository
	publicBaseURL string
}

// NewVerifyHandler creates a new VerifyHandler.
func NewVerifyHandler(
	certificates *repository.CertificateRepository,
	results *repository.ResultRepository,
	registrations *repository.RegistrationRepository,
	publicBaseURL string,
) *VerifyHandler {
	return &VerifyHandler{
		certificates:  certificates,
		results:       results,
		registrations: registrations,
		publicBaseURL: publicBaseURL,
	}
}

// VerifyCertificate godoc
// GET /api/v1/verify/:serial
// Certificate rows are written asynchronously after the result, so a
// serial that has no certificate row yet is still checked against the
// results table before being declared invalid.
func (h *VerifyHandler) VerifyCertificate(c *gin.Context) {
	serial := c.Param("serial")
	ctx := c.Request.Context()

	rec, err := h.lookupResult(ctx, serial)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Success(c, http.StatusOK, model.Verification{Valid: false, SerialNumber: serial})
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	verification := model.Verification{
		Valid:        true,
		SerialNumber: serial,
		TestTitle:    rec.TestTitle,
		Course:       rec.Course,
		Score:        rec.Score,
		TotalMarks:   rec.TotalMarks,
		SubmittedAt:  rec.SubmittedAt,
		QRPayload:    fmt.Sprintf("%s/verify/%s", h.publicBaseURL, serial),
	}

	if rec.RegistrationNumber != nil {
		if reg, err := h.registrations.GetByNumber(ctx, *rec.RegistrationNumber); err == nil {
			verification.CandidateName = reg.CandidateName
		}
	}

	response.Success(c, http.StatusOK, verification)
}

func (h *VerifyHandler) lookupResult(ctx context.Context, serial string) (*model.ResultRecord, error) {
	cert, err := h.certificates.GetBySerial(ctx, serial)
	if err == nil {
		return h.results.GetByID(ctx, cert.ResultID)
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	// Worker may not have landed the certificate row yet.
	return h.results.FindByCertificateSerial(ctx, serial)
}
