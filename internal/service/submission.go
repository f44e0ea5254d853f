package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/anooppatell7/education-pixel-backend/internal/model"
	"github.com/anooppatell7/education-pixel-backend/internal/store"
)

// ResultStore abstracts durable result persistence so tests can substitute
// an in-memory fake for the PostgreSQL repository.
type ResultStore interface {
	// Insert writes a result record exactly once, assigning ID and the
	// storage-side submission timestamp.
	Insert(ctx context.Context, rec *model.ResultRecord) error
	// FindByAttempt returns a prior result for (test, registration-or-
	// identity), or pgx.ErrNoRows when none exists.
	FindByAttempt(ctx context.Context, testID uuid.UUID, ref string) (*model.ResultRecord, error)
}

// TestSource loads test definitions (including correct answers — these
// never leave the server).
type TestSource interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.MockTest, error)
}

// CertificateQueue enqueues certificate issuance work for the background
// worker.
type CertificateQueue interface {
	Enqueue(ctx context.Context, issue model.CertificateIssue) error
}

// SubmissionOutcome is what a completed submission resolves to: a durable
// result identifier for official exams, a local practice key otherwise.
type SubmissionOutcome struct {
	ResultID string              `json:"result_id"`
	Practice bool                `json:"practice"`
	Record   *model.ResultRecord `json:"record"`
}

// SubmissionPipeline routes finished results to their destination store.
type SubmissionPipeline struct {
	results  ResultStore
	practice *store.PracticeResultStore
	certs    CertificateQueue
	log      zerolog.Logger
}

// NewSubmissionPipeline creates a new SubmissionPipeline. certs may be nil
// when no worker queue is configured; issuance is then skipped and
// verification falls back to the results table.
func NewSubmissionPipeline(
	results ResultStore,
	practice *store.PracticeResultStore,
	certs CertificateQueue,
	log zerolog.Logger,
) *SubmissionPipeline {
	return &SubmissionPipeline{
		results:  results,
		practice: practice,
		certs:    certs,
		log:      log.With().Str("component", "submission_pipeline").Logger(),
	}
}

// Deliver persists a result record once. Official attempts go to the
// durable store, which assigns the submission timestamp; informal attempts
// go to the ephemeral practice store under a locally generated key.
// On error nothing has been written and the caller may retry.
func (p *SubmissionPipeline) Deliver(ctx context.Context, rec *model.ResultRecord, kind model.AttemptKind) (*SubmissionOutcome, error) {
	if kind.IsOfficial() {
		if err := p.results.Insert(ctx, rec); err != nil {
			return nil, fmt.Errorf("write result: %w", err)
		}

		if p.certs != nil {
			issue := model.CertificateIssue{
				SerialNumber:       rec.CertificateID,
				ResultID:           rec.ID,
				TestID:             rec.TestID,
				RegistrationNumber: rec.RegistrationNumber,
			}
			// Best-effort: a lost enqueue only delays the certificate row;
			// verification falls back to the results table meanwhile.
			if err := p.certs.Enqueue(ctx, issue); err != nil {
				p.log.Warn().Err(err).
					Str("certificate_id", rec.CertificateID).
					Msg("Certificate enqueue failed")
			}
		}

		return &SubmissionOutcome{ResultID: rec.ID.String(), Record: rec}, nil
	}

	// Informal: local clock, local key, process-local visibility only.
	rec.SubmittedAt = time.Now()
	key := fmt.Sprintf("%s-%d", rec.TestID, time.Now().UnixNano())
	p.practice.Put(key, rec)

	return &SubmissionOutcome{ResultID: key, Practice: true, Record: rec}, nil
}
