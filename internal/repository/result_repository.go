package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/anooppatell7/education-pixel-backend/internal/model"
)

// ResultRepository handles durable result data access. Result rows are
// write-once; there is no update path.
type ResultRepository struct {
	pool *pgxpool.Pool
}

// NewResultRepository creates a new ResultRepository.
func NewResultRepository(pool *pgxpool.Pool) *ResultRepository {
	return &ResultRepository{pool: pool}
}

// Insert writes a result record. ID and SubmittedAt come back from the
// database so the submission timestamp is the storage clock, not the
// engine clock.
func (r *ResultRepository) Insert(ctx context.Context, rec *model.ResultRecord) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO results
		   (registration_number, candidate_id, test_id, test_title, course,
		    score, total_marks, accuracy, time_taken_seconds, responses,
		    certificate_id, auto_submitted)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 RETURNING id, submitted_at`,
		rec.RegistrationNumber, rec.CandidateID, rec.TestID, rec.TestTitle, rec.Course,
		rec.Score, rec.TotalMarks, rec.Accuracy, rec.TimeTakenSeconds, rec.Responses,
		rec.CertificateID, rec.AutoSubmitted,
	).Scan(&rec.ID, &rec.SubmittedAt)
}

const resultColumns = `id, registration_number, candidate_id, test_id, test_title, course,
	score, total_marks, accuracy, time_taken_seconds, responses,
	certificate_id, auto_submitted, submitted_at`

func (r *ResultRepository) scanResult(row interface{ Scan(...any) error }) (*model.ResultRecord, error) {
	rec := &model.ResultRecord{}
	err := row.Scan(
		&rec.ID, &rec.RegistrationNumber, &rec.CandidateID, &rec.TestID, &rec.TestTitle, &rec.Course,
		&rec.Score, &rec.TotalMarks, &rec.Accuracy, &rec.TimeTakenSeconds, &rec.Responses,
		&rec.CertificateID, &rec.AutoSubmitted, &rec.SubmittedAt,
	)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// FindByAttempt looks up a prior completed result for an attempt key:
// test plus registration number or candidate identity. Returns
// pgx.ErrNoRows when no prior result exists.
func (r *ResultRepository) FindByAttempt(ctx context.Context, testID uuid.UUID, ref string) (*model.ResultRecord, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+resultColumns+`
		 FROM results
		 WHERE test_id = $1 AND (registration_number = $2 OR (registration_number IS NULL AND candidate_id = $2))
		 ORDER BY submitted_at
		 LIMIT 1`, testID, ref,
	)
	return r.scanResult(row)
}

// GetByID retrieves a result by its storage-assigned identifier.
func (r *ResultRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.ResultRecord, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+resultColumns+` FROM results WHERE id = $1`, id,
	)
	return r.scanResult(row)
}

// FindByCertificateSerial retrieves the result a certificate serial attests.
func (r *ResultRepository) FindByCertificateSerial(ctx context.Context, serial string) (*model.ResultRecord, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+resultColumns+` FROM results WHERE certificate_id = $1`, serial,
	)
	return r.scanResult(row)
}
