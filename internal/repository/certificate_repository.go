package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/anooppatell7/education-pixel-backend/internal/model"
)

// CertificateRepository reads certificate rows written by the issue worker.
type CertificateRepository struct {
	pool *pgxpool.Pool
}

// NewCertificateRepository creates a new CertificateRepository.
func NewCertificateRepository(pool *pgxpool.Pool) *CertificateRepository {
	return &CertificateRepository{pool: pool}
}

// GetBySerial retrieves a certificate by its serial number.
func (r *CertificateRepository) GetBySerial(ctx context.Context, serial string) (*model.Certificate, error) {
	c := &model.Certificate{}
	err := r.pool.QueryRow(ctx,
		`SELECT serial_number, result_id, test_id, registration_number, issued_at
		 FROM certificates WHERE serial_number = $1`, serial,
	).Scan(&c.SerialNumber, &c.ResultID, &c.TestID, &c.RegistrationNumber, &c.IssuedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}
