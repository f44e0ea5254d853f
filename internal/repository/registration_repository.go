package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/anooppatell7/education-pixel-backend/internal/model"
)

// RegistrationRepository handles exam registration data access.
type RegistrationRepository struct {
	pool *pgxpool.Pool
}

// NewRegistrationRepository creates a new RegistrationRepository.
func NewRegistrationRepository(pool *pgxpool.Pool) *RegistrationRepository {
	return &RegistrationRepository{pool: pool}
}

// GetByNumber retrieves a registration by its external number.
func (r *RegistrationRepository) GetByNumber(ctx context.Context, number string) (*model.Registration, error) {
	reg := &model.Registration{}
	err := r.pool.QueryRow(ctx,
		`SELECT registration_number, candidate_name, course, franchise_code, created_at
		 FROM registrations WHERE registration_number = $1`, number,
	).Scan(&reg.Number, &reg.CandidateName, &reg.Course, &reg.FranchiseCode, &reg.CreatedAt)
	if err != nil {
		return nil, err
	}
	return reg, nil
}

// Create inserts a registration. Used by seeding tooling.
func (r *RegistrationRepository) Create(ctx context.Context, reg *model.Registration) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO registrations (registration_number, candidate_name, course, franchise_code)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (registration_number) DO UPDATE SET candidate_name = EXCLUDED.candidate_name
		 RETURNING created_at`,
		reg.Number, reg.CandidateName, reg.Course, reg.FranchiseCode,
	).Scan(&reg.CreatedAt)
}
