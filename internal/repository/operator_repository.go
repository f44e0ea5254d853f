package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/anooppatell7/education-pixel-backend/internal/model"
)

// OperatorRepository handles operator account data access.
type OperatorRepository struct {
	pool *pgxpool.Pool
}

// NewOperatorRepository creates a new OperatorRepository.
func NewOperatorRepository(pool *pgxpool.Pool) *OperatorRepository {
	return &OperatorRepository{pool: pool}
}

// GetByEmail retrieves an operator by email.
func (r *OperatorRepository) GetByEmail(ctx context.Context, email string) (*model.Operator, error) {
	op := &model.Operator{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, email, password_hash, created_at
		 FROM operators WHERE email = $1`, email,
	).Scan(&op.ID, &op.Name, &op.Email, &op.PasswordHash, &op.CreatedAt)
	if err != nil {
		return nil, err
	}
	return op, nil
}

// Create inserts an operator account.
func (r *OperatorRepository) Create(ctx context.Context, op *model.Operator) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO operators (name, email, password_hash)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (email) DO UPDATE SET password_hash = EXCLUDED.password_hash, name = EXCLUDED.name
		 RETURNING id, created_at`,
		op.Name, op.Email, op.PasswordHash,
	).Scan(&op.ID, &op.CreatedAt)
}
