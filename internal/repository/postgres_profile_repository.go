package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/credit-ledger/internal/domain"
)

type postgresProfileRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresProfileRepository returns a Postgres-backed implementation for
// deployments that want a server-authoritative store.
func NewPostgresProfileRepository(pool *pgxpool.Pool) ProfileRepository {
	return &postgresProfileRepository{pool: pool}
}

func (r *postgresProfileRepository) Get(ctx context.Context, subjectID string) (*domain.Profile, error) {
	const query = `
        SELECT subject_id, email, balance, created_at
        FROM profiles WHERE subject_id=$1`

	var profile domain.Profile
	err := r.pool.QueryRow(ctx, query, subjectID).Scan(
		&profile.ID,
		&profile.Email,
		&profile.Balance,
		&profile.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *postgresProfileRepository) Set(ctx context.Context, subjectID string, profile *domain.Profile) error {
	const query = `
        INSERT INTO profiles (subject_id, email, balance, created_at)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (subject_id)
        DO UPDATE SET email=EXCLUDED.email, balance=EXCLUDED.balance, created_at=EXCLUDED.created_at`

	_, err := r.pool.Exec(ctx, query,
		subjectID,
		profile.Email,
		profile.Balance,
		profile.CreatedAt,
	)
	return err
}

func (r *postgresProfileRepository) CompareAndSet(ctx context.Context, subjectID string, expectedBalance int, profile *domain.Profile) error {
	const query = `
        UPDATE profiles SET email=$1, balance=$2
        WHERE subject_id=$3 AND balance=$4`

	cmd, err := r.pool.Exec(ctx, query,
		profile.Email,
		profile.Balance,
		subjectID,
		expectedBalance,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrBalanceConflict
	}
	return nil
}
