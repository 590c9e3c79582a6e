package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/ctateo21/homelead/internal/domain/port"
	pgpkg "github.com/ctateo21/homelead/pkg/postgres"
)

// Migrations holds the schema for the step repository, applied by
// `wizardd migrate` through pkg/postgres.RunMigrations.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsDir is the directory inside Migrations.
const MigrationsDir = "migrations"

const stepColumns = `session_id, service_type, step_name, response_data,
		       position, is_completed, updated_at`

// StepRepo implements port.StepRepository.
type StepRepo struct {
	db pgpkg.Querier
}

// NewStepRepo creates a new repository backed by PostgreSQL. db is usually a
// *pgxpool.Pool.
func NewStepRepo(db pgpkg.Querier) *StepRepo {
	return &StepRepo{db: db}
}

// SaveStep upserts a step answer by (session_id, step_name). The first
// position recorded for a step is kept. A write whose updated_at is older
// than the stored row is ignored and the stored row is returned instead.
func (r *StepRepo) SaveStep(ctx context.Context, step port.StoredStep) (port.StoredStep, error) {
	query := `
		INSERT INTO wizard_steps (
			session_id, service_type, step_name, response_data,
			position, is_completed, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (session_id, step_name) DO UPDATE SET
			service_type  = EXCLUDED.service_type,
			response_data = EXCLUDED.response_data,
			is_completed  = EXCLUDED.is_completed,
			updated_at    = EXCLUDED.updated_at
		WHERE wizard_steps.updated_at <= EXCLUDED.updated_at
		RETURNING ` + stepColumns

	data := step.ResponseData
	if len(data) == 0 {
		data = []byte("{}")
	}

	saved, err := scanStep(r.db.QueryRow(ctx, query,
		step.SessionID, step.ServiceType, step.StepName, []byte(data),
		step.Position, step.IsCompleted, step.UpdatedAt.UTC(),
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return r.findStep(ctx, step.SessionID, step.StepName)
	}
	if err != nil {
		return port.StoredStep{}, fmt.Errorf("save step %s/%s: %w", step.SessionID, step.StepName, err)
	}
	return saved, nil
}

// LoadSession returns every stored step for the session ordered by position.
func (r *StepRepo) LoadSession(ctx context.Context, sessionID string) ([]port.StoredStep, error) {
	query := `
		SELECT ` + stepColumns + `
		FROM wizard_steps
		WHERE session_id = $1
		ORDER BY position, step_name
	`
	rows, err := r.db.Query(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", sessionID, err)
	}
	defer rows.Close()

	steps := make([]port.StoredStep, 0)
	for rows.Next() {
		s, err := scanStep(rows)
		if err != nil {
			return nil, fmt.Errorf("scan step: %w", err)
		}
		steps = append(steps, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load session %s: %w", sessionID, err)
	}
	return steps, nil
}

func (r *StepRepo) findStep(ctx context.Context, sessionID, stepName string) (port.StoredStep, error) {
	query := `
		SELECT ` + stepColumns + `
		FROM wizard_steps
		WHERE session_id = $1 AND step_name = $2
	`
	s, err := scanStep(r.db.QueryRow(ctx, query, sessionID, stepName))
	if err != nil {
		return port.StoredStep{}, fmt.Errorf("find step %s/%s: %w", sessionID, stepName, err)
	}
	return s, nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanStep(row scannable) (port.StoredStep, error) {
	var (
		s    port.StoredStep
		data []byte
	)
	if err := row.Scan(
		&s.SessionID, &s.ServiceType, &s.StepName, &data,
		&s.Position, &s.IsCompleted, &s.UpdatedAt,
	); err != nil {
		return port.StoredStep{}, err
	}
	s.ResponseData = data
	s.UpdatedAt = s.UpdatedAt.UTC()
	return s, nil
}
