package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/kodisha/flowd/pkg/models"
	"github.com/kodisha/flowd/pkg/persistence"
)

// FlowRepository handles flow definition rows. The whole definition lives in
// the JSONB column; the extracted columns exist for queries only.
type FlowRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewFlowRepository(db *sql.DB, logger *slog.Logger) *FlowRepository {
	return &FlowRepository{
		db:     db,
		logger: logger.With("module", "postgres_flow_repository"),
	}
}

func (r *FlowRepository) GetAll(ctx context.Context) ([]*models.FlowDefinition, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT definition FROM flows ORDER BY created_at, id")
	if err != nil {
		return nil, persistence.NewStoreError("Flows", "", err)
	}
	defer rows.Close()

	var flows []*models.FlowDefinition

	for rows.Next() {
		var raw []byte

		if err := rows.Scan(&raw); err != nil {
			return nil, persistence.NewStoreError("Flows", "", err)
		}

		var def models.FlowDefinition

		if err := json.Unmarshal(raw, &def); err != nil {
			return nil, persistence.NewStoreError("Flows", "", err)
		}

		flows = append(flows, &def)
	}

	if err := rows.Err(); err != nil {
		return nil, persistence.NewStoreError("Flows", "", err)
	}

	return flows, nil
}

func (r *FlowRepository) GetByID(ctx context.Context, id string) (*models.FlowDefinition, error) {
	var raw []byte

	err := r.db.QueryRowContext(ctx, "SELECT definition FROM flows WHERE id = $1", id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", persistence.ErrFlowNotFound, id)
	}

	if err != nil {
		return nil, persistence.NewStoreError("FlowByID", id, err)
	}

	var def models.FlowDefinition

	if err := json.Unmarshal(raw, &def); err != nil {
		return nil, persistence.NewStoreError("FlowByID", id, err)
	}

	return &def, nil
}

func (r *FlowRepository) Save(ctx context.Context, def *models.FlowDefinition) error {
	raw, err := json.Marshal(def)
	if err != nil {
		return persistence.NewStoreError("SaveFlow", def.ID, err)
	}

	query := `
		INSERT INTO flows (id, name, trigger_event, enabled, definition, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			trigger_event = EXCLUDED.trigger_event,
			enabled = EXCLUDED.enabled,
			definition = EXCLUDED.definition,
			updated_at = EXCLUDED.updated_at
	`

	_, err = r.db.ExecContext(ctx, query,
		def.ID,
		def.Name,
		def.Trigger.Event,
		def.Enabled,
		raw,
		def.CreatedAt,
		def.UpdatedAt,
	)
	if err != nil {
		return persistence.NewStoreError("SaveFlow", def.ID, err)
	}

	return nil
}

func (r *FlowRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM flows WHERE id = $1", id)
	if err != nil {
		return persistence.NewStoreError("DeleteFlow", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return persistence.NewStoreError("DeleteFlow", id, err)
	}

	if affected == 0 {
		return fmt.Errorf("%w: %s", persistence.ErrFlowNotFound, id)
	}

	return nil
}
