// Package postgres provides PostgreSQL persistence for flow definitions.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq"

	"github.com/kodisha/flowd/pkg/models"
	"github.com/kodisha/flowd/pkg/persistence/sqlbase"
)

// Store implements persistence.FlowStore on PostgreSQL.
type Store struct {
	db       *sql.DB
	logger   *slog.Logger
	flowRepo *FlowRepository
}

func NewStore(ctx context.Context, logger *slog.Logger, databaseURL string) (*Store, error) {
	database, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	err = database.PingContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	migrationManager := sqlbase.NewMigrationManager(logger, database, migrations())

	err = migrationManager.RunMigrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Store{
		db:       database,
		logger:   logger,
		flowRepo: NewFlowRepository(database, logger),
	}, nil
}

func (s *Store) Flows(ctx context.Context) ([]*models.FlowDefinition, error) {
	return s.flowRepo.GetAll(ctx)
}

func (s *Store) FlowByID(ctx context.Context, id string) (*models.FlowDefinition, error) {
	return s.flowRepo.GetByID(ctx, id)
}

func (s *Store) SaveFlow(ctx context.Context, def *models.FlowDefinition) error {
	return s.flowRepo.Save(ctx, def)
}

func (s *Store) DeleteFlow(ctx context.Context, id string) error {
	return s.flowRepo.Delete(ctx, id)
}

// HealthCheck verifies the database connection is healthy.
func (s *Store) HealthCheck(ctx context.Context) error {
	err := s.db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}

func (s *Store) Close(_ context.Context) error {
	if s.db != nil {
		err := s.db.Close()
		if err != nil {
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}

	return nil
}
