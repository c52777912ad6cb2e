// Package redis stores flow definitions in a Redis hash, letting several
// flowd instances share one definition set.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	goredis "github.com/redis/go-redis/v9"

	"github.com/kodisha/flowd/pkg/models"
	"github.com/kodisha/flowd/pkg/persistence"
)

const flowsKey = "flowd:flows"

// Store implements persistence.FlowStore on a Redis hash keyed by flow id.
type Store struct {
	client goredis.UniversalClient
}

func NewStore(redisURL string) (*Store, error) {
	opts, err := goredis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	return &Store{client: goredis.NewClient(opts)}, nil
}

// NewStoreWithClient wires an existing client, used by tests.
func NewStoreWithClient(client goredis.UniversalClient) *Store {
	return &Store{client: client}
}

func (s *Store) Flows(ctx context.Context) ([]*models.FlowDefinition, error) {
	entries, err := s.client.HGetAll(ctx, flowsKey).Result()
	if err != nil {
		return nil, persistence.NewStoreError("Flows", "", err)
	}

	ids := make([]string, 0, len(entries))
	for id := range entries {
		ids = append(ids, id)
	}

	// Hash iteration order is unstable; sort for deterministic startup.
	sort.Strings(ids)

	flows := make([]*models.FlowDefinition, 0, len(ids))

	for _, id := range ids {
		var def models.FlowDefinition

		if err := json.Unmarshal([]byte(entries[id]), &def); err != nil {
			return nil, persistence.NewStoreError("Flows", id, err)
		}

		flows = append(flows, &def)
	}

	return flows, nil
}

func (s *Store) FlowByID(ctx context.Context, id string) (*models.FlowDefinition, error) {
	data, err := s.client.HGet(ctx, flowsKey, id).Result()
	if err == goredis.Nil {
		return nil, fmt.Errorf("%w: %s", persistence.ErrFlowNotFound, id)
	}

	if err != nil {
		return nil, persistence.NewStoreError("FlowByID", id, err)
	}

	var def models.FlowDefinition

	if err := json.Unmarshal([]byte(data), &def); err != nil {
		return nil, persistence.NewStoreError("FlowByID", id, err)
	}

	return &def, nil
}

func (s *Store) SaveFlow(ctx context.Context, def *models.FlowDefinition) error {
	data, err := json.Marshal(def)
	if err != nil {
		return persistence.NewStoreError("SaveFlow", def.ID, err)
	}

	if err := s.client.HSet(ctx, flowsKey, def.ID, data).Err(); err != nil {
		return persistence.NewStoreError("SaveFlow", def.ID, err)
	}

	return nil
}

func (s *Store) DeleteFlow(ctx context.Context, id string) error {
	removed, err := s.client.HDel(ctx, flowsKey, id).Result()
	if err != nil {
		return persistence.NewStoreError("DeleteFlow", id, err)
	}

	if removed == 0 {
		return fmt.Errorf("%w: %s", persistence.ErrFlowNotFound, id)
	}

	return nil
}

func (s *Store) HealthCheck(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Store) Close(_ context.Context) error {
	return s.client.Close()
}
