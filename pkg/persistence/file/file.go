// Package file stores flow definitions as JSON files, one per flow, under a
// root directory. Suited to development and single-node deployments.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kodisha/flowd/pkg/models"
	"github.com/kodisha/flowd/pkg/persistence"
)

const flowsDir = "flows"

// Store implements persistence.FlowStore on the local file system.
type Store struct {
	root string
}

func NewStore(root string) *Store {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	return &Store{root: cleanRoot}
}

func (s *Store) Flows(ctx context.Context) ([]*models.FlowDefinition, error) {
	dir := filepath.Join(s.root, flowsDir)

	entries, err := fs.Glob(os.DirFS(dir), "*.json")
	if err != nil {
		return nil, persistence.NewStoreError("Flows", "", err)
	}

	// Stable load order keeps startup registration deterministic.
	sort.Strings(entries)

	flows := make([]*models.FlowDefinition, 0, len(entries))

	for _, entry := range entries {
		id := strings.TrimSuffix(entry, ".json")

		def, err := s.FlowByID(ctx, id)
		if err != nil {
			return nil, err
		}

		flows = append(flows, def)
	}

	return flows, nil
}

func (s *Store) FlowByID(_ context.Context, id string) (*models.FlowDefinition, error) {
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", persistence.ErrFlowNotFound, id)
		}

		return nil, persistence.NewStoreError("FlowByID", id, err)
	}

	var def models.FlowDefinition

	if err := json.Unmarshal(data, &def); err != nil {
		return nil, persistence.NewStoreError("FlowByID", id, err)
	}

	return &def, nil
}

func (s *Store) SaveFlow(_ context.Context, def *models.FlowDefinition) error {
	if err := os.MkdirAll(filepath.Join(s.root, flowsDir), 0o755); err != nil {
		return persistence.NewStoreError("SaveFlow", def.ID, err)
	}

	data, err := json.MarshalIndent(def, "", "  ")
	if err != nil {
		return persistence.NewStoreError("SaveFlow", def.ID, err)
	}

	if err := os.WriteFile(s.path(def.ID), data, 0o644); err != nil {
		return persistence.NewStoreError("SaveFlow", def.ID, err)
	}

	return nil
}

func (s *Store) DeleteFlow(_ context.Context, id string) error {
	err := os.Remove(s.path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", persistence.ErrFlowNotFound, id)
	}

	if err != nil {
		return persistence.NewStoreError("DeleteFlow", id, err)
	}

	return nil
}

func (s *Store) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(s.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

func (s *Store) Close(_ context.Context) error {
	return nil
}

func (s *Store) path(id string) string {
	return filepath.Join(s.root, flowsDir, id+".json")
}
