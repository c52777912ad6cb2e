package cmd

import (
	"context"
	"log/slog"
	"strings"

	"github.com/kodisha/flowd/pkg/persistence"
	"github.com/kodisha/flowd/pkg/persistence/file"
	"github.com/kodisha/flowd/pkg/persistence/postgres"
	"github.com/kodisha/flowd/pkg/persistence/redis"
)

// NewFlowStore picks the store from the database URL scheme. Anything without
// a recognized scheme is treated as a file path.
func NewFlowStore(ctx context.Context, logger *slog.Logger, databaseURL string) (persistence.FlowStore, error) {
	switch parseProvider(databaseURL) {
	case "postgres":
		return postgres.NewStore(ctx, logger, databaseURL)
	case "redis":
		return redis.NewStore(databaseURL)
	default:
		return file.NewStore(databaseURL), nil
	}
}

func parseProvider(databaseURL string) string {
	scheme, _, found := strings.Cut(databaseURL, "://")
	if !found {
		return "file"
	}

	switch scheme {
	case "postgres", "postgresql":
		return "postgres"
	case "redis", "rediss":
		return "redis"
	default:
		return "file"
	}
}
