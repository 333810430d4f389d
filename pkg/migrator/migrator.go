// Package migrator applies the goose migrations embedded by each bounded
// context. Every context keeps its own version table (goose_<context>_version)
// so contexts are numbered independently; sets are applied in the order given.
package migrator

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"regexp"

	"github.com/pressly/goose/v3"
	"github.com/pressly/goose/v3/database"

	"github.com/ghuser/inventory/pkg/logger"
)

var contextName = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// Set is one bounded context's migrations.
type Set struct {
	Context string
	FS      fs.FS
}

// VersionTable returns the goose version table used for a bounded context.
func VersionTable(context string) string {
	return "goose_" + context + "_version"
}

func (s Set) provider(db *sql.DB) (*goose.Provider, error) {
	if !contextName.MatchString(s.Context) {
		return nil, fmt.Errorf("invalid migration context %q", s.Context)
	}
	store, err := database.NewStore(database.DialectPostgres, VersionTable(s.Context))
	if err != nil {
		return nil, fmt.Errorf("%s store: %w", s.Context, err)
	}
	p, err := goose.NewProvider("", db, s.FS, goose.WithStore(store))
	if err != nil {
		return nil, fmt.Errorf("%s provider: %w", s.Context, err)
	}
	return p, nil
}

// Up applies every pending migration of each set and logs what ran. It stops
// at the first failing set.
func Up(ctx context.Context, db *sql.DB, sets []Set, log logger.Logger) error {
	for _, s := range sets {
		p, err := s.provider(db)
		if err != nil {
			return err
		}
		results, err := p.Up(ctx)
		for _, r := range results {
			log.InfoContext(ctx, "migration applied",
				"context", s.Context,
				"version", r.Source.Version,
				"file", r.Source.Path,
				"duration_ms", r.Duration.Milliseconds(),
			)
		}
		if err != nil {
			return fmt.Errorf("migrate %s: %w", s.Context, err)
		}
		if len(results) == 0 {
			log.InfoContext(ctx, "migrations up to date", "context", s.Context)
		}
	}
	return nil
}

// Pending reports, per context, the versions not yet applied.
func Pending(ctx context.Context, db *sql.DB, sets []Set) (map[string][]int64, error) {
	pending := make(map[string][]int64, len(sets))
	for _, s := range sets {
		p, err := s.provider(db)
		if err != nil {
			return nil, err
		}
		statuses, err := p.Status(ctx)
		if err != nil {
			return nil, fmt.Errorf("status %s: %w", s.Context, err)
		}
		for _, st := range statuses {
			if st.State == goose.StatePending {
				pending[s.Context] = append(pending[s.Context], st.Source.Version)
			}
		}
	}
	return pending, nil
}
