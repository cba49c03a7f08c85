// Command load-fixture imports a fixture CSV into the prode store,
// replacing nothing: matches already present are kept and the import
// only runs against an empty fixture.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/okian/prode/internal/adapters/fixture"
	"github.com/okian/prode/internal/adapters/repository"
	"github.com/okian/prode/pkg/logger"
)

const defaultTimeout = 30 * time.Second

func main() {
	var (
		csvPath = flag.String("csv", "fixture_2026.csv", "Path to the fixture CSV (group_name,stage,kickoff,home_team,away_team)")
		dsn     = flag.String("dsn", "", "SQLite DSN (default: local prode.db)")
		force   = flag.Bool("force", false, "Append matches even when the fixture is not empty")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Get()

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	matches, err := fixture.Load(*csvPath)
	if err != nil {
		log.Error(ctx, "load fixture csv failed", logger.String("csv", *csvPath), logger.Error(err))
		os.Exit(1)
	}

	store, err := repository.OpenSQLite(ctx, *dsn)
	if err != nil {
		log.Error(ctx, "open store failed", logger.Error(err))
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()

	existing, err := store.ListMatches(ctx)
	if err != nil {
		log.Error(ctx, "list matches failed", logger.Error(err))
		os.Exit(1)
	}
	if len(existing) > 0 && !*force {
		log.Warn(ctx, "fixture already loaded; use -force to append",
			logger.Int("existing", len(existing)))
		return
	}

	if err := store.AddMatches(ctx, matches); err != nil {
		log.Error(ctx, "import failed", logger.Error(err))
		os.Exit(1)
	}
	log.Info(ctx, "fixture imported",
		logger.String("csv", *csvPath),
		logger.Int("matches", len(matches)),
	)
}
