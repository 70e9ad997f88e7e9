// Command reconcile loads the project and demand tables once, prints the
// reconciled project graph as JSON and exits.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"time"

	"go.uber.org/zap"

	"improvehub/internal/config"
	"improvehub/internal/gateway"
	"improvehub/internal/model"
	"improvehub/internal/reconcile"
	pkgconfig "improvehub/pkg/config"
	"improvehub/pkg/db"
	"improvehub/pkg/logger"
)

type output struct {
	Projects   []*model.Project `json:"projects"`
	Stats      reconcile.Stats  `json:"stats"`
	Degraded   bool             `json:"degraded"`
	DemandsErr string           `json:"demandsError,omitempty"`
	TookMillis int64            `json:"tookMs"`
}

func main() {
	env := flag.String("env", pkgconfig.GetConfigEnv(), "config environment (local, production)")
	dir := flag.String("config", pkgconfig.GetEnv("CONFIG_DIR", "config"), "config directory")
	timeout := flag.Duration("timeout", 30*time.Second, "load timeout")
	flag.Parse()

	log := logger.NewLogger()
	defer log.Sync()

	cfg, err := config.Load(*env, *dir)
	if err != nil {
		log.Fatal("Failed to load config", zap.Error(err))
	}

	dbConn, err := db.NewConnection(cfg.DB, log)
	if err != nil {
		log.Fatal("Failed to init DB", zap.Error(err))
	}
	defer dbConn.Close()

	loader := gateway.NewLoader(gateway.NewPgSource(dbConn), gateway.Tables{
		Projects:       cfg.Store.ProjectsTable,
		Demands:        cfg.Store.DemandsTable,
		Profiles:       cfg.Store.ProfilesTable,
		UsernameColumn: cfg.Store.UsernameColumn,
		PasswordColumn: cfg.Store.PasswordColumn,
	}, reconcile.New(log), log)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	res, err := loader.Load(ctx)
	if err != nil {
		log.Fatal("Load failed", zap.Error(err))
	}

	out := output{
		Projects:   res.Projects,
		Stats:      res.Stats,
		Degraded:   res.DemandsErr != nil,
		TookMillis: res.Took.Milliseconds(),
	}
	if res.DemandsErr != nil {
		out.DemandsErr = res.DemandsErr.Error()
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		log.Fatal("Failed to write output", zap.Error(err))
	}
}
