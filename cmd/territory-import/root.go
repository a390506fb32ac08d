package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"territory-api/internal/config"
	"territory-api/internal/logger"
	"territory-api/internal/migrate"
	"territory-api/internal/utils"
)

type output struct {
	Command    string `json:"command"`
	DurationMS int64  `json:"duration_ms"`
	Result     any    `json:"result"`
}

func newRootCmd() *cobra.Command {
	cfg := &config.Config{}
	cmd := &cobra.Command{
		Use:          "territory-import",
		Short:        "Territory corpus import and inspection tools",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c, err := config.Load()
			if err != nil {
				return err
			}
			logger.Setup(logger.Options{Level: c.LogLevel, Format: c.LogFormat})
			*cfg = *c
			return nil
		},
	}
	cmd.AddCommand(newLoadCmd(cfg), newStatusCmd(cfg), newSnapshotCmd(cfg))
	return cmd
}

// openDB：连接并确保表结构存在
func openDB(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	db, err := utils.OpenPostgres(cfg.Postgres)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	if err := migrate.EnsureSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func writeJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
