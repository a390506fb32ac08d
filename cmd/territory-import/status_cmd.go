package main

import (
	"time"

	"github.com/spf13/cobra"

	"territory-api/internal/config"
	"territory-api/internal/store"
)

type statusResult struct {
	Records    int    `json:"records"`
	Source     string `json:"source,omitempty"`
	ImportedAt string `json:"imported_at,omitempty"`
}

func newStatusCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the stored corpus size and last import",
		RunE: func(cmd *cobra.Command, args []string) error {
			start := time.Now()
			db, err := openDB(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer db.Close()
			st := store.AttachDB(db)
			raws, err := st.LoadRecords(cmd.Context())
			if err != nil {
				return err
			}
			res := statusResult{Records: len(raws)}
			src, at, ok, err := st.LastImport(cmd.Context())
			if err != nil {
				return err
			}
			if ok {
				res.Source, res.ImportedAt = src, at.UTC().Format(time.RFC3339)
			}
			return writeJSON(output{Command: "status", DurationMS: time.Since(start).Milliseconds(), Result: res})
		},
	}
}
