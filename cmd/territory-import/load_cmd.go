package main

import (
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"territory-api/internal/config"
	"territory-api/internal/index"
	"territory-api/internal/loader"
	"territory-api/internal/logger"
	"territory-api/internal/store"
)

type loadResult struct {
	Records   int    `json:"records"`
	Version   string `json:"version"`
	FirstDate string `json:"first_date,omitempty"`
	LastDate  string `json:"last_date,omitempty"`
	Written   bool   `json:"written"`
}

func newLoadCmd(cfg *config.Config) *cobra.Command {
	var (
		file   string
		source string
		policy string
		dryRun bool
	)
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Validate a GeoJSON corpus and replace the stored corpus with it",
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				file = cfg.CorpusPath
			}
			if policy == "" {
				policy = cfg.IngestPolicy
			}
			p, ok := index.ParsePolicy(policy)
			if !ok {
				return errors.Errorf("invalid --policy %q", policy)
			}
			if source == "" {
				source = file
			}
			start := time.Now()
			raws, err := loader.LoadFile(file, cfg.Fields.FieldMap())
			if err != nil {
				return err
			}
			// 背景：先用与服务端相同的规则建索引，语料有问题时不写库
			idx, err := index.FromRaw(raws, index.WithPolicy(p))
			if err != nil {
				return err
			}
			res := loadResult{Records: idx.Len(), Version: idx.Version()}
			if first, last, ok := idx.Bounds(); ok {
				res.FirstDate, res.LastDate = first.String(), last.String()
			}
			if !dryRun {
				db, err := openDB(cmd.Context(), cfg)
				if err != nil {
					return err
				}
				defer db.Close()
				if err := store.AttachDB(db).SaveRecords(cmd.Context(), source, idx.Records()); err != nil {
					return err
				}
				res.Written = true
				logger.L().Info("corpus_import_done", "source", source, "records", res.Records, "version", res.Version)
			}
			return writeJSON(output{Command: "load", DurationMS: time.Since(start).Milliseconds(), Result: res})
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "GeoJSON corpus path (default CORPUS_PATH)")
	cmd.Flags().StringVar(&source, "source", "", "Source label recorded with the import (default file path)")
	cmd.Flags().StringVar(&policy, "policy", "", "Malformed record policy: reject or skip (default INGEST_POLICY)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Validate only, do not write to the database")
	return cmd
}
