package main

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"territory-api/internal/config"
	"territory-api/internal/index"
	"territory-api/internal/loader"
	"territory-api/internal/snapshot"
	"territory-api/internal/territory"
)

// newSnapshotCmd：离线渲染单日快照到标准输出，便于核对语料
func newSnapshotCmd(cfg *config.Config) *cobra.Command {
	var (
		file  string
		date  string
		scope string
		dedup bool
	)
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Render the GeoJSON snapshot of a corpus file for one date",
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				file = cfg.CorpusPath
			}
			t, err := time.Parse("2006-01-02", date)
			if err != nil {
				return errors.Wrapf(territory.ErrInvalidDate, "--date %q", date)
			}
			d := territory.FromTime(t)
			raws, err := loader.LoadFile(file, cfg.Fields.FieldMap())
			if err != nil {
				return err
			}
			p, _ := index.ParsePolicy(cfg.IngestPolicy)
			idx, err := index.FromRaw(raws, index.WithPolicy(p))
			if err != nil {
				return err
			}
			opts := []snapshot.Option{snapshot.WithMonth(d.Month), snapshot.WithDay(d.Day), snapshot.WithRegion(scope)}
			if dedup {
				opts = append(opts, snapshot.OnePerIdentifier())
			}
			snap, err := snapshot.Build(idx, d.Year, opts...)
			if err != nil {
				return err
			}
			b, err := snap.MarshalGeoJSON()
			if err != nil {
				return err
			}
			_, err = os.Stdout.Write(append(b, '\n'))
			return err
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "GeoJSON corpus path (default CORPUS_PATH)")
	cmd.Flags().StringVar(&date, "date", "", "Query date, YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&scope, "scope", "world", "Region filter")
	cmd.Flags().BoolVar(&dedup, "dedup", false, "Keep one record per identifier")
	_ = cmd.MarkFlagRequired("date")
	return cmd
}
