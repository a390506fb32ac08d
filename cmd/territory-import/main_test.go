package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"territory-api/internal/territory"
)

const corpus = `{"type":"FeatureCollection","features":[
 {"type":"Feature","properties":{"cntry_name":"Iceland","gwsyear":1944,"gwsmonth":6,"gwsday":17,"gweyear":2019,"gwemonth":12,"gweday":31},
  "geometry":{"type":"Polygon","coordinates":[[[-24,63],[-13,63],[-13,67],[-24,63]]]}},
 {"type":"Feature","properties":{"cntry_name":"Broken","gwsyear":1950,"gwsmonth":1,"gwsday":1,"gweyear":1940,"gwemonth":1,"gweday":1},
  "geometry":{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,0]]]}}]}`

func writeCorpus(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "corpus.geojson")
	require.NoError(t, os.WriteFile(p, []byte(corpus), 0o644))
	return p
}

func run(args ...string) error {
	cmd := newRootCmd()
	cmd.SetArgs(args)
	return cmd.Execute()
}

func TestLoad_DryRunRejectsMalformedCorpus(t *testing.T) {
	p := writeCorpus(t)
	err := run("load", "--file", p, "--dry-run")
	require.Error(t, err)
	assert.ErrorIs(t, err, territory.ErrMalformedRecord)

	assert.NoError(t, run("load", "--file", p, "--dry-run", "--policy", "skip"))
	assert.Error(t, run("load", "--file", p, "--dry-run", "--policy", "maybe"))
}

func TestSnapshot_Command(t *testing.T) {
	p := writeCorpus(t)
	t.Setenv("INGEST_POLICY", "skip")
	assert.NoError(t, run("snapshot", "--file", p, "--date", "1950-01-01"))
	err := run("snapshot", "--file", p, "--date", "1950-02-30")
	assert.ErrorIs(t, err, territory.ErrInvalidDate)
	assert.Error(t, run("snapshot", "--file", p))
}
