package ingest

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"territory-api/internal/config"
	"territory-api/internal/index"
	"territory-api/internal/logger"
	"territory-api/internal/territory"
)

func intp(v int) *int { return &v }

func raw(name string, fromYear, toYear int) territory.RawRecord {
	return territory.RawRecord{
		Name:       name,
		StartYear:  intp(fromYear),
		StartMonth: intp(1),
		StartDay:   intp(1),
		EndYear:    intp(toYear),
		EndMonth:   intp(12),
		EndDay:     intp(31),
		Geometry:   orb.Polygon{{{0, 0}, {1, 0}, {1, 1}, {0, 0}}},
	}
}

type fakeSource struct {
	calls atomic.Int32
	raws  []territory.RawRecord
	err   error
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) Load(context.Context) ([]territory.RawRecord, error) {
	f.calls.Add(1)
	return f.raws, f.err
}

func TestReload_PublishesAtomically(t *testing.T) {
	src := &fakeSource{raws: []territory.RawRecord{raw("A", 1900, 1950)}}
	h := index.NewHolder(nil)
	r := NewReloader(src, h, index.WithLogger(logger.Discard()))

	first, err := r.Reload(context.Background())
	require.NoError(t, err)
	assert.Same(t, first, h.Load())

	src.raws = []territory.RawRecord{raw("A", 1900, 1950), raw("B", 1940, 2000)}
	second, err := r.Reload(context.Background())
	require.NoError(t, err)
	assert.Same(t, second, h.Load())
	assert.NotEqual(t, first.Version(), second.Version())
	assert.Equal(t, 1, first.Len(), "previous index is untouched")
}

func TestReload_FailureKeepsPreviousIndex(t *testing.T) {
	src := &fakeSource{raws: []territory.RawRecord{raw("A", 1900, 1950)}}
	h := index.NewHolder(nil)
	r := NewReloader(src, h, index.WithLogger(logger.Discard()))
	good, err := r.Reload(context.Background())
	require.NoError(t, err)

	src.raws = []territory.RawRecord{raw("Reversed", 1950, 1900)}
	_, err = r.Reload(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, territory.ErrMalformedRecord)
	assert.Same(t, good, h.Load())

	src.err = assert.AnError
	_, err = r.Reload(context.Background())
	require.Error(t, err)
	assert.Same(t, good, h.Load())
}

func TestReload_SkipPolicy(t *testing.T) {
	src := &fakeSource{raws: []territory.RawRecord{raw("Reversed", 1950, 1900), raw("B", 1900, 1950)}}
	h := index.NewHolder(nil)
	r := NewReloader(src, h, index.WithPolicy(index.PolicySkip), index.WithLogger(logger.Discard()))
	idx, err := r.Reload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, idx.Len())
}

func TestStartPeriodic_StopsOnCancel(t *testing.T) {
	src := &fakeSource{raws: []territory.RawRecord{raw("A", 1900, 1950)}}
	r := NewReloader(src, index.NewHolder(nil), index.WithLogger(logger.Discard()))
	ctx, cancel := context.WithCancel(context.Background())
	r.StartPeriodic(ctx, 10*time.Millisecond)

	require.Eventually(t, func() bool { return src.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()
	time.Sleep(30 * time.Millisecond)
	n := src.calls.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, n, src.calls.Load())
}

func TestStartPeriodic_DisabledForZeroInterval(t *testing.T) {
	src := &fakeSource{}
	r := NewReloader(src, index.NewHolder(nil))
	r.StartPeriodic(context.Background(), 0)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(0), src.calls.Load())
}

func TestFileSource(t *testing.T) {
	p := filepath.Join(t.TempDir(), "c.geojson")
	doc := `{"type":"FeatureCollection","features":[{"type":"Feature",
	  "properties":{"cntry_name":"Iceland","gwsyear":1944,"gwsmonth":6,"gwsday":17,"gweyear":2019,"gwemonth":12,"gweday":31},
	  "geometry":{"type":"Polygon","coordinates":[[[-24,63],[-13,63],[-13,67],[-24,63]]]}}]}`
	require.NoError(t, os.WriteFile(p, []byte(doc), 0o644))

	h := index.NewHolder(nil)
	idx, err := NewReloader(FileSource{Path: p}, h, index.WithLogger(logger.Discard())).Reload(context.Background())
	require.NoError(t, err)
	assert.Len(t, idx.ActiveOn(territory.MustDate(1944, 6, 17), ""), 1)
	assert.Empty(t, idx.ActiveOn(territory.MustDate(1944, 6, 16), ""))
}

func TestNewSource(t *testing.T) {
	cfg := &config.Config{CorpusSource: "file", CorpusPath: "corpus.geojson", Fields: config.FieldOptions{Name: "name"}}
	src, err := NewSource(cfg, nil)
	require.NoError(t, err)
	fs, ok := src.(FileSource)
	require.True(t, ok)
	assert.Equal(t, "name", fs.Fields.Name)
	assert.Equal(t, "file:corpus.geojson", src.Name())

	cfg.CorpusSource = "postgres"
	_, err = NewSource(cfg, nil)
	assert.Error(t, err)
	src, err = NewSource(cfg, &fakeLoader{})
	require.NoError(t, err)
	assert.Equal(t, "postgres", src.Name())

	cfg.CorpusSource = "s3"
	_, err = NewSource(cfg, nil)
	assert.Error(t, err)
}

type fakeLoader struct{}

func (fakeLoader) LoadRecords(context.Context) ([]territory.RawRecord, error) { return nil, nil }
