// 包 ingest：语料加载通道；从文件或数据库读取原始要素，构建新索引并原子发布
package ingest

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"territory-api/internal/config"
	"territory-api/internal/index"
	"territory-api/internal/loader"
	"territory-api/internal/logger"
	"territory-api/internal/metrics"
	"territory-api/internal/territory"
)

// Source：语料来源
type Source interface {
	Name() string
	Load(ctx context.Context) ([]territory.RawRecord, error)
}

// FileSource：GeoJSON 文件来源
type FileSource struct {
	Path   string
	Fields loader.FieldMap
}

func (f FileSource) Name() string { return "file:" + f.Path }

func (f FileSource) Load(_ context.Context) ([]territory.RawRecord, error) {
	return loader.LoadFile(f.Path, f.Fields)
}

// RecordLoader：由 *store.Store 实现
type RecordLoader interface {
	LoadRecords(ctx context.Context) ([]territory.RawRecord, error)
}

// DBSource：PostgreSQL 来源
type DBSource struct{ Store RecordLoader }

func (DBSource) Name() string { return "postgres" }

func (d DBSource) Load(ctx context.Context) ([]territory.RawRecord, error) {
	return d.Store.LoadRecords(ctx)
}

// Reloader：加载语料并整体替换当前索引
// 背景：索引构建后只读，重载时构建全新索引再原子替换；进行中的查询继续使用旧索引。
// 约束：加载或构建失败时保留旧索引，错误返回给调用方并计入指标。
type Reloader struct {
	src    Source
	holder *index.Holder
	opts   []index.Option
}

func NewReloader(src Source, holder *index.Holder, opts ...index.Option) *Reloader {
	return &Reloader{src: src, holder: holder, opts: opts}
}

func (r *Reloader) Holder() *index.Holder { return r.holder }

// Reload：返回新发布的索引
func (r *Reloader) Reload(ctx context.Context) (*index.Index, error) {
	l := logger.L()
	begin := time.Now()
	l.Info("corpus_load_begin", "source", r.src.Name())
	raws, err := r.src.Load(ctx)
	if err != nil {
		metrics.ReloadTotal.WithLabelValues("load_error").Inc()
		return nil, errors.Wrapf(err, "load corpus from %s", r.src.Name())
	}
	idx, err := index.FromRaw(raws, r.opts...)
	if err != nil {
		metrics.ReloadTotal.WithLabelValues("build_error").Inc()
		return nil, errors.Wrapf(err, "build index from %s", r.src.Name())
	}
	prev := r.holder.Store(idx)
	metrics.ReloadTotal.WithLabelValues("ok").Inc()
	metrics.IndexRecords.Set(float64(idx.Len()))
	metrics.ReloadDurationMs.Observe(float64(time.Since(begin).Milliseconds()))
	prevVersion := ""
	if prev != nil {
		prevVersion = prev.Version()
	}
	l.Info("corpus_published", "records", idx.Len(), "version", idx.Version(), "previous", prevVersion, "duration_ms", time.Since(begin).Milliseconds())
	return idx, nil
}

// StartPeriodic：按固定间隔在后台重载，ctx 取消即停止
// 约束：every <= 0 时不启动；单次失败只记录日志，下个周期继续。
func (r *Reloader) StartPeriodic(ctx context.Context, every time.Duration) {
	if every <= 0 {
		return
	}
	l := logger.L()
	go func() {
		t := time.NewTicker(every)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				l.Debug("corpus_reload_stopped")
				return
			case <-t.C:
				if _, err := r.Reload(ctx); err != nil {
					l.Error("corpus_reload_error", "err", err)
				}
			}
		}
	}()
	l.Info("corpus_reload_scheduled", "every", every.String())
}

// NewSource：按 CORPUS_SOURCE 选择来源；postgres 模式下 st 不能为空
func NewSource(cfg *config.Config, st RecordLoader) (Source, error) {
	switch cfg.CorpusSource {
	case "file":
		return FileSource{Path: cfg.CorpusPath, Fields: cfg.Fields.FieldMap()}, nil
	case "postgres":
		if st == nil {
			return nil, errors.New("postgres corpus source requires a database")
		}
		return DBSource{Store: st}, nil
	}
	return nil, errors.Errorf("unknown corpus source %q", cfg.CorpusSource)
}
