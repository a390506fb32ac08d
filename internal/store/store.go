// 包 store: 领土语料的 PostgreSQL 持久化，提供整体替换写入与按入库序读取
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/paulmach/orb/geojson"
	"github.com/pkg/errors"

	"territory-api/internal/logger"
	"territory-api/internal/territory"
)

// Store: 数据库访问入口，持有连接池
type Store struct {
	db *sql.DB
}

func AttachDB(db *sql.DB) *Store { return &Store{db: db} }

// SaveRecords：在单个事务内整体替换语料并记录导入来源
// 背景：语料只读且整体发布，局部更新会让正在加载的进程读到半新半旧的数据。
// 约束：记录应已通过校验；seq 按切片顺序写入，决定后续加载顺序。
func (s *Store) SaveRecords(ctx context.Context, source string, recs []territory.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin")
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, `DELETE FROM _territories`); err != nil {
		return errors.Wrap(err, "clear territories")
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO _territories(seq, name, valid_from, valid_to, region, geometry, properties)
        VALUES($1,$2,$3,$4,$5,$6,$7)`)
	if err != nil {
		return errors.Wrap(err, "prepare insert")
	}
	defer stmt.Close()
	for i := range recs {
		r := &recs[i]
		geom, err := geojson.NewGeometry(r.Geometry).MarshalJSON()
		if err != nil {
			return errors.Wrapf(err, "encode geometry of %q", r.ID)
		}
		props := []byte("{}")
		if len(r.Properties) > 0 {
			if props, err = json.Marshal(r.Properties); err != nil {
				return errors.Wrapf(err, "encode properties of %q", r.ID)
			}
		}
		if _, err := stmt.ExecContext(ctx, i, r.ID, toTime(r.ValidFrom), toTime(r.ValidTo), r.Region, string(geom), string(props)); err != nil {
			return errors.Wrapf(err, "insert %q", r.ID)
		}
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO _territory_imports(source, records) VALUES($1,$2)`, source, len(recs)); err != nil {
		return errors.Wrap(err, "record import")
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "commit")
	}
	logger.L().Info("store_records_saved", "source", source, "records", len(recs))
	return nil
}

// LoadRecords：按 seq 读取语料，交由索引入库校验
// 约束：几何或属性无法解析时留空，由入库策略报告 MalformedRecordError，这里不丢弃任何行。
func (s *Store) LoadRecords(ctx context.Context) ([]territory.RawRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, valid_from, valid_to, region, geometry, properties FROM _territories ORDER BY seq, id`)
	if err != nil {
		return nil, errors.Wrap(err, "query territories")
	}
	defer rows.Close()
	var out []territory.RawRecord
	for rows.Next() {
		var (
			name, region, geom, props string
			from, to                  time.Time
		)
		if err := rows.Scan(&name, &from, &to, &region, &geom, &props); err != nil {
			return nil, errors.Wrap(err, "scan territory")
		}
		raw := territory.RawRecord{Name: name, Region: region}
		raw.StartYear, raw.StartMonth, raw.StartDay = parts(from)
		raw.EndYear, raw.EndMonth, raw.EndDay = parts(to)
		if g, err := geojson.UnmarshalGeometry([]byte(geom)); err == nil {
			raw.Geometry = g.Geometry()
		} else {
			logger.L().Debug("store_geometry_decode_error", "name", name, "err", err)
		}
		if props != "" && props != "{}" {
			if err := json.Unmarshal([]byte(props), &raw.Properties); err != nil {
				logger.L().Debug("store_properties_decode_error", "name", name, "err", err)
			}
		}
		out = append(out, raw)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate territories")
	}
	logger.L().Debug("store_records_loaded", "records", len(out))
	return out, nil
}

// LastImport：最近一次导入的来源与时间，未导入时 ok=false
func (s *Store) LastImport(ctx context.Context) (source string, at time.Time, ok bool, err error) {
	row := s.db.QueryRowContext(ctx, `SELECT source, imported_at FROM _territory_imports ORDER BY id DESC LIMIT 1`)
	switch err := row.Scan(&source, &at); {
	case errors.Is(err, sql.ErrNoRows):
		return "", time.Time{}, false, nil
	case err != nil:
		return "", time.Time{}, false, errors.Wrap(err, "query last import")
	}
	return source, at, true, nil
}

func toTime(d territory.Date) time.Time {
	return time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC)
}

func parts(t time.Time) (*int, *int, *int) {
	y, m, d := t.Date()
	mm := int(m)
	return &y, &mm, &d
}
