package migrate

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"territory-api/internal/logger"
)

// 背景：首次运行自动创建语料表与索引，保障导入与加载
// 约束：使用 IF NOT EXISTS 避免与既有结构冲突；区间方向由 CHECK 约束兜底
var statements = []string{
	`CREATE TABLE IF NOT EXISTS _territories (
        id SERIAL PRIMARY KEY,
        seq INT NOT NULL,
        name TEXT NOT NULL,
        valid_from DATE NOT NULL,
        valid_to DATE NOT NULL,
        region TEXT NOT NULL DEFAULT '',
        geometry TEXT NOT NULL,
        properties TEXT NOT NULL DEFAULT '{}',
        CHECK (valid_from <= valid_to)
    )`,
	`CREATE INDEX IF NOT EXISTS idx_territories_seq ON _territories(seq)`,
	`CREATE INDEX IF NOT EXISTS idx_territories_interval ON _territories(valid_from, valid_to)`,
	`CREATE TABLE IF NOT EXISTS _territory_imports (
        id SERIAL PRIMARY KEY,
        source TEXT NOT NULL,
        records INT NOT NULL,
        imported_at TIMESTAMPTZ NOT NULL DEFAULT now()
    )`,
}

func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for i, s := range statements {
		logger.L().Debug("schema_exec", "idx", i)
		if _, err := db.ExecContext(ctx, s); err != nil {
			return errors.Wrapf(err, "schema statement %d", i)
		}
	}
	logger.L().Debug("schema_done")
	return nil
}
