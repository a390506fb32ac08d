package utils

import (
	"database/sql"

	_ "github.com/lib/pq"
	"github.com/pkg/errors"

	"territory-api/internal/config"
)

// OpenPostgres：按配置打开连接池（不主动建连，调用方负责 Ping）
func OpenPostgres(o config.PostgresOptions) (*sql.DB, error) {
	db, err := sql.Open("postgres", o.DSN())
	if err != nil {
		return nil, errors.Wrap(err, "open postgres")
	}
	if o.MaxOpenConns > 0 {
		db.SetMaxOpenConns(o.MaxOpenConns)
	}
	if o.MaxIdleConns > 0 {
		db.SetMaxIdleConns(o.MaxIdleConns)
	}
	return db, nil
}
