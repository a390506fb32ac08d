// 包 api：集中注册 HTTP API 路由以解耦主入口，便于后续扩展与替换
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"territory-api/internal/cache"
	"territory-api/internal/geoscope"
	"territory-api/internal/index"
	"territory-api/internal/logger"
	"territory-api/internal/version"
)

// Reloader：由 *ingest.Reloader 实现
type Reloader interface {
	Reload(ctx context.Context) (*index.Index, error)
}

// Deps：路由依赖；Cache、Scoper、Reloader 可为空
type Deps struct {
	Holder     *index.Holder
	Cache      cache.Cache
	Scoper     *geoscope.Scoper
	Reloader   Reloader
	AdminToken string
}

// counters：进程级查询计数，供 /stats 返回
type counters struct {
	served    atomic.Int64
	empty     atomic.Int64
	cacheHits atomic.Int64
	invalid   atomic.Int64
}

type server struct {
	Deps
	stats counters
}

// BuildRoutes：构建并返回 API 路由；独立 ServeMux 便于在主入口挂载到 /api 前缀
func BuildRoutes(d Deps) *http.ServeMux {
	s := &server{Deps: d}
	apiMux := http.NewServeMux()
	apiMux.HandleFunc("/snapshot", s.handleSnapshot)
	apiMux.HandleFunc("/locate", s.handleLocate)
	apiMux.HandleFunc("/bounds", s.handleBounds)
	apiMux.HandleFunc("/scopes", s.handleScopes)
	apiMux.HandleFunc("/stats", s.handleStats)
	apiMux.HandleFunc("/reload", s.handleReload)
	return apiMux
}

func (s *server) handleBounds(w http.ResponseWriter, r *http.Request) {
	idx := s.Holder.Load()
	if idx == nil {
		writeError(w, http.StatusServiceUnavailable, "corpus not loaded")
		return
	}
	res := boundsResult{Records: idx.Len(), Version: idx.Version()}
	if first, last, ok := idx.Bounds(); ok {
		res.FirstYear, res.LastYear = first.Year, last.Year
		res.FirstDate, res.LastDate = first.String(), last.String()
	}
	writeJSON(w, http.StatusOK, res)
}

// handleScopes：前端范围选项，首项固定为 world
func (s *server) handleScopes(w http.ResponseWriter, r *http.Request) {
	scopes := []string{"world"}
	if idx := s.Holder.Load(); idx != nil {
		scopes = append(scopes, idx.Regions()...)
	}
	writeJSON(w, http.StatusOK, scopes)
}

func (s *server) handleStats(w http.ResponseWriter, r *http.Request) {
	res := statsResult{
		Served:    s.stats.served.Load(),
		Empty:     s.stats.empty.Load(),
		CacheHits: s.stats.cacheHits.Load(),
		Invalid:   s.stats.invalid.Load(),
		Commit:    version.Commit,
	}
	if idx := s.Holder.Load(); idx != nil {
		res.Records = idx.Len()
		res.Version = idx.Version()
		res.BuiltAt = idx.BuiltAt().UTC().Format(time.RFC3339)
	}
	writeJSON(w, http.StatusOK, res)
}

// handleReload：管理员触发语料重载
// 约束：仅 POST；令牌为空或不匹配返回 403；失败时旧索引继续服务并返回 500。
func (s *server) handleReload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("allow", http.MethodPost)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	t := r.Header.Get("x-admin-token")
	if t == "" || s.AdminToken == "" || t != s.AdminToken {
		w.WriteHeader(http.StatusForbidden)
		return
	}
	if s.Reloader == nil {
		w.WriteHeader(http.StatusNotImplemented)
		return
	}
	if _, err := s.Reloader.Reload(r.Context()); err != nil {
		logger.L().Error("corpus_reload_error", "err", err)
		writeError(w, http.StatusInternalServerError, "reload failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.Header().Set("cache-control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResult{Error: msg})
}
