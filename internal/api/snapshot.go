package api

import (
	"encoding/binary"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/paulmach/orb"

	"territory-api/internal/cache"
	"territory-api/internal/index"
	"territory-api/internal/logger"
	"territory-api/internal/metrics"
	"territory-api/internal/snapshot"
	"territory-api/internal/territory"
)

// snapshotQuery：/snapshot 与 /locate 共用的查询条件
type snapshotQuery struct {
	date  territory.Date
	scope string
	dedup bool
}

func (q snapshotQuery) options() []snapshot.Option {
	opts := []snapshot.Option{snapshot.WithMonth(q.date.Month), snapshot.WithDay(q.date.Day), snapshot.WithRegion(q.scope)}
	if q.dedup {
		opts = append(opts, snapshot.OnePerIdentifier())
	}
	return opts
}

// parseQuery：解析 year/month/day/scope/dedup，失败时已写出 400
// 约束：年份缺失或非数字、日期不合法一律拒绝，不做任何纠正；month/day 缺省为 1。
func (s *server) parseQuery(w http.ResponseWriter, r *http.Request, idx *index.Index) (snapshotQuery, bool) {
	q := r.URL.Query()
	year, ok := requiredInt(q.Get("year"))
	if !ok {
		s.reject(w, "year", "year must be an integer")
		return snapshotQuery{}, false
	}
	month, ok := intParam(q.Get("month"), 1)
	if !ok {
		s.reject(w, "month", "month must be an integer")
		return snapshotQuery{}, false
	}
	day, ok := intParam(q.Get("day"), 1)
	if !ok {
		s.reject(w, "day", "day must be an integer")
		return snapshotQuery{}, false
	}
	date, err := territory.NewDate(year, month, day)
	if err != nil {
		s.reject(w, "date", err.Error())
		return snapshotQuery{}, false
	}
	scope := snapshot.NormalizeScope(q.Get("scope"))
	if !q.Has("scope") {
		scope = s.inferScope(r, idx)
	}
	return snapshotQuery{date: date, scope: scope, dedup: boolParam(q.Get("dedup"))}, true
}

// handleSnapshot：GET /snapshot?year=Y[&month=M][&day=D][&scope=S][&dedup=1]
// 背景：缓存键含语料版本，重载后自动失效；未给出 scope 时按访客大洲推断，推断结果不在语料中则回退 world。
func (s *server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	begin := time.Now()
	metrics.SnapshotRequestsTotal.Inc()
	idx := s.Holder.Load()
	if idx == nil {
		writeError(w, http.StatusServiceUnavailable, "corpus not loaded")
		return
	}
	sq, ok := s.parseQuery(w, r, idx)
	if !ok {
		return
	}

	key := cache.Key(idx.Version(), sq.date, sq.scope, sq.dedup)
	if s.Cache != nil {
		if v, hit := s.Cache.Get(r.Context(), key); hit {
			if n, b, ok := unpackEntry(v); ok {
				metrics.CacheHitsTotal.Inc()
				s.stats.cacheHits.Add(1)
				s.observe(begin, n)
				writeGeoJSON(w, b, sq.scope, idx.Version(), "hit")
				return
			}
		}
		metrics.CacheMissesTotal.Inc()
	}

	snap, err := snapshot.Build(idx, sq.date.Year, sq.options()...)
	if err != nil {
		s.reject(w, "date", err.Error())
		return
	}
	b, err := snap.MarshalGeoJSON()
	if err != nil {
		logger.L().Error("snapshot_marshal_error", "date", sq.date.String(), "err", err)
		writeError(w, http.StatusInternalServerError, "render failed")
		return
	}
	if s.Cache != nil {
		s.Cache.Set(r.Context(), key, packEntry(len(snap.Records), b))
	}
	s.observe(begin, len(snap.Records))
	writeGeoJSON(w, b, sq.scope, idx.Version(), "miss")
}

// observe：命中与未命中共用的统计出口
func (s *server) observe(begin time.Time, records int) {
	s.stats.served.Add(1)
	metrics.SnapshotRecords.Observe(float64(records))
	if records == 0 {
		s.stats.empty.Add(1)
		metrics.EmptySnapshotsTotal.Inc()
	}
	metrics.SnapshotDurationMs.Observe(float64(time.Since(begin).Milliseconds()))
}

// packEntry：缓存值 = uvarint(记录数) + GeoJSON 正文，命中时无需解码正文即可上报记录数
func packEntry(records int, body []byte) []byte {
	buf := make([]byte, binary.MaxVarintLen64, binary.MaxVarintLen64+len(body))
	k := binary.PutUvarint(buf, uint64(records))
	return append(buf[:k], body...)
}

// unpackEntry：前缀损坏时返回 false，调用方按未命中处理
func unpackEntry(v []byte) (int, []byte, bool) {
	n, k := binary.Uvarint(v)
	if k <= 0 || n > math.MaxInt32 {
		return 0, nil, false
	}
	return int(n), v[k:], true
}

// handleLocate：GET /locate?lat=..&lon=..&year=Y[...]，返回该日包含此点的记录
func (s *server) handleLocate(w http.ResponseWriter, r *http.Request) {
	idx := s.Holder.Load()
	if idx == nil {
		writeError(w, http.StatusServiceUnavailable, "corpus not loaded")
		return
	}
	q := r.URL.Query()
	lat, errLat := strconv.ParseFloat(strings.TrimSpace(q.Get("lat")), 64)
	lon, errLon := strconv.ParseFloat(strings.TrimSpace(q.Get("lon")), 64)
	if errLat != nil || errLon != nil || lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		s.reject(w, "coordinate", "lat/lon must be valid WGS84 coordinates")
		return
	}
	sq, ok := s.parseQuery(w, r, idx)
	if !ok {
		return
	}
	snap, err := snapshot.Build(idx, sq.date.Year, sq.options()...)
	if err != nil {
		s.reject(w, "date", err.Error())
		return
	}
	res := locateResult{QueryDate: sq.date.String(), Lat: lat, Lon: lon, Matches: []locateMatch{}}
	for _, rec := range snap.Locate(orb.Point{lon, lat}) {
		res.Matches = append(res.Matches, locateMatch{
			Name:      rec.ID,
			Region:    rec.Region,
			ValidFrom: rec.ValidFrom.String(),
			ValidTo:   rec.ValidTo.String(),
		})
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *server) reject(w http.ResponseWriter, reason, msg string) {
	s.stats.invalid.Add(1)
	metrics.InvalidQueriesTotal.WithLabelValues(reason).Inc()
	writeError(w, http.StatusBadRequest, msg)
}

func (s *server) inferScope(r *http.Request, idx *index.Index) string {
	guess := s.Scoper.ScopeFor(r)
	if guess == "" {
		return ""
	}
	for _, reg := range idx.Regions() {
		if reg == guess {
			return guess
		}
	}
	return ""
}

func writeGeoJSON(w http.ResponseWriter, b []byte, scope, version, cacheState string) {
	if scope == "" {
		scope = "world"
	}
	h := w.Header()
	h.Set("content-type", "application/geo+json; charset=utf-8")
	h.Set("cache-control", "no-store")
	h.Set("x-snapshot-scope", scope)
	h.Set("x-corpus-version", version)
	h.Set("x-cache", cacheState)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

func requiredInt(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	return n, err == nil
}

// intParam：空串返回默认值；显式给出的值原样返回，由日期校验决定是否合法
func intParam(s string, def int) (int, bool) {
	if strings.TrimSpace(s) == "" {
		return def, true
	}
	return requiredInt(s)
}

func boolParam(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
