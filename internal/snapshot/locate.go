package snapshot

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"territory-api/internal/territory"
)

// Locate：快照中几何包含该点的记录，顺序与快照一致
// 背景：供前端悬停提示使用；先做包围盒过滤，再做精确的点入多边形判定（洞内不算命中）。
// 约束：坐标为 WGS84 经纬度，orb.Point{lon, lat}；重叠记录全部返回。
func (s *Snapshot) Locate(pt orb.Point) []territory.Record {
	var out []territory.Record
	for i := range s.Records {
		g := s.Records[i].Geometry
		if g == nil || !g.Bound().Contains(pt) {
			continue
		}
		if contains(g, pt) {
			out = append(out, s.Records[i])
		}
	}
	return out
}

func contains(g orb.Geometry, pt orb.Point) bool {
	switch v := g.(type) {
	case orb.Polygon:
		return planar.PolygonContains(v, pt)
	case orb.MultiPolygon:
		return planar.MultiPolygonContains(v, pt)
	}
	return false
}
