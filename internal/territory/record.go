package territory

import (
	"strconv"

	"github.com/paulmach/orb"
)

// Record：某一领土实例在闭区间 [ValidFrom, ValidTo] 内的权威形状
// 约束：入库后只读；Geometry 与 Properties 为记录独占副本，引擎不解释坐标。
type Record struct {
	ID         string
	ValidFrom  Date
	ValidTo    Date
	Region     string
	Geometry   orb.Geometry
	Properties map[string]any
	// Seq：入库序号，由索引构建时分配，决定输出顺序
	Seq int
}

// ActiveOn：闭区间判定
func (r *Record) ActiveOn(d Date) bool { return d.Within(r.ValidFrom, r.ValidTo) }

// Check：校验记录完整性与区间方向
// 背景：缺失字段或 from > to 会导致查询静默错误，必须在入库时暴露；不交换、不修正边界。
func (r *Record) Check(index int) error {
	bad := func(reason string) error {
		return &MalformedRecordError{ID: r.ID, Index: index, From: dateText(r.ValidFrom), To: dateText(r.ValidTo), Reason: reason}
	}
	switch {
	case r.ID == "":
		return bad("missing identifier")
	case r.ValidFrom.IsZero():
		return bad("missing valid-from date")
	case r.ValidTo.IsZero():
		return bad("missing valid-to date")
	case !r.ValidFrom.Valid():
		return bad("valid-from is not a calendar date")
	case !r.ValidTo.Valid():
		return bad("valid-to is not a calendar date")
	case r.ValidFrom.After(r.ValidTo):
		return bad("valid-from is after valid-to")
	case r.Geometry == nil:
		return bad("missing geometry")
	}
	switch r.Geometry.(type) {
	case orb.Polygon, orb.MultiPolygon:
	default:
		return bad("geometry must be Polygon or MultiPolygon, got " + r.Geometry.GeoJSONType())
	}
	return nil
}

func dateText(d Date) string {
	if d.IsZero() {
		return "?"
	}
	return d.String()
}

// RawRecord：几何加载方交付的已解析要素
// 背景：日期分量保持指针以区分“缺失”与“0”；由 Record 负责校验与转换。
type RawRecord struct {
	Name       string
	StartYear  *int
	StartMonth *int
	StartDay   *int
	EndYear    *int
	EndMonth   *int
	EndDay     *int
	Region     string
	Geometry   orb.Geometry
	Properties map[string]any
}

// Record：转换为领土记录，缺失字段或非法日历日期返回 MalformedRecordError
// index 仅用于错误上下文。
func (r RawRecord) Record(index int) (Record, error) {
	from := rawText(r.StartYear, r.StartMonth, r.StartDay)
	to := rawText(r.EndYear, r.EndMonth, r.EndDay)
	bad := func(reason string) error {
		return &MalformedRecordError{ID: r.Name, Index: index, From: from, To: to, Reason: reason}
	}
	if r.Name == "" {
		return Record{}, bad("missing identifier")
	}
	if r.StartYear == nil || r.StartMonth == nil || r.StartDay == nil {
		return Record{}, bad("missing valid-from component")
	}
	if r.EndYear == nil || r.EndMonth == nil || r.EndDay == nil {
		return Record{}, bad("missing valid-to component")
	}
	vf, err := NewDate(*r.StartYear, *r.StartMonth, *r.StartDay)
	if err != nil {
		return Record{}, bad("valid-from is not a calendar date")
	}
	vt, err := NewDate(*r.EndYear, *r.EndMonth, *r.EndDay)
	if err != nil {
		return Record{}, bad("valid-to is not a calendar date")
	}
	if r.Geometry == nil {
		return Record{}, bad("missing geometry")
	}
	rec := Record{
		ID:         r.Name,
		ValidFrom:  vf,
		ValidTo:    vt,
		Region:     r.Region,
		Geometry:   orb.Clone(r.Geometry),
		Properties: copyProps(r.Properties),
	}
	if err := rec.Check(index); err != nil {
		return Record{}, err
	}
	return rec, nil
}

func rawText(y, m, d *int) string {
	part := func(p *int) string {
		if p == nil {
			return "?"
		}
		return strconv.Itoa(*p)
	}
	return part(y) + "-" + part(m) + "-" + part(d)
}

func copyProps(p map[string]any) map[string]any {
	if len(p) == 0 {
		return nil
	}
	out := make(map[string]any, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}
