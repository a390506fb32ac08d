// 包 snapshot：把区间索引的查询结果组装为某一日期的快照，并负责锚定日期的默认值规则
package snapshot

import (
	"strings"

	"territory-api/internal/territory"
)

// Querier：快照构建依赖的最小查询能力，由 *index.Index 实现
type Querier interface {
	ActiveOn(date territory.Date, region string) []territory.Record
}

// Snapshot：某一查询日期的有效记录集合，按索引遍历顺序排列
// 约束：每条记录满足 ValidFrom <= Date <= ValidTo 且不重复；每次查询重新计算，不持久化。
type Snapshot struct {
	Date             territory.Date
	Region           string
	OnePerIdentifier bool
	Records          []territory.Record
}

func (s *Snapshot) Empty() bool { return len(s.Records) == 0 }

type request struct {
	month, day int
	region     string
	dedup      bool
}

type Option func(*request)

// WithMonth / WithDay：未指定时默认 1 月 1 日（与前端仅提供年份滑块一致）
func WithMonth(m int) Option { return func(r *request) { r.month = m } }

func WithDay(d int) Option { return func(r *request) { r.day = d } }

// WithRegion：地区过滤，"world" 或空串表示不过滤
func WithRegion(region string) Option { return func(r *request) { r.region = region } }

// OnePerIdentifier：每个标识仅保留一条记录（起始日最晚者，同起始日取后入库者）
func OnePerIdentifier() Option { return func(r *request) { r.dedup = true } }

// Build：构建快照
// 背景：先显式校验 (year, month, day) 为真实日历日期，再委托索引查询；默认保留重叠记录，
// 因为静默去重会隐藏合法的数据冲突。
// 返回：非法日期返回 InvalidDateError 且不返回快照；无匹配返回空快照。
func Build(q Querier, year int, opts ...Option) (*Snapshot, error) {
	req := request{month: 1, day: 1}
	for _, fn := range opts {
		fn(&req)
	}
	date, err := territory.NewDate(year, req.month, req.day)
	if err != nil {
		return nil, err
	}
	region := NormalizeScope(req.region)
	recs := q.ActiveOn(date, region)
	if req.dedup {
		recs = latestPerIdentifier(recs)
	}
	return &Snapshot{Date: date, Region: region, OnePerIdentifier: req.dedup, Records: recs}, nil
}

// NormalizeScope：前端范围选择到地区过滤条件的映射，"world" 表示全量
func NormalizeScope(scope string) string {
	s := strings.ToLower(strings.TrimSpace(scope))
	if s == "world" {
		return ""
	}
	return s
}

// latestPerIdentifier：保留每个标识的最新修订，输出维持原有相对顺序
func latestPerIdentifier(recs []territory.Record) []territory.Record {
	if len(recs) < 2 {
		return recs
	}
	best := make(map[string]int, len(recs))
	for i := range recs {
		j, ok := best[recs[i].ID]
		if !ok || !recs[i].ValidFrom.Before(recs[j].ValidFrom) {
			best[recs[i].ID] = i
		}
	}
	out := make([]territory.Record, 0, len(best))
	for i := range recs {
		if best[recs[i].ID] == i {
			out = append(out, recs[i])
		}
	}
	return out
}
