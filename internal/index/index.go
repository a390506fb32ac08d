// 包 index：领土记录的时间区间索引；一次构建，只读查询，可被多个请求并发访问
package index

import (
	"hash/fnv"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/paulmach/orb"

	"territory-api/internal/logger"
	"territory-api/internal/territory"
)

// Policy：入库时遇到不合格记录的处理策略，同一次构建内对所有记录一致生效
type Policy int

const (
	// PolicyReject：任一记录不合格即整体失败
	PolicyReject Policy = iota
	// PolicySkip：跳过不合格记录并逐条告警
	PolicySkip
)

// ParsePolicy：解析配置文本（reject/skip），未知值返回 false
func ParsePolicy(s string) (Policy, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "reject":
		return PolicyReject, true
	case "skip":
		return PolicySkip, true
	}
	return PolicyReject, false
}

func (p Policy) String() string {
	if p == PolicySkip {
		return "skip"
	}
	return "reject"
}

type options struct {
	policy Policy
	log    *slog.Logger
}

type Option func(*options)

func WithPolicy(p Policy) Option { return func(o *options) { o.policy = p } }

func WithLogger(l *slog.Logger) Option { return func(o *options) { o.log = l } }

// entry：记录与预计算的整数键（天序号、小写地区）
type entry struct {
	rec    territory.Record
	from   int64
	to     int64
	region string
}

// Index：区间树索引
// 背景：滑块每移动一次就发起一次查询，全量扫描在大语料下浪费；中心区间树将查询降为 O(log n + k)。
// 约束：构建后不再修改；结果按入库序（Seq）升序返回，渲染层可依赖其稳定的图层顺序。
type Index struct {
	entries  []entry
	root     *node
	min, max territory.Date
	regions  []string
	version  string
	builtAt  time.Time
}

// Build：构建索引
// 背景：校验每条记录（缺失字段、from > to、几何类型），按策略拒绝或跳过；重叠区间原样保留。
// 返回：索引或首个 MalformedRecordError（PolicyReject）。输入切片、几何与属性均被深拷贝，调用方可复用。
func Build(records []territory.Record, opts ...Option) (*Index, error) {
	o := options{policy: PolicyReject}
	for _, fn := range opts {
		fn(&o)
	}
	if o.log == nil {
		o.log = logger.L()
	}
	o.log.Debug("index_build_begin", "records", len(records), "policy", o.policy.String())
	idx := &Index{entries: make([]entry, 0, len(records)), builtAt: time.Now()}
	seen := map[string]struct{}{}
	skipped := 0
	for i := range records {
		r := records[i]
		if err := r.Check(i); err != nil {
			if o.policy == PolicyReject {
				return nil, err
			}
			skipped++
			o.log.Warn("index_record_skipped", "err", err)
			continue
		}
		r.Seq = len(idx.entries)
		r.Geometry = orb.Clone(r.Geometry)
		r.Properties = cloneProps(r.Properties)
		reg := normRegion(r.Region)
		idx.entries = append(idx.entries, entry{rec: r, from: r.ValidFrom.Ordinal(), to: r.ValidTo.Ordinal(), region: reg})
		if reg != "" {
			seen[reg] = struct{}{}
		}
		if len(idx.entries) == 1 || r.ValidFrom.Before(idx.min) {
			idx.min = r.ValidFrom
		}
		if len(idx.entries) == 1 || r.ValidTo.After(idx.max) {
			idx.max = r.ValidTo
		}
	}
	for reg := range seen {
		idx.regions = append(idx.regions, reg)
	}
	sort.Strings(idx.regions)
	if len(idx.entries) > 0 && len(idx.regions) == 0 {
		o.log.Warn("index_no_regions", "records", len(idx.entries), "hint", "set FIELD_REGION to enable scoped snapshots")
	}
	all := make([]int, len(idx.entries))
	for i := range all {
		all[i] = i
	}
	idx.root = buildNode(idx.entries, all)
	idx.version = fingerprint(idx.entries)
	o.log.Info("index_build_done", "records", len(idx.entries), "skipped", skipped, "regions", len(idx.regions), "version", idx.version)
	return idx, nil
}

func cloneProps(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// FromRaw：把加载方交付的原始要素转换为记录并构建索引
// 约束：缺字段的要素与区间非法的记录适用同一策略，错误位置为原始要素下标。
func FromRaw(raws []territory.RawRecord, opts ...Option) (*Index, error) {
	o := options{policy: PolicyReject}
	for _, fn := range opts {
		fn(&o)
	}
	if o.log == nil {
		o.log = logger.L()
	}
	recs := make([]territory.Record, 0, len(raws))
	for i := range raws {
		r, err := raws[i].Record(i)
		if err != nil {
			if o.policy == PolicyReject {
				return nil, err
			}
			o.log.Warn("index_record_skipped", "err", err)
			continue
		}
		recs = append(recs, r)
	}
	return Build(recs, opts...)
}

// ActiveOn：返回 date 当日有效的记录（首尾两日均包含），可按地区过滤
// 约束：region 为空表示不过滤；大小写不敏感精确匹配；无地区标签的记录不匹配非空过滤条件。
// 无匹配时返回空切片，不视为错误。
func (x *Index) ActiveOn(date territory.Date, region string) []territory.Record {
	if x == nil || x.root == nil {
		return nil
	}
	want := normRegion(region)
	var hits []int
	x.root.stab(x.entries, date.Ordinal(), func(i int) {
		if want == "" || x.entries[i].region == want {
			hits = append(hits, i)
		}
	})
	if len(hits) == 0 {
		return nil
	}
	sort.Ints(hits)
	out := make([]territory.Record, len(hits))
	for i, h := range hits {
		out[i] = x.entries[h].rec
	}
	return out
}

func (x *Index) Len() int { return len(x.entries) }

// Bounds：最早起始日与最晚截止日，供前端滑块确定范围；空索引 ok=false
func (x *Index) Bounds() (min, max territory.Date, ok bool) {
	if len(x.entries) == 0 {
		return territory.Date{}, territory.Date{}, false
	}
	return x.min, x.max, true
}

// Regions：去重后的小写地区标签，字典序
func (x *Index) Regions() []string { return append([]string(nil), x.regions...) }

// Version：语料内容指纹，用作输出缓存键的一部分，语料变化即失效
func (x *Index) Version() string { return x.version }

func (x *Index) BuiltAt() time.Time { return x.builtAt }

// Records：按入库序返回全部记录副本切片（记录本身只读）
func (x *Index) Records() []territory.Record {
	out := make([]territory.Record, len(x.entries))
	for i := range x.entries {
		out[i] = x.entries[i].rec
	}
	return out
}

func normRegion(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func fingerprint(es []entry) string {
	h := fnv.New64a()
	for i := range es {
		e := &es[i]
		h.Write([]byte(e.rec.ID))
		h.Write([]byte{0})
		h.Write([]byte(e.rec.ValidFrom.String() + e.rec.ValidTo.String()))
		h.Write([]byte(e.region))
		h.Write([]byte{0})
	}
	return strconv.FormatUint(h.Sum64(), 16) + "-" + strconv.Itoa(len(es))
}
