package index

import "territory-api/internal/territory"

// LinearScan：逐条比较的参考实现
// 背景：区间树只是性能优化，结果集必须与全量扫描完全一致；测试以此为基准。
// 约束：返回顺序与输入顺序一致；不做记录校验。
func LinearScan(records []territory.Record, date territory.Date, region string) []territory.Record {
	want := normRegion(region)
	var out []territory.Record
	for i := range records {
		r := &records[i]
		if !r.ActiveOn(date) {
			continue
		}
		if want != "" && normRegion(r.Region) != want {
			continue
		}
		out = append(out, *r)
	}
	return out
}
