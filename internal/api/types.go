package api

// 文档注释：对外返回结构
// 背景：统一对外序列化模型，仅包含必要字段；快照本体为 GeoJSON，不在此定义。
// 约束：字段稳定；新增字段需评估兼容性与前端依赖。
type errorResult struct {
	Error string `json:"error"`
}

type boundsResult struct {
	FirstYear int    `json:"first_year"`
	LastYear  int    `json:"last_year"`
	FirstDate string `json:"first_date"`
	LastDate  string `json:"last_date"`
	Records   int    `json:"records"`
	Version   string `json:"version"`
}

type statsResult struct {
	Served    int64  `json:"served"`
	Empty     int64  `json:"empty"`
	CacheHits int64  `json:"cache_hits"`
	Invalid   int64  `json:"invalid"`
	Records   int    `json:"records"`
	Version   string `json:"version"`
	BuiltAt   string `json:"built_at,omitempty"`
	Commit    string `json:"commit"`
}

type locateMatch struct {
	Name      string `json:"name"`
	Region    string `json:"region"`
	ValidFrom string `json:"valid_from"`
	ValidTo   string `json:"valid_to"`
}

type locateResult struct {
	QueryDate string        `json:"query_date"`
	Lat       float64       `json:"lat"`
	Lon       float64       `json:"lon"`
	Matches   []locateMatch `json:"matches"`
}
