// 包 loader：从 GeoJSON 文件读取领土语料，转换为已解析的 RawRecord 供索引入库
package loader

import (
	"encoding/json"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/paulmach/orb/geojson"
	"github.com/pkg/errors"

	"territory-api/internal/logger"
	"territory-api/internal/territory"
)

// FieldMap：要素属性名映射
// 背景：不同数据集的命名各异；默认值对应 CShapes 2.0（cntry_name / gwsyear ... gweday）。
type FieldMap struct {
	Name       string
	StartYear  string
	StartMonth string
	StartDay   string
	EndYear    string
	EndMonth   string
	EndDay     string
	Region     string
}

// CShapes：CShapes 2.0 GeoJSON 的属性名
// 约束：CShapes 2.0 不带地区属性，Region 留空；需要按地区过滤时通过 FIELD_REGION 指定属性名。
func CShapes() FieldMap {
	return FieldMap{
		Name:       "cntry_name",
		StartYear:  "gwsyear",
		StartMonth: "gwsmonth",
		StartDay:   "gwsday",
		EndYear:    "gweyear",
		EndMonth:   "gwemonth",
		EndDay:     "gweday",
	}
}

// withDefaults：未设置的字段回退到 CShapes 命名
func (m FieldMap) withDefaults() FieldMap {
	d := CShapes()
	pick := func(v, def string) string {
		if strings.TrimSpace(v) == "" {
			return def
		}
		return v
	}
	return FieldMap{
		Name:       pick(m.Name, d.Name),
		StartYear:  pick(m.StartYear, d.StartYear),
		StartMonth: pick(m.StartMonth, d.StartMonth),
		StartDay:   pick(m.StartDay, d.StartDay),
		EndYear:    pick(m.EndYear, d.EndYear),
		EndMonth:   pick(m.EndMonth, d.EndMonth),
		EndDay:     pick(m.EndDay, d.EndDay),
		Region:     pick(m.Region, d.Region),
	}
}

func (m FieldMap) keys() []string {
	return []string{m.Name, m.StartYear, m.StartMonth, m.StartDay, m.EndYear, m.EndMonth, m.EndDay, m.Region}
}

// LoadFile：读取 GeoJSON 文件
func LoadFile(path string, fields FieldMap) ([]territory.RawRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open corpus")
	}
	defer f.Close()
	raws, err := ReadGeoJSON(f, fields)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", path)
	}
	return raws, nil
}

// ReadGeoJSON：解析 FeatureCollection
// 背景：仅做结构解析与字段映射，不校验区间；日期分量接受 JSON 数值或数字字符串。
// 约束：非整数或无法解析的日期分量按“缺失”处理，由入库校验报告 MalformedRecordError。
func ReadGeoJSON(r io.Reader, fields FieldMap) ([]territory.RawRecord, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "read geojson")
	}
	fc, err := geojson.UnmarshalFeatureCollection(b)
	if err != nil {
		return nil, errors.Wrap(err, "decode feature collection")
	}
	if fc.Type != "FeatureCollection" {
		return nil, errors.Errorf("expected FeatureCollection, got %q", fc.Type)
	}
	fm := fields.withDefaults()
	mapped := map[string]struct{}{}
	for _, k := range fm.keys() {
		mapped[k] = struct{}{}
	}
	out := make([]territory.RawRecord, 0, len(fc.Features))
	for _, f := range fc.Features {
		p := f.Properties
		raw := territory.RawRecord{
			Name:       strProp(p, fm.Name),
			StartYear:  intProp(p, fm.StartYear),
			StartMonth: intProp(p, fm.StartMonth),
			StartDay:   intProp(p, fm.StartDay),
			EndYear:    intProp(p, fm.EndYear),
			EndMonth:   intProp(p, fm.EndMonth),
			EndDay:     intProp(p, fm.EndDay),
			Region:     strProp(p, fm.Region),
			Geometry:   f.Geometry,
		}
		for k, v := range p {
			if _, ok := mapped[k]; ok {
				continue
			}
			if raw.Properties == nil {
				raw.Properties = map[string]any{}
			}
			raw.Properties[k] = v
		}
		out = append(out, raw)
	}
	logger.L().Debug("geojson_loaded", "features", len(out))
	return out, nil
}

func strProp(p geojson.Properties, key string) string {
	if key == "" {
		return ""
	}
	switch v := p[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return ""
}

func intProp(p geojson.Properties, key string) *int {
	var f float64
	switch v := p[key].(type) {
	case float64:
		f = v
	case json.Number:
		x, err := v.Float64()
		if err != nil {
			return nil
		}
		f = x
	case string:
		x, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil
		}
		f = x
	default:
		return nil
	}
	// 超出年份范围的值按缺失处理，避免 int 转换溢出
	if f != math.Trunc(f) || math.IsInf(f, 0) || f < territory.MinYear || f > territory.MaxYear {
		return nil
	}
	n := int(f)
	return &n
}
