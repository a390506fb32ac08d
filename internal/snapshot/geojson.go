package snapshot

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/pkg/errors"
)

// FeatureCollection：渲染层使用的 GeoJSON 集合，每条有效记录一个要素
// 背景：取代原先直接拼装数据表的做法，查询核心不依赖任何输出表示，组装在此处完成。
// 约束：要素 id 为记录标识；透传属性之外固定写入 name/region/valid_from/valid_to；几何为副本。
func (s *Snapshot) FeatureCollection() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	fc.ExtraMembers = geojson.Properties{
		"query_date": s.Date.String(),
		"count":      len(s.Records),
	}
	if s.Region != "" {
		fc.ExtraMembers["scope"] = s.Region
	}
	for i := range s.Records {
		r := &s.Records[i]
		f := geojson.NewFeature(orb.Clone(r.Geometry))
		f.ID = r.ID
		for k, v := range r.Properties {
			f.Properties[k] = v
		}
		f.Properties["name"] = r.ID
		f.Properties["region"] = r.Region
		f.Properties["valid_from"] = r.ValidFrom.String()
		f.Properties["valid_to"] = r.ValidTo.String()
		fc.Append(f)
	}
	return fc
}

// MarshalGeoJSON：序列化为 GeoJSON 字节
func (s *Snapshot) MarshalGeoJSON() ([]byte, error) {
	b, err := s.FeatureCollection().MarshalJSON()
	if err != nil {
		return nil, errors.Wrapf(err, "marshal snapshot %s", s.Date)
	}
	return b, nil
}
