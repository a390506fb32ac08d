// 包 geoscope：请求未指定范围时，按访客 IP 所在大洲推断默认地区过滤条件
package geoscope

import (
	"net"
	"net/http"
	"strings"

	"github.com/oschwald/geoip2-golang"
	"github.com/pkg/errors"

	"territory-api/internal/logger"
)

// continents：GeoIP 大洲代码到前端范围名称
var continents = map[string]string{
	"EU": "europe",
	"AS": "asia",
	"AF": "africa",
	"NA": "north america",
	"SA": "south america",
	"OC": "oceania",
	"AN": "antarctica",
}

// Resolver：IP 到大洲代码的查询能力，由 *geoip2.Reader 适配实现
type Resolver interface {
	ContinentCode(ip net.IP) (string, error)
}

type geoipResolver struct{ r *geoip2.Reader }

func (g geoipResolver) ContinentCode(ip net.IP) (string, error) {
	c, err := g.r.Country(ip)
	if err != nil {
		return "", err
	}
	return c.Continent.Code, nil
}

// Scoper：默认范围推断器；零值或 nil 时总是返回空（即全世界）
type Scoper struct {
	res    Resolver
	closer func() error
}

// Open：打开 GeoLite2/GeoIP2 Country 或 City 库
func Open(path string) (*Scoper, error) {
	r, err := geoip2.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open geoip %s", path)
	}
	return &Scoper{res: geoipResolver{r: r}, closer: r.Close}, nil
}

func New(res Resolver) *Scoper { return &Scoper{res: res} }

func (s *Scoper) Close() error {
	if s == nil || s.closer == nil {
		return nil
	}
	return s.closer()
}

// ScopeFor：返回访客所在大洲对应的范围名称，无法判断时返回空串
// 约束：解析失败或私网地址不报错，只记 debug 日志，不影响查询主流程。
func (s *Scoper) ScopeFor(r *http.Request) string {
	if s == nil || s.res == nil {
		return ""
	}
	ip := net.ParseIP(strings.TrimSpace(VisitorIP(r)))
	if ip == nil || ip.IsPrivate() || ip.IsLoopback() {
		return ""
	}
	code, err := s.res.ContinentCode(ip)
	if err != nil {
		logger.L().Debug("geoscope_lookup_error", "ip", ip.String(), "err", err)
		return ""
	}
	return continents[strings.ToUpper(code)]
}

// VisitorIP：访客来源 IP
// 背景：多层代理环境下优先常见反向代理头，最后回退远端地址。
// 约束：头部可被伪造，仅用于推断默认显示范围，不得用于鉴权。
func VisitorIP(r *http.Request) string {
	h := r.Header
	if x := h.Get("x-forwarded-for"); x != "" {
		return strings.TrimSpace(strings.Split(x, ",")[0])
	}
	for _, k := range []string{"cf-connecting-ip", "x-real-ip", "x-client-ip"} {
		if x := h.Get(k); x != "" {
			return x
		}
	}
	if x := h.Get("forwarded"); x != "" {
		if i := strings.Index(strings.ToLower(x), "for="); i >= 0 {
			y := strings.Trim(x[i+4:], "\" ")
			if p := strings.IndexAny(y, ";,"); p >= 0 {
				y = y[:p]
			}
			return strings.Trim(y, "\"[]")
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
