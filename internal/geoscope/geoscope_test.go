package geoscope

import (
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeResolver map[string]string

func (f fakeResolver) ContinentCode(ip net.IP) (string, error) {
	if c, ok := f[ip.String()]; ok {
		return c, nil
	}
	return "", errors.New("not found")
}

func req(remote string, headers map[string]string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/snapshot", nil)
	r.RemoteAddr = remote
	for k, v := range headers {
		r.Header.Set(k, v)
	}
	return r
}

func TestVisitorIP(t *testing.T) {
	assert.Equal(t, "81.2.69.142", VisitorIP(req("10.0.0.1:5555", map[string]string{"X-Forwarded-For": "81.2.69.142, 10.0.0.2"})))
	assert.Equal(t, "1.2.3.4", VisitorIP(req("10.0.0.1:5555", map[string]string{"X-Real-IP": "1.2.3.4"})))
	assert.Equal(t, "2001:db8::1", VisitorIP(req("10.0.0.1:5555", map[string]string{"Forwarded": `for="[2001:db8::1]";proto=https`})))
	assert.Equal(t, "203.0.113.9", VisitorIP(req("203.0.113.9:443", nil)))
}

func TestScopeFor(t *testing.T) {
	s := New(fakeResolver{"81.2.69.142": "EU", "1.1.1.1": "oc", "8.8.8.8": "XX"})

	assert.Equal(t, "europe", s.ScopeFor(req("81.2.69.142:1", nil)))
	assert.Equal(t, "oceania", s.ScopeFor(req("1.1.1.1:1", nil)))
	assert.Equal(t, "", s.ScopeFor(req("8.8.8.8:1", nil)), "unknown continent code")
	assert.Equal(t, "", s.ScopeFor(req("9.9.9.9:1", nil)), "lookup miss")
	assert.Equal(t, "", s.ScopeFor(req("192.168.1.10:1", nil)), "private address")
}

func TestNilScoper(t *testing.T) {
	var s *Scoper
	assert.Equal(t, "", s.ScopeFor(req("81.2.69.142:1", nil)))
	assert.NoError(t, s.Close())
}

func TestOpen_MissingFile(t *testing.T) {
	_, err := Open("testdata/does-not-exist.mmdb")
	assert.Error(t, err)
}
