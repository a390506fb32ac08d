package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var ok = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

func hit(h http.Handler) int {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/snapshot?year=1950", nil))
	return w.Code
}

func TestLimit_RefillsEachSecond(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	tb := NewTokenBucket(2)
	tb.now = func() time.Time { return now }
	tb.lastSec = now.Unix()
	h := Limit(ok, tb)

	assert.Equal(t, http.StatusOK, hit(h))
	assert.Equal(t, http.StatusOK, hit(h))
	assert.Equal(t, http.StatusTooManyRequests, hit(h))

	now = now.Add(time.Second)
	assert.Equal(t, http.StatusOK, hit(h))
}

func TestWrap_Disabled(t *testing.T) {
	h := Wrap(ok, false, 1)
	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, hit(h))
	}
	h = Wrap(ok, true, 0)
	assert.Equal(t, http.StatusOK, hit(h))
}
