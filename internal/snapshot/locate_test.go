package snapshot

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"territory-api/internal/territory"
)

func squareRing(x0, y0, x1, y1 float64) orb.Ring {
	return orb.Ring{{x0, y0}, {x1, y0}, {x1, y1}, {x0, y1}, {x0, y0}}
}

func TestLocate(t *testing.T) {
	d := territory.MustDate(1950, 1, 1)
	s := &Snapshot{Date: d, Records: []territory.Record{
		{ID: "Donut", ValidFrom: d, ValidTo: d, Geometry: orb.Polygon{squareRing(0, 0, 10, 10), squareRing(4, 4, 6, 6)}},
		{ID: "Islands", ValidFrom: d, ValidTo: d, Geometry: orb.MultiPolygon{{squareRing(20, 20, 21, 21)}, {squareRing(4.5, 4.5, 5.5, 5.5)}}},
		{ID: "Claim", ValidFrom: d, ValidTo: d, Geometry: orb.Polygon{squareRing(8, 8, 12, 12)}},
	}}

	ids := func(recs []territory.Record) []string {
		var out []string
		for _, r := range recs {
			out = append(out, r.ID)
		}
		return out
	}
	assert.Equal(t, []string{"Donut"}, ids(s.Locate(orb.Point{1, 1})))
	assert.Equal(t, []string{"Islands"}, ids(s.Locate(orb.Point{5, 5})), "hole excludes the outer polygon")
	assert.Equal(t, []string{"Islands"}, ids(s.Locate(orb.Point{20.5, 20.5})))
	assert.Equal(t, []string{"Donut", "Claim"}, ids(s.Locate(orb.Point{9, 9})), "overlaps keep snapshot order")
	require.Empty(t, s.Locate(orb.Point{50, 50}))
}
