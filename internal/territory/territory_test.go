package territory

import (
	"errors"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intp(v int) *int { return &v }

var square = orb.Polygon{{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 0}}}

func TestNewDate_LeapDay(t *testing.T) {
	_, err := NewDate(2023, 2, 29)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidDate))

	var de *InvalidDateError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, 2023, de.Year)

	d, err := NewDate(2024, 2, 29)
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", d.String())

	_, err = NewDate(1900, 2, 29)
	assert.Error(t, err, "1900 is not a leap year")
	_, err = NewDate(2000, 2, 29)
	assert.NoError(t, err)
}

func TestNewDate_OutOfRange(t *testing.T) {
	cases := []struct{ y, m, d int }{
		{2020, 0, 1},
		{2020, 13, 1},
		{2020, 4, 31},
		{2020, 1, 0},
		{2020, 1, 32},
		{MaxYear + 1, 1, 1},
		{MinYear - 1, 12, 31},
	}
	for _, c := range cases {
		_, err := NewDate(c.y, c.m, c.d)
		assert.ErrorIs(t, err, ErrInvalidDate, "%d-%d-%d", c.y, c.m, c.d)
	}
}

func TestDate_OrdinalAtYearLimits(t *testing.T) {
	lo := MustDate(MinYear, 1, 1)
	hi := MustDate(MaxYear, 12, 31)
	assert.Less(t, lo.Ordinal(), MustDate(0, 3, 1).Ordinal())
	assert.Greater(t, hi.Ordinal(), MustDate(9999, 12, 31).Ordinal())
	assert.Equal(t, hi.Ordinal()-1, MustDate(MaxYear, 12, 30).Ordinal())
}

func TestDate_OrdinalIsContiguous(t *testing.T) {
	d := MustDate(1899, 12, 25)
	prev := d.Ordinal()
	for i := 0; i < 800; i++ {
		d = next(d)
		o := d.Ordinal()
		require.Equal(t, prev+1, o, d.String())
		prev = o
	}
	assert.Equal(t, MustDate(1970, 1, 1).Ordinal()-MustDate(1969, 12, 31).Ordinal(), int64(1))
	assert.Less(t, MustDate(-5, 3, 1).Ordinal(), MustDate(1, 1, 1).Ordinal())
}

func next(d Date) Date {
	d.Day++
	if d.Day > DaysIn(d.Year, d.Month) {
		d.Day = 1
		d.Month++
		if d.Month > 12 {
			d.Month = 1
			d.Year++
		}
	}
	return d
}

func TestDate_WithinIsInclusive(t *testing.T) {
	from, to := MustDate(1900, 1, 1), MustDate(1910, 12, 31)
	assert.True(t, MustDate(1900, 1, 1).Within(from, to))
	assert.True(t, MustDate(1910, 12, 31).Within(from, to))
	assert.False(t, MustDate(1899, 12, 31).Within(from, to))
	assert.False(t, MustDate(1911, 1, 1).Within(from, to))
}

func TestRawRecord_Record(t *testing.T) {
	raw := RawRecord{
		Name:      "Austria-Hungary",
		StartYear: intp(1886), StartMonth: intp(1), StartDay: intp(1),
		EndYear: intp(1918), EndMonth: intp(11), EndDay: intp(11),
		Region:     "europe",
		Geometry:   square,
		Properties: map[string]any{"gwcode": 300.0},
	}
	rec, err := raw.Record(0)
	require.NoError(t, err)
	assert.Equal(t, MustDate(1918, 11, 11), rec.ValidTo)
	assert.Equal(t, 300.0, rec.Properties["gwcode"])

	raw.Properties["gwcode"] = 1.0
	assert.Equal(t, 300.0, rec.Properties["gwcode"], "properties must be copied")
}

func TestRawRecord_Malformed(t *testing.T) {
	base := func() RawRecord {
		return RawRecord{
			Name:      "X",
			StartYear: intp(1950), StartMonth: intp(1), StartDay: intp(1),
			EndYear: intp(1960), EndMonth: intp(1), EndDay: intp(1),
			Geometry: square,
		}
	}
	cases := map[string]func(r *RawRecord){
		"no name":       func(r *RawRecord) { r.Name = "" },
		"no start day":  func(r *RawRecord) { r.StartDay = nil },
		"no end year":   func(r *RawRecord) { r.EndYear = nil },
		"bad start":     func(r *RawRecord) { r.StartMonth = intp(13) },
		"reversed":      func(r *RawRecord) { r.EndYear = intp(1940) },
		"no geometry":   func(r *RawRecord) { r.Geometry = nil },
		"point payload": func(r *RawRecord) { r.Geometry = orb.Point{1, 2} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			r := base()
			mutate(&r)
			_, err := r.Record(7)
			require.ErrorIs(t, err, ErrMalformedRecord)
			var me *MalformedRecordError
			require.True(t, errors.As(err, &me))
			assert.Equal(t, 7, me.Index)
		})
	}
}

func TestMalformedRecordError_CarriesRawInterval(t *testing.T) {
	r := RawRecord{
		Name:      "Gran Colombia",
		StartYear: intp(1831), StartMonth: intp(1), StartDay: intp(1),
		EndYear: intp(1821), EndMonth: intp(1), EndDay: intp(1),
		Geometry: square,
	}
	_, err := r.Record(3)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Gran Colombia")
	assert.Contains(t, err.Error(), "1831-01-01")
	assert.Contains(t, err.Error(), "1821-01-01")
}
