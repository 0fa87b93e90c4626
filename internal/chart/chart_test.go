package chart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"txdash/internal/query"
)

func points(pairs ...any) []query.Point {
	var out []query.Point
	for i := 0; i < len(pairs); i += 2 {
		out = append(out, query.Point{Date: pairs[i].(string), Amount: decimal.NewFromInt(int64(pairs[i+1].(int)))})
	}
	return out
}

func TestBuildKeepsDateOrderAndZeroBase(t *testing.T) {
	c, err := Build(points("2022-01-02", 5425, "2022-01-01", 5300), DefaultOptions())
	require.NoError(t, err)

	require.Len(t, c.XAxis.Ticks, 2)
	assert.Equal(t, "2022-01-02", c.XAxis.Ticks[0].Label)
	assert.Equal(t, "2022-01-01", c.XAxis.Ticks[1].Label)

	yr, ok := c.YAxis.Range.(interface{ GetMin() float64 })
	require.True(t, ok)
	assert.Equal(t, 0.0, yr.GetMin())

	require.Len(t, c.Series, 1)
	assert.Equal(t, SeriesName, c.Series[0].GetName())
}

func TestBuildRejectsEmpty(t *testing.T) {
	_, err := Build(nil, DefaultOptions())
	assert.ErrorIs(t, err, ErrNoPoints)
}

func TestSVG(t *testing.T) {
	out, err := SVG(points("2022-01-01", 5300, "2022-01-02", 5425), Options{Width: 400, Height: 200})
	require.NoError(t, err)
	assert.Contains(t, string(out), "<svg")
	assert.Contains(t, string(out), "2022-01-01")
}

func TestSVGSinglePoint(t *testing.T) {
	out, err := SVG(points("2022-01-01", 0), DefaultOptions())
	require.NoError(t, err)
	assert.Contains(t, string(out), "<svg")
}
