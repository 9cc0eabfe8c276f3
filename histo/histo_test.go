package histo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewData(Te *testing.T) {
	raw := []float64{0.5, 0.1, math.NaN(), 2.5, 9, -1, 1.5, 1.2}
	D := NewData([]float64{0, 1, 2, 3}, raw)
	assert.Equal(Te, []float64{2, 2, 1}, D.View())
	//NaN and out of range points are not counted.
	assert.Equal(Te, 5, D.Total())
	//the raw data is not touched
	assert.Equal(Te, 0.5, raw[0])
	assert.Panics(Te, func() { NewData([]float64{1, 0}, nil) })
}

func TestAdd(Te *testing.T) {
	D := NewData([]float64{0, 1, 2}, nil)
	assert.Equal(Te, []float64{0, 0}, D.View())
	assert.Equal(Te, 0.0, D.Distribution("empty").Total())
	D.Add(0.5, 1.5, 1.7)
	D.Add(0.2, math.NaN(), 5)
	assert.Equal(Te, []float64{2, 2}, D.View())
	assert.Equal(Te, 4, D.Total())
	assert.InDelta(Te, 1.0, D.Distribution("x").Total(), 1e-12)
}

func TestStepDistribution(Te *testing.T) {
	D := NewData([]float64{0, 1, 2}, []float64{0.5, 1.5, 1.7, 1.1})
	dist := D.Distribution("test")
	assert.True(Te, dist.Step())
	assert.Equal(Te, []float64{0, 0, 1, 1, 2, 2}, dist.X)
	assert.InDeltaSlice(Te, []float64{0, 0.25, 0.25, 0.75, 0.75, 0}, dist.Y, 1e-12)
	assert.InDelta(Te, 1.0, dist.Total(), 1e-12)
	//the histogram itself is left as it was
	assert.Equal(Te, []float64{1, 3}, D.View())
}
