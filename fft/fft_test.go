package fft

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeltaIsFlat(t *testing.T) {
	const rows, cols = 8, 16

	data := make([]complex128, rows*cols)
	data[0] = 1

	var plan *Plan
	InitPlan(&plan, data, rows, cols, Forward)
	plan.Execute()

	for i, v := range data {
		assert.InDelta(t, 1.0, real(v), 1e-12, "cell %d", i)
		assert.InDelta(t, 0.0, imag(v), 1e-12, "cell %d", i)
	}
}

func TestRoundTrip(t *testing.T) {
	const rows, cols = 8, 8

	data := make([]complex128, rows*cols)
	for i := range data {
		data[i] = complex(float64(i%5), float64(i%3)-1)
	}
	want := append([]complex128(nil), data...)

	NewPlan(data, rows, cols, Forward).Execute()
	NewPlan(data, rows, cols, Backward).Execute()

	for i := range data {
		got := data[i] / complex(rows*cols, 0)
		assert.InDelta(t, 0.0, cmplx.Abs(got-want[i]), 1e-9, "cell %d", i)
	}
}

func TestShiftedPoint(t *testing.T) {
	const n = 16

	// a point at (0, 1) gives a phase ramp along x only
	data := make([]complex128, n*n)
	data[1] = 1

	NewPlan(data, n, n, Forward).Execute()

	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			want := cmplx.Rect(1, -2*math.Pi*float64(x)/n)
			assert.InDelta(t, 0.0, cmplx.Abs(data[y*n+x]-want), 1e-9)
		}
	}
}

func TestShift(t *testing.T) {
	data := []complex128{
		0, 1, 2, 3,
		4, 5, 6, 7,
		8, 9, 10, 11,
		12, 13, 14, 15,
	}

	Shift(data, 4, 4)
	assert.Equal(t, []complex128{
		10, 11, 8, 9,
		14, 15, 12, 13,
		2, 3, 0, 1,
		6, 7, 4, 5,
	}, data)

	Shift(data, 4, 4)
	assert.Equal(t, complex128(5), data[5])
}

func Benchmark(b *testing.B) {
	if FFTW {
		b.Log("Benchmarking FFTW.")
	} else {
		b.Log("Benchmarking gonum (built without the fftw tag).")
	}

	const n = 512

	data := generateGrid(n)
	plan := NewPlan(data, n, n, Forward)

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		plan.Execute()
	}
}

func generateGrid(n int) []complex128 {
	data := make([]complex128, n*n)

	c := 3.1
	for i := range data {
		c += 0.3
		data[i] = complex(2*c-c*c, c)
	}

	return data
}
