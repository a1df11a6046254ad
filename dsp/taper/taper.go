// Package taper provides the apodization functions applied to subgrids and
// divided out of the image.
//
// See https://wikipedia.org/wiki/Window_function
package taper

import (
	"math"
	"sort"
)

// Function is a function that will do window things for you. It scales
// every value of buf by the window, centred on len(buf)/2.
type Function func(buf []float64)

// Functions maps taper names onto their functions.
var Functions = map[string]Function{
	"spheroidal": Spheroidal,
	"hann":       Hann,
	"hamming":    Hamming,
	"bartlett":   Bartlett,
	"blackman":   Blackman,
	"rectangle":  Rectangle,
}

// Names returns the known taper names, sorted.
func Names() []string {
	out := make([]string, 0, len(Functions))
	for name := range Functions {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Rectangle is just do nothing
func Rectangle(buf []float64) {
	// do nothing
}

// CosSum modifies the buffer to conform to a cosine sum window following a0
func CosSum(buf []float64, a0 float64) {
	var size = len(buf)
	var a1 = 1.0 - a0
	var coef = 2.0 * math.Pi / float64(size)
	for n := 0; n < size; n++ {
		buf[n] *= (a0 - a1*math.Cos(coef*float64(n)))
	}
}

// Hamming modifies the buffer to a Hamming window
func Hamming(buf []float64) {
	CosSum(buf, 25.0/46.0)
}

// Hann modifies the buffer to a Hann window
func Hann(buf []float64) {
	CosSum(buf, 0.5)
}

// Bartlett modifies the buffer to a Bartlett window
func Bartlett(buf []float64) {
	var size = len(buf)
	var fSize = float64(size)
	for n := 0; n < size; n++ {
		buf[n] *= (1.0 - math.Abs((2.0*float64(n)-fSize)/fSize))
	}
}

// Blackman modifies the buffer to a Blackman window
func Blackman(buf []float64) {
	var size = len(buf)
	var coef = 2.0 * math.Pi / float64(size)
	for n := 0; n < size; n++ {
		buf[n] *= 0.42 - 0.5*math.Cos(coef*float64(n)) + 0.08*math.Cos(2*coef*float64(n))
	}
}

// Rational approximation of the prolate spheroidal wave function, one row
// per interval of nu: [0, 0.75) and [0.75, 1].
var (
	spheroidalP = [2][5]float64{
		{8.203343e-2, -3.644705e-1, 6.278660e-1, -5.335581e-1, 2.312756e-1},
		{4.028559e-3, -3.697768e-2, 1.021332e-1, -1.201436e-1, 6.412774e-2},
	}
	spheroidalQ = [2][3]float64{
		{1.0000000e0, 8.212018e-1, 2.078043e-1},
		{1.0000000e0, 9.599102e-1, 2.918724e-1},
	}
)

// SpheroidalAt evaluates the spheroidal at nu in [0, 1]. It is 1 at 0 and
// 0 at 1 and beyond.
func SpheroidalAt(nu float64) float64 {
	var part int
	var end float64

	switch {
	case nu >= 0 && nu < 0.75:
		part, end = 0, 0.75
	case nu >= 0.75 && nu <= 1:
		part, end = 1, 1
	default:
		return 0
	}

	nusq := nu * nu
	delnusq := nusq - end*end

	top := spheroidalP[part][0]
	pow := delnusq
	for k := 1; k < 5; k++ {
		top += spheroidalP[part][k] * pow
		pow *= delnusq
	}

	bot := spheroidalQ[part][0]
	pow = delnusq
	for k := 1; k < 3; k++ {
		bot += spheroidalQ[part][k] * pow
		pow *= delnusq
	}

	if bot == 0 {
		return 0
	}

	return (1 - nusq) * (top / bot)
}

// Spheroidal modifies the buffer to a prolate spheroidal window sampled at
// |x| for x in [-1, 1) with len(buf) steps.
func Spheroidal(buf []float64) {
	var size = len(buf)
	for n := 0; n < size; n++ {
		nu := math.Abs(-1 + 2*float64(n)/float64(size))
		buf[n] *= SpheroidalAt(nu)
	}
}

// Make2D returns the size × size outer product of f with itself.
func Make2D(size int, f Function) []float32 {
	w := make([]float64, size)
	for i := range w {
		w[i] = 1
	}
	f(w)

	out := make([]float32, size*size)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			out[y*size+x] = float32(w[y] * w[x])
		}
	}

	return out
}

// Identity returns a size × size taper of ones.
func Identity(size int) []float32 {
	return Make2D(size, Rectangle)
}
