// Package fft provides 2-D complex fourier transforms over row-major
// planes, backed by FFTW when built with the fftw tag and gonum otherwise.
package fft

// Direction of a transform. Neither direction normalizes.
type Direction int

const (
	Forward Direction = iota
	Backward
)

// InitPlan points pointer at a plan transforming data, a rows × cols
// row-major plane, in place.
func InitPlan(pointer **Plan, data []complex128, rows, cols int, dir Direction) {
	(*pointer) = NewPlan(data, rows, cols, dir)
}

// Shift swaps quadrants so the zero frequency moves between the corner and
// the centre of an even-sized plane. It is its own inverse.
func Shift(data []complex128, rows, cols int) {
	hr, hc := rows/2, cols/2

	for y := 0; y < hr; y++ {
		top := data[y*cols : (y+1)*cols]
		bot := data[(y+hr)*cols : (y+hr+1)*cols]

		for x := 0; x < hc; x++ {
			top[x], bot[x+hc] = bot[x+hc], top[x]
			top[x+hc], bot[x] = bot[x], top[x+hc]
		}
	}
}
