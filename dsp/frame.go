package dsp

import "fmt"

// Frame is one rendered batch.
type Frame struct {
	Batch int
	Time  float64 // TIME of the first row, seconds

	GridSize int
	Grid     []float64 // log(|grid| + 1), GridSize × GridSize

	ImageSize int
	Image     []float64 // cropped sky image, ImageSize × ImageSize

	Peak float64 // maximum of Image
	Low  float64 // colour limits
	High float64
}

// Title returns "UV Data: HH:MM" for the frame time.
func (f *Frame) Title() string {
	t := int64(f.Time)
	return fmt.Sprintf("UV Data: %02d:%02d", mod(t/3600, 24), mod(t/60, 60))
}

// GridAt returns the log magnitude at (y, x).
func (f *Frame) GridAt(y, x int) float64 {
	return f.Grid[y*f.GridSize+x]
}

// ImageAt returns the sky image at (y, x).
func (f *Frame) ImageAt(y, x int) float64 {
	return f.Image[y*f.ImageSize+x]
}

func mod(a, b int64) int64 {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}
