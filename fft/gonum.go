//go:build !fftw

package fft

import (
	"gonum.org/v1/gonum/dsp/fourier"
)

// FFTW is false if built without the fftw tag. It will use gonum instead.
const FFTW = false

// Plan holds gonum FFT plans for the rows and columns of a plane.
type Plan struct {
	data   []complex128
	rows   int
	cols   int
	dir    Direction
	rowFFT *fourier.CmplxFFT
	colFFT *fourier.CmplxFFT
	col    []complex128
}

// NewPlan returns a gonum plan. data must hold rows × cols values.
func NewPlan(data []complex128, rows, cols int, dir Direction) *Plan {
	return &Plan{
		data:   data,
		rows:   rows,
		cols:   cols,
		dir:    dir,
		rowFFT: fourier.NewCmplxFFT(cols),
		colFFT: fourier.NewCmplxFFT(rows),
		col:    make([]complex128, rows),
	}
}

// Execute transforms the rows, then the columns.
func (p *Plan) Execute() {
	for y := 0; y < p.rows; y++ {
		row := p.data[y*p.cols : (y+1)*p.cols]
		p.transform(p.rowFFT, row)
	}

	for x := 0; x < p.cols; x++ {
		for y := 0; y < p.rows; y++ {
			p.col[y] = p.data[y*p.cols+x]
		}

		p.transform(p.colFFT, p.col)

		for y := 0; y < p.rows; y++ {
			p.data[y*p.cols+x] = p.col[y]
		}
	}
}

func (p *Plan) transform(f *fourier.CmplxFFT, seq []complex128) {
	if p.dir == Forward {
		f.Coefficients(seq, seq)
	} else {
		f.Sequence(seq, seq)
	}
}

// Destroy is a no-op for gonum plans.
func (p *Plan) Destroy() {}
