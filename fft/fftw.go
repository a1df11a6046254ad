//go:build fftw && cgo

package fft

// The only binding needed is fftw_plan_dft_2d, run in place.

// #cgo pkg-config: fftw3
// #include <fftw3.h>
import "C"

import (
	"runtime"
	"unsafe"
)

// FFTW is true if built with the fftw tag.
const FFTW = true

// Plan holds an FFTW C plan
type Plan struct {
	data  []complex128
	cPlan C.fftw_plan
}

// NewPlan returns a new FFTW Plan. FFTW_ESTIMATE leaves data untouched
// while planning.
func NewPlan(data []complex128, rows, cols int, dir Direction) *Plan {
	sign := C.int(C.FFTW_FORWARD)
	if dir == Backward {
		sign = C.FFTW_BACKWARD
	}

	ptr := (*C.fftw_complex)(unsafe.Pointer(&data[0]))

	var plan = &Plan{
		data:  data,
		cPlan: C.fftw_plan_dft_2d(C.int(rows), C.int(cols), ptr, ptr, sign, C.FFTW_ESTIMATE),
	}

	// Rely on the runtime to free memory.
	runtime.SetFinalizer(plan, (*Plan).Destroy)

	return plan
}

// Execute runs the plan
func (p *Plan) Execute() {
	C.fftw_execute(p.cPlan)
	runtime.KeepAlive(p.data)
}

// Destroy releases resources
func (p *Plan) Destroy() {
	if p.cPlan != nil {
		C.fftw_destroy_plan(p.cPlan)
		p.cPlan = nil
	}
}
