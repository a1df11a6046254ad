package util

import (
	"math"
)

// MovingWindow keeps the mean and standard deviation of the last N values
// pushed into it.
//
// Values live in a fixed ring; head points at the oldest value. Sums are kept
// incrementally so Update and Drop are O(1) per value.
type MovingWindow struct {
	ring []float64
	head int

	length int

	sum    float64
	sumSq  float64
	mean   float64
	stddev float64
}

// NewMovingWindow returns a new moving window holding at most size values.
func NewMovingWindow(size int) *MovingWindow {
	if size < 1 {
		size = 1
	}

	return &MovingWindow{
		ring: make([]float64, size),
	}
}

func (mw *MovingWindow) calcFinal() (float64, float64) {
	if mw.length > 0 {
		mw.mean = mw.sum / float64(mw.length)
	} else {
		mw.mean = 0
	}

	if mw.length > 1 {
		// population variance; rounding can push it slightly negative
		variance := (mw.sumSq / float64(mw.length)) - (mw.mean * mw.mean)
		mw.stddev = math.Sqrt(math.Abs(variance))
	} else {
		mw.stddev = 0
	}

	return mw.mean, mw.stddev
}

// Update pushes value, evicting the oldest value when full.
func (mw *MovingWindow) Update(value float64) (float64, float64) {
	size := len(mw.ring)

	if mw.length < size {
		mw.ring[(mw.head+mw.length)%size] = value
		mw.length++
	} else {
		old := mw.ring[mw.head]
		mw.sum -= old
		mw.sumSq -= old * old

		mw.ring[mw.head] = value
		mw.head = (mw.head + 1) % size
	}

	mw.sum += value
	mw.sumSq += value * value

	return mw.calcFinal()
}

// Drop removes up to count of the oldest values.
func (mw *MovingWindow) Drop(count int) (float64, float64) {
	size := len(mw.ring)

	for count > 0 && mw.length > 0 {
		old := mw.ring[mw.head]
		mw.sum -= old
		mw.sumSq -= old * old

		mw.head = (mw.head + 1) % size
		mw.length--
		count--
	}

	if mw.length == 0 {
		// clear accumulated rounding error
		mw.sum = 0
		mw.sumSq = 0
	}

	return mw.calcFinal()
}

// Len returns how many values are in the window.
func (mw *MovingWindow) Len() int {
	return mw.length
}

// Cap returns the window size.
func (mw *MovingWindow) Cap() int {
	return len(mw.ring)
}

// Mean is the moving window average.
func (mw *MovingWindow) Mean() float64 {
	return mw.mean
}

// StdDev is the moving window standard deviation.
func (mw *MovingWindow) StdDev() float64 {
	return mw.stddev
}

// Stats returns the mean and standard deviation.
func (mw *MovingWindow) Stats() (float64, float64) {
	return mw.mean, mw.stddev
}
