package gridder

import (
	"github.com/noriah/visgrid/stage"
	"github.com/pkg/errors"
)

// ATerms holds a 2×2 Jones matrix per (timeslot, station, y, x), stored
// timeslot × station × subgrid × subgrid × 4.
type ATerms struct {
	Timeslots   int
	Stations    int
	SubgridSize int
	Data        []complex64
}

// IdentityATerms returns aterms that leave visibilities unchanged.
func IdentityATerms(timeslots, stations, subgridSize int) *ATerms {
	a := &ATerms{
		Timeslots:   timeslots,
		Stations:    stations,
		SubgridSize: subgridSize,
		Data:        make([]complex64, timeslots*stations*subgridSize*subgridSize*stage.NrCorrelations),
	}

	for i := 0; i < len(a.Data); i += stage.NrCorrelations {
		a.Data[i] = 1
		a.Data[i+3] = 1
	}

	return a
}

// At returns the Jones matrix of station at pixel (y, x) in timeslot.
func (a *ATerms) At(timeslot, station, y, x int) [4]complex64 {
	i := (((timeslot*a.Stations+station)*a.SubgridSize+y)*a.SubgridSize + x) * stage.NrCorrelations

	var m [4]complex64
	copy(m[:], a.Data[i:i+4])
	return m
}

func (a *ATerms) validate() error {
	want := a.Timeslots * a.Stations * a.SubgridSize * a.SubgridSize * stage.NrCorrelations
	if a.Timeslots < 1 || len(a.Data) != want {
		return errors.Wrapf(stage.ErrShapeMismatch,
			"aterms hold %d values, want %d timeslots × %d stations × %d² × 4",
			len(a.Data), a.Timeslots, a.Stations, a.SubgridSize)
	}
	return nil
}

// ATermOffsets splits timesteps evenly over timeslots: timeslot i starts at
// i × (timesteps / timeslots), and the last entry is timesteps.
func ATermOffsets(timeslots, timesteps int) []int32 {
	offsets := make([]int32, timeslots+1)
	step := timesteps / timeslots

	for i := 0; i < timeslots; i++ {
		offsets[i] = int32(i * step)
	}
	offsets[timeslots] = int32(timesteps)

	return offsets
}

func validateOffsets(offsets []int32, timeslots, timesteps int) error {
	if len(offsets) != timeslots+1 {
		return errors.Wrapf(stage.ErrShapeMismatch,
			"%d aterm offsets for %d timeslots", len(offsets), timeslots)
	}

	if offsets[0] != 0 || int(offsets[timeslots]) != timesteps {
		return errors.Wrapf(stage.ErrShapeMismatch,
			"aterm offsets span [%d, %d], want [0, %d]", offsets[0], offsets[timeslots], timesteps)
	}

	for i := 1; i < len(offsets); i++ {
		if offsets[i] < offsets[i-1] {
			return errors.Wrapf(stage.ErrShapeMismatch, "aterm offsets decrease at %d", i)
		}
	}

	return nil
}

// Timeslot returns the timeslot holding timestep t.
func Timeslot(offsets []int32, t int) int {
	for i := 1; i < len(offsets); i++ {
		if int32(t) < offsets[i] {
			return i - 1
		}
	}
	return len(offsets) - 2
}

// Apply returns a1 · v · a2ᴴ for 2×2 matrices stored row-major.
func Apply(a1, v, a2 [4]complex64) [4]complex64 {
	// t = a1 · v
	t := [4]complex64{
		a1[0]*v[0] + a1[1]*v[2],
		a1[0]*v[1] + a1[1]*v[3],
		a1[2]*v[0] + a1[3]*v[2],
		a1[2]*v[1] + a1[3]*v[3],
	}

	c := [4]complex64{conj(a2[0]), conj(a2[2]), conj(a2[1]), conj(a2[3])}

	return [4]complex64{
		t[0]*c[0] + t[1]*c[2],
		t[0]*c[1] + t[1]*c[3],
		t[2]*c[0] + t[3]*c[2],
		t[2]*c[1] + t[3]*c[3],
	}
}

func conj(v complex64) complex64 {
	return complex(real(v), -imag(v))
}
