package stage

import (
	"github.com/noriah/visgrid/source"
	"github.com/pkg/errors"
)

// Transpose copies filtered rows into buf.
//
// Rows must be time-major: all baselines of timestep 0, then all baselines
// of timestep 1 and so on, with every timestep listing the same antenna
// pairs in the same order. Row t*NrBaselines+bl lands at [bl][t]. UVW is
// narrowed to float32 and visibilities to complex64.
//
// It fails with ErrShapeMismatch when the row count or the antenna pairs
// do not fit that layout, and with ErrTimeOrder when TIME varies inside a
// timestep or does not increase between timesteps. buf is left partially
// written on error.
func Transpose(blk *source.Block, buf *BufferSet) error {
	nb, nt := buf.NrBaselines, buf.NrTimesteps

	if blk.Rows != nb*nt {
		return errors.Wrapf(ErrShapeMismatch,
			"%d rows, want %d baselines × %d timesteps", blk.Rows, nb, nt)
	}

	if blk.SampleSize() != buf.NrChannels*buf.NrCorrelations {
		return errors.Wrapf(ErrShapeMismatch,
			"%d samples per row, want %d channels × %d correlations",
			blk.SampleSize(), buf.NrChannels, buf.NrCorrelations)
	}

	for t := 0; t < nt; t++ {
		first := t * nb
		time := blk.Time[first]

		if t > 0 && !(time > blk.Time[first-nb]) {
			return errors.Wrapf(ErrTimeOrder,
				"timestep %d at %v does not follow %v", t, time, blk.Time[first-nb])
		}

		for bl := 0; bl < nb; bl++ {
			r := first + bl

			if blk.Time[r] != time {
				return errors.Wrapf(ErrTimeOrder,
					"row %d at %v inside timestep %d at %v", r, blk.Time[r], t, time)
			}

			pair := Baseline{blk.Antenna1[r], blk.Antenna2[r]}
			if t == 0 {
				buf.Baselines[bl] = pair
			} else if buf.Baselines[bl] != pair {
				return errors.Wrapf(ErrShapeMismatch,
					"timestep %d baseline %d is (%d, %d), timestep 0 had (%d, %d)",
					t, bl, pair.Antenna1, pair.Antenna2,
					buf.Baselines[bl].Antenna1, buf.Baselines[bl].Antenna2)
			}

			uvw := buf.UVWAt(bl, t)
			uvw[0] = float32(blk.UVW[r][0])
			uvw[1] = float32(blk.UVW[r][1])
			uvw[2] = float32(blk.UVW[r][2])

			vis := buf.Visibility(bl, t)
			for i, v := range blk.Samples(r) {
				vis[i] = complex64(v)
			}
		}
	}

	return nil
}
