package stage

import (
	"math"

	"github.com/noriah/visgrid/source"
)

// Normalize zeroes flagged samples and samples with a NaN component. It
// returns the number of flagged and NaN samples found. Running it twice
// changes nothing.
func Normalize(blk *source.Block) (flagged, nan int) {
	for i, v := range blk.Data {
		zero := false

		if blk.Flag[i] {
			flagged++
			zero = true
		}

		if math.IsNaN(real(v)) || math.IsNaN(imag(v)) {
			nan++
			zero = true
		}

		if zero {
			blk.Data[i] = 0
		}
	}

	return flagged, nan
}
