package stage

import "github.com/noriah/visgrid/source"

// FilterAutocorrelations drops rows where antenna1 == antenna2 across the
// whole block, keeping the order of the rest. It compacts blk in place and
// returns the number of rows dropped.
func FilterAutocorrelations(blk *source.Block) int {
	n := blk.SampleSize()
	kept := 0

	for i := 0; i < blk.Rows; i++ {
		if blk.Antenna1[i] == blk.Antenna2[i] {
			continue
		}

		if kept != i {
			blk.Time[kept] = blk.Time[i]
			blk.Antenna1[kept] = blk.Antenna1[i]
			blk.Antenna2[kept] = blk.Antenna2[i]
			blk.UVW[kept] = blk.UVW[i]
			copy(blk.Data[kept*n:(kept+1)*n], blk.Data[i*n:(i+1)*n])
			copy(blk.Flag[kept*n:(kept+1)*n], blk.Flag[i*n:(i+1)*n])
		}
		kept++
	}

	dropped := blk.Rows - kept
	blk.Resize(kept)

	return dropped
}
