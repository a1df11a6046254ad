//go:build !idg || !cgo || !cuda

package idg

import "github.com/noriah/visgrid/gridder"

func init() {
	gridder.RegisterBackend("cuda-generic", gridder.Unavailable{
		Reason: "built without the CUDA proxy (use -tags idg,cuda)",
	})
}
