//go:build !idg || !cgo

// Package idg binds the image-domain gridding proxies of libidg. Without
// the idg build tag and cgo, the proxies are registered as unavailable.
package idg

import "github.com/noriah/visgrid/gridder"

func init() {
	gridder.RegisterBackend("cpu-optimized", gridder.Unavailable{
		Reason: "built without libidg (use -tags idg)",
	})
}
