//go:build idg && cgo && cuda

package idg

// #include <stdlib.h>
// typedef struct Proxy Proxy;
// Proxy* CUDA_Generic_create();
import "C"

import "github.com/noriah/visgrid/gridder"

func init() {
	gridder.RegisterBackend("cuda-generic", gridder.BackendFunc(func() (gridder.Proxy, error) {
		return newProxy((*C.Proxy)(C.CUDA_Generic_create()))
	}))
}
