//go:build idg && cgo

package idg

// #include <stdlib.h>
// typedef struct Proxy Proxy;
// Proxy* CPU_Optimized_create();
import "C"

import "github.com/noriah/visgrid/gridder"

func init() {
	gridder.RegisterBackend("cpu-optimized", gridder.BackendFunc(func() (gridder.Proxy, error) {
		return newProxy((*C.Proxy)(C.CPU_Optimized_create()))
	}))
}
