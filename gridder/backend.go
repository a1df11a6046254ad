package gridder

import (
	"github.com/pkg/errors"
)

// Backend creates proxies.
type Backend interface {
	// Available reports whether the backend is part of this build.
	Available() bool
	New() (Proxy, error)
}

// BackendFunc is a backend that is always available.
type BackendFunc func() (Proxy, error)

func (f BackendFunc) Available() bool    { return true }
func (f BackendFunc) New() (Proxy, error) { return f() }

// Unavailable is a backend left out of this build.
type Unavailable struct {
	Reason string
}

func (u Unavailable) Available() bool { return false }

func (u Unavailable) New() (Proxy, error) {
	return nil, errors.Wrap(ErrBackendUnavailable, u.Reason)
}

type NamedBackend struct {
	Name string
	Backend
}

var Backends []NamedBackend

// RegisterBackend registers a backend globally. This function is not
// thread-safe, and most packages should call it on init().
func RegisterBackend(name string, b Backend) {
	Backends = append(Backends, NamedBackend{
		Name:    name,
		Backend: b,
	})
}

// DefaultBackend returns the CUDA proxy when useCUDA is set, otherwise the
// optimized CPU proxy if it was built in, falling back to nearest.
func DefaultBackend(useCUDA bool) string {
	if useCUDA {
		return "cuda-generic"
	}

	if b := FindBackend("cpu-optimized"); b != nil && b.Available() {
		return "cpu-optimized"
	}

	return "nearest"
}

// FindBackend is a helper function that finds a backend. It returns nil if the
// backend is not found.
func FindBackend(name string) Backend {
	for _, backend := range Backends {
		if backend.Name == name {
			return backend
		}
	}
	return nil
}

// InitBackend creates a proxy of the named backend.
func InitBackend(name string) (Proxy, error) {
	backend := FindBackend(name)
	if backend == nil {
		return nil, errors.Wrapf(ErrBackendNotFound, "%q; check list-backends", name)
	}

	if !backend.Available() {
		_, err := backend.New()
		if err == nil {
			err = ErrBackendUnavailable
		}
		return nil, errors.Wrapf(err, "%q", name)
	}

	proxy, err := backend.New()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to initialize %q backend", name)
	}

	return proxy, nil
}
