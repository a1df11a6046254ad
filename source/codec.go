package source

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"
)

// Visibility cells are stored on disk as little-endian float32 pairs and
// flags as one byte per sample.

// ErrBlobSize is returned when a blob does not match the expected sample count.
var ErrBlobSize = errors.New("blob size mismatch")

// EncodeData packs samples as complex64.
func EncodeData(data []complex128) []byte {
	raw := make([]byte, len(data)*8)

	for i, v := range data {
		binary.LittleEndian.PutUint32(raw[i*8:], math.Float32bits(float32(real(v))))
		binary.LittleEndian.PutUint32(raw[i*8+4:], math.Float32bits(float32(imag(v))))
	}

	return raw
}

// DecodeData unpacks a complex64 blob into dst.
func DecodeData(raw []byte, dst []complex128) error {
	if len(raw) != len(dst)*8 {
		return errors.Wrapf(ErrBlobSize, "data: %d bytes for %d samples", len(raw), len(dst))
	}

	for i := range dst {
		re := math.Float32frombits(binary.LittleEndian.Uint32(raw[i*8:]))
		im := math.Float32frombits(binary.LittleEndian.Uint32(raw[i*8+4:]))
		dst[i] = complex(float64(re), float64(im))
	}

	return nil
}

// EncodeFlag packs flags one byte each.
func EncodeFlag(flag []bool) []byte {
	raw := make([]byte, len(flag))

	for i, f := range flag {
		if f {
			raw[i] = 1
		}
	}

	return raw
}

// DecodeFlag unpacks a flag blob into dst.
func DecodeFlag(raw []byte, dst []bool) error {
	if len(raw) != len(dst) {
		return errors.Wrapf(ErrBlobSize, "flag: %d bytes for %d samples", len(raw), len(dst))
	}

	for i, b := range raw {
		dst[i] = b != 0
	}

	return nil
}
