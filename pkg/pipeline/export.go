package pipeline

import (
	"encoding/binary"

	"github.com/matzehuels/atlas/pkg/engine"
	"github.com/matzehuels/atlas/pkg/errors"
	"github.com/matzehuels/atlas/pkg/graph"
)

// HalfPositions encodes the result's positions as interleaved little-endian
// IEEE 754 half floats, x then y for each document node in order. Unplaced
// nodes, which carry the sentinel, encode as +Inf. Results from [Load]
// export the document positions.
//
// Half floats keep about three significant digits, enough to upload a large
// layout for drawing at a quarter of the JSON size.
func (r *Result) HalfPositions() ([]byte, error) {
	if r.Layout.Algorithm == graph.AlgorithmBubble {
		return nil, errors.New(errors.ErrCodeUnsupported, "bubble layouts carry radii, not positions")
	}

	var snap engine.Snapshot
	if r.Layout.Algorithm == "" {
		snap = r.Loaded.Engine.Snapshot()
	} else {
		pos := r.Layout.Positions()
		n := len(pos) / 2
		snap = engine.Snapshot{X: make([]float32, n), Y: make([]float32, n)}
		for i := 0; i < n; i++ {
			snap.X[i], snap.Y[i] = pos[2*i], pos[2*i+1]
		}
	}

	bits := snap.HalfPositions()
	out := make([]byte, 2*len(bits))
	for i, b := range bits {
		binary.LittleEndian.PutUint16(out[2*i:], b)
	}
	return out, nil
}

// DecodeHalfPositions reverses [Result.HalfPositions]. It reports
// INVALID_FORMAT for a buffer that does not hold whole (x, y) pairs.
func DecodeHalfPositions(data []byte) ([]float32, error) {
	if len(data)%4 != 0 {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "half position buffer of %d bytes is not a whole number of points", len(data))
	}
	bits := make([]uint16, len(data)/2)
	for i := range bits {
		bits[i] = binary.LittleEndian.Uint16(data[2*i:])
	}
	return engine.DecodeHalf(bits), nil
}
