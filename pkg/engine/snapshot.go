package engine

import (
	"github.com/x448/float16"
)

// Snapshot is a point-in-time copy of the per-slot buffers. Unlike the buffer
// views it stays valid across mutations.
type Snapshot struct {
	X, Y   []float32
	VX, VY []float32
	States []NodeState
	Live   []bool
}

// Snapshot copies the per-slot buffers.
func (e *Engine) Snapshot() Snapshot {
	return Snapshot{
		X:      append([]float32(nil), e.posX...),
		Y:      append([]float32(nil), e.posY...),
		VX:     append([]float32(nil), e.velX...),
		VY:     append([]float32(nil), e.velY...),
		States: append([]NodeState(nil), e.states...),
		Live:   append([]bool(nil), e.live...),
	}
}

// Len returns the number of slots in the snapshot.
func (s Snapshot) Len() int { return len(s.X) }

// HalfPositions encodes positions as interleaved IEEE 754 half-precision
// bits. Values beyond the half range, including the layout sentinel, become
// infinities.
func (s Snapshot) HalfPositions() []uint16 {
	out := make([]uint16, 2*len(s.X))
	for i := range s.X {
		out[2*i] = float16.Fromfloat32(s.X[i]).Bits()
		out[2*i+1] = float16.Fromfloat32(s.Y[i]).Bits()
	}
	return out
}

// DecodeHalf widens half-precision bits produced by
// [Snapshot.HalfPositions] back to float32.
func DecodeHalf(bits []uint16) []float32 {
	out := make([]float32, len(bits))
	for i, b := range bits {
		out[i] = float16.Frombits(b).Float32()
	}
	return out
}
