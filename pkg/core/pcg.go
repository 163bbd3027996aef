package core

import (
	"math"
)

// PCG is a 32-bit PCG-family hash generator. The whole generator state is a
// single word, so a PCG value can live on the stack of one pixel invocation.
type PCG struct {
	State uint32
}

const (
	pcgMultiplier = 747796405
	pcgIncrement  = 2891336453
	pcgOutputMul  = 277803737
	floatOneBits  = 0x3f800000
)

// permute is the RXS-M-XS output function applied to an advanced state
func permute(state uint32) uint32 {
	word := ((state >> ((state >> 28) + 4)) ^ state) * pcgOutputMul
	return (word >> 22) ^ word
}

// Hash is the stateless PCG hash: one LCG step followed by the output
// permutation. It is a bijection on uint32.
func Hash(v uint32) uint32 {
	return permute(v*pcgMultiplier + pcgIncrement)
}

// SeedPCG seeds a generator for one pixel of one frame.
//
// The pixel-center coordinates are reinterpreted as IEEE-754 bit patterns and
// chained through Hash with the frame counter:
//
//	state = Hash(bits(x) ^ Hash(bits(y) ^ Hash(frame)))
//
// Because Hash is a bijection, pixels sharing a row and frame never share a
// seed, and the nested hashing keeps neighbouring pixels and consecutive
// frames decorrelated.
func SeedPCG(pixelX, pixelY float32, frame uint32) PCG {
	state := Hash(math.Float32bits(pixelY) ^ Hash(frame))
	state = Hash(math.Float32bits(pixelX) ^ state)
	return PCG{State: state}
}

// NextU32 advances the state and returns the next 32 random bits
func (p *PCG) NextU32() uint32 {
	p.State = p.State*pcgMultiplier + pcgIncrement
	return permute(p.State)
}

// NextF32 returns a uniform float32 in [0, 1). The top 23 bits of the next
// word become the mantissa of a float in [1, 2), which is then shifted down.
func (p *PCG) NextF32() float32 {
	word := p.NextU32()
	return math.Float32frombits((word>>9)|floatOneBits) - 1.0
}

// Range returns a uniform value in [minVal, maxVal)
func (p *PCG) Range(minVal, maxVal float64) float64 {
	return minVal + float64(p.NextF32())*(maxVal-minVal)
}

// UnitVector returns a uniformly distributed point on the unit sphere
func (p *PCG) UnitVector() Vec3 {
	return SampleOnUnitSphere(p.Get2D())
}

// Hemisphere returns a unit vector in the hemisphere around normal
func (p *PCG) Hemisphere(normal Vec3) Vec3 {
	return SampleHemisphere(normal, p.Get2D())
}

// Get1D returns a random float64 in [0, 1)
func (p *PCG) Get1D() float64 {
	return float64(p.NextF32())
}

// Get2D returns two random float64 values in [0, 1)
func (p *PCG) Get2D() Vec2 {
	x := p.Get1D()
	return NewVec2(x, p.Get1D())
}

// Get3D returns three random float64 values in [0, 1)
func (p *PCG) Get3D() Vec3 {
	x := p.Get1D()
	y := p.Get1D()
	return NewVec3(x, y, p.Get1D())
}
