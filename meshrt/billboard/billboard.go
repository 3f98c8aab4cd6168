// Package billboard turns one particle into one quad. Build is the only quad
// routine in the module; the sequential renderer and the batch engine both
// call it so the two paths cannot drift apart.
package billboard

import (
	"github.com/gekko3d/particlemesh/meshrt/core"
	"github.com/go-gl/mathgl/mgl32"
)

// Options are per-step settings shared by every particle.
type Options struct {
	Space        core.SimulationSpace
	WorldToLocal mgl32.Mat4

	// CollapseToPoint places all four corners on the particle center.
	CollapseToPoint bool
	// PackScaleAgeToSecondaryUV writes (size.xyz, normalizedAge) into UV1.
	PackScaleAgeToSecondaryUV bool
}

// OptionsForFrame copies the frame's space settings into opts.
func OptionsForFrame(f *core.Frame, collapse, packScaleAge bool) Options {
	return Options{
		Space:                     f.Space,
		WorldToLocal:              f.WorldToLocal,
		CollapseToPoint:           collapse,
		PackScaleAgeToSecondaryUV: packScaleAge,
	}
}

// Inputs are the resolved per-particle values: current 3D size, current
// color and the UV corners chosen by a sampler.
type Inputs struct {
	Size  mgl32.Vec3
	Color core.Color32
	UV    [4]mgl32.Vec2
}

// Center returns the particle center in the renderer's local space.
func Center(p *core.Particle, opt *Options) mgl32.Vec3 {
	if opt.Space == core.SimulationSpaceWorld {
		return core.TransformPoint(opt.WorldToLocal, p.Position)
	}
	return p.Position
}

// Corners lays out leftBottom, leftTop, rightTop, rightBottom around center.
func Corners(center mgl32.Vec3, rotation mgl32.Quat, size mgl32.Vec3, collapse bool) [4]mgl32.Vec3 {
	if collapse {
		return [4]mgl32.Vec3{center, center, center, center}
	}

	hx := size.X() * 0.5
	hy := size.Y() * 0.5

	local := [4]mgl32.Vec3{
		{-hx, -hy, 0},
		{-hx, hy, 0},
		{hx, hy, 0},
		{hx, -hy, 0},
	}
	var out [4]mgl32.Vec3
	for i, v := range local {
		out[i] = rotation.Rotate(v).Add(center)
	}
	return out
}

// Build computes one particle's quad.
func Build(p *core.Particle, in Inputs, opt *Options) core.Quad {
	q := core.Quad{
		Positions: Corners(Center(p, opt), p.Rotation(), in.Size, opt.CollapseToPoint),
		Color:     in.Color,
		UV0:       in.UV,
	}
	if opt.PackScaleAgeToSecondaryUV {
		q.UV1 = mgl32.Vec4{in.Size.X(), in.Size.Y(), in.Size.Z(), p.NormalizedAge()}
		q.HasUV1 = true
	}
	return q
}

// Target is anything that stores quads by particle index.
type Target interface {
	WriteQuad(i int, q core.Quad)
}

// Write stores q as particle i of dst. It never resizes dst.
func Write(dst Target, i int, q core.Quad) {
	dst.WriteQuad(i, q)
}
