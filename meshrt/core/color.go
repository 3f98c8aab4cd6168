package core

import (
	"image/color"

	"github.com/go-gl/mathgl/mgl32"
)

// Color32 is an 8-bit RGBA vertex color.
type Color32 struct {
	R, G, B, A uint8
}

var (
	White = Color32{255, 255, 255, 255}
	Clear = Color32{0, 0, 0, 0}
)

// Color32FromVec4 converts a 0..1 RGBA vector, rounding and clamping each channel.
func Color32FromVec4(c mgl32.Vec4) Color32 {
	return Color32{unitToByte(c[0]), unitToByte(c[1]), unitToByte(c[2]), unitToByte(c[3])}
}

func unitToByte(v float32) uint8 {
	return uint8(Clamp01(v)*255 + 0.5)
}

// Vec4 returns the color as a normalized RGBA vector.
func (c Color32) Vec4() mgl32.Vec4 {
	return mgl32.Vec4{float32(c.R) / 255, float32(c.G) / 255, float32(c.B) / 255, float32(c.A) / 255}
}

// NRGBA converts to a non-premultiplied image color.
func (c Color32) NRGBA() color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

// Lerp interpolates channel-wise; t is clamped to [0,1] and results truncate.
func (c Color32) Lerp(to Color32, t float32) Color32 {
	t = Clamp01(t)
	return Color32{
		R: lerpByte(c.R, to.R, t),
		G: lerpByte(c.G, to.G, t),
		B: lerpByte(c.B, to.B, t),
		A: lerpByte(c.A, to.A, t),
	}
}

func lerpByte(a, b uint8, t float32) uint8 {
	return uint8(float32(a) + (float32(b)-float32(a))*t)
}

// Modulate multiplies two colors channel-wise (tinting).
func (c Color32) Modulate(o Color32) Color32 {
	return Color32{
		R: mulByte(c.R, o.R),
		G: mulByte(c.G, o.G),
		B: mulByte(c.B, o.B),
		A: mulByte(c.A, o.A),
	}
}

func mulByte(a, b uint8) uint8 {
	return uint8((uint32(a)*uint32(b) + 127) / 255)
}
