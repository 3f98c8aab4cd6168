// Package preview rasterizes committed particle meshes into images on the
// CPU, for headless inspection of what the renderer produced.
package preview

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/gekko3d/particlemesh/meshrt/core"
	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// Canvas maps mesh space onto pixels with an orthographic XY projection.
type Canvas struct {
	Width, Height int
	Center        mgl32.Vec2 // mesh-space point at the image center
	PixelsPerUnit float32
	Background    color.NRGBA
}

func DefaultCanvas() Canvas {
	return Canvas{
		Width:         512,
		Height:        512,
		PixelsPerUnit: 40,
		Background:    color.NRGBA{R: 16, G: 16, B: 24, A: 255},
	}
}

// Project converts a mesh-space position to image coordinates, y down.
func (c Canvas) Project(p mgl32.Vec3) (float32, float32) {
	x := (p.X()-c.Center.X())*c.PixelsPerUnit + float32(c.Width)/2
	y := float32(c.Height)/2 - (p.Y()-c.Center.Y())*c.PixelsPerUnit
	return x, y
}

type Rasterizer struct {
	canvas Canvas
	ras    *vector.Rasterizer
	face   font.Face
}

func NewRasterizer(c Canvas) (*Rasterizer, error) {
	if c.Width <= 0 || c.Height <= 0 {
		return nil, fmt.Errorf("preview: canvas size %dx%d", c.Width, c.Height)
	}
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("preview: parsing font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    12,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("preview: creating face: %w", err)
	}
	return &Rasterizer{
		canvas: c,
		ras:    vector.NewRasterizer(c.Width, c.Height),
		face:   face,
	}, nil
}

func (r *Rasterizer) Canvas() Canvas { return r.canvas }

// Render draws every quad of m in index order over the background and
// writes label in the top-left corner when it is non-empty.
func (r *Rasterizer) Render(m *core.Mesh, label string) *image.RGBA {
	c := r.canvas
	img := image.NewRGBA(image.Rect(0, 0, c.Width, c.Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(c.Background), image.Point{}, draw.Src)

	quads := m.QuadCount()
	for q := 0; q < quads; q++ {
		base := q * core.VerticesPerQuad
		if base+core.VerticesPerQuad > len(m.Vertices) {
			break
		}
		col := core.White
		if base < len(m.Colors) {
			col = m.Colors[base]
		}
		r.drawQuad(img, m.Vertices[base:base+core.VerticesPerQuad], col.NRGBA())
	}

	if label != "" {
		d := font.Drawer{
			Dst:  img,
			Src:  image.NewUniform(color.White),
			Face: r.face,
			Dot:  fixed.P(6, 16),
		}
		d.DrawString(label)
	}
	return img
}

func (r *Rasterizer) drawQuad(dst *image.RGBA, corners []mgl32.Vec3, col color.NRGBA) {
	var xs, ys [4]float32
	for i, p := range corners {
		xs[i], ys[i] = r.canvas.Project(p)
	}

	// collapsed quads still mark their position
	if core.BoundsOf(corners).Degenerate() {
		x, y := int(xs[0]), int(ys[0])
		if image.Pt(x, y).In(dst.Bounds()) {
			dst.Set(x, y, col)
		}
		return
	}

	r.ras.Reset(r.canvas.Width, r.canvas.Height)
	r.ras.MoveTo(xs[0], ys[0])
	for i := 1; i < 4; i++ {
		r.ras.LineTo(xs[i], ys[i])
	}
	r.ras.ClosePath()
	r.ras.Draw(dst, dst.Bounds(), image.NewUniform(col), image.Point{})
}

// Append adds src's quads to dst with every vertex transformed by xform,
// so meshes built in different local spaces can share one image.
func Append(dst, src *core.Mesh, xform mgl32.Mat4) {
	base := uint32(len(dst.Vertices))
	for _, v := range src.Vertices {
		dst.Vertices = append(dst.Vertices, core.TransformPoint(xform, v))
	}
	dst.Colors = append(dst.Colors, src.Colors...)
	dst.UV0 = append(dst.UV0, src.UV0...)
	for _, i := range src.Triangles {
		dst.Triangles = append(dst.Triangles, base+i)
	}
	dst.Bounds = core.BoundsOf(dst.Vertices)
}
