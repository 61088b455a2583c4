package chem

import (
	"image"
	"image/color"
	"image/draw"
	"math"
)

// Point is a 2D atom coordinate in bond-length units.
type Point struct {
	X, Y float64
}

// DepictOptions controls the size of a rendered depiction.
type DepictOptions struct {
	Width  int
	Height int
}

const (
	defaultDepictSize = 300
	layoutIterations  = 250
)

var (
	background = color.RGBA{255, 255, 255, 255}
	bondColor  = color.RGBA{40, 40, 40, 255}
	atomColors = map[int]color.RGBA{
		7:  {48, 80, 248, 255},
		8:  {255, 13, 13, 255},
		9:  {144, 224, 80, 255},
		15: {255, 128, 0, 255},
		16: {200, 180, 40, 255},
		17: {31, 240, 31, 255},
		35: {166, 41, 41, 255},
		53: {148, 0, 148, 255},
	}
	otherAtomColor = color.RGBA{120, 120, 120, 255}
)

// Layout2D computes deterministic 2D coordinates with a spring embedder:
// bonded atoms attract towards unit distance, all atom pairs repel.
func Layout2D(m *Molecule) []Point {
	n := len(m.Atoms)
	pos := make([]Point, n)
	if n == 0 {
		return pos
	}

	// Seed along a zig-zag so chains start out extended.
	for i := range pos {
		pos[i] = Point{X: float64(i) * 0.87, Y: float64(i%2) * 0.5}
	}
	if n == 1 {
		return pos
	}

	disp := make([]Point, n)
	temp := 1.0
	for iter := 0; iter < layoutIterations; iter++ {
		for i := range disp {
			disp[i] = Point{}
		}
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				dx, dy := pos[i].X-pos[j].X, pos[i].Y-pos[j].Y
				d2 := dx*dx + dy*dy
				if d2 < 1e-6 {
					dx, dy, d2 = 0.01*float64(i-j), 0.01, 1e-4
				}
				f := 0.6 / d2
				disp[i].X += dx * f
				disp[i].Y += dy * f
				disp[j].X -= dx * f
				disp[j].Y -= dy * f
			}
		}
		for _, b := range m.Bonds {
			dx, dy := pos[b.A].X-pos[b.B].X, pos[b.A].Y-pos[b.B].Y
			d := math.Hypot(dx, dy)
			if d < 1e-6 {
				continue
			}
			f := (d - 1) * 2 / d
			disp[b.A].X -= dx * f
			disp[b.A].Y -= dy * f
			disp[b.B].X += dx * f
			disp[b.B].Y += dy * f
		}
		for i := range pos {
			d := math.Hypot(disp[i].X, disp[i].Y)
			if d < 1e-9 {
				continue
			}
			step := math.Min(d, temp)
			pos[i].X += disp[i].X / d * step
			pos[i].Y += disp[i].Y / d * step
		}
		temp = math.Max(0.01, temp*0.98)
	}
	return pos
}

// Depict renders a simple 2D drawing of the molecule. Carbon atoms are
// implicit; heteroatoms are drawn as coloured discs.
func Depict(m *Molecule, opts DepictOptions) *image.RGBA {
	w, h := opts.Width, opts.Height
	if w <= 0 {
		w = defaultDepictSize
	}
	if h <= 0 {
		h = defaultDepictSize
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: background}, image.Point{}, draw.Src)

	pos := Layout2D(m)
	if len(pos) == 0 {
		return img
	}

	minX, minY, maxX, maxY := math.Inf(1), math.Inf(1), math.Inf(-1), math.Inf(-1)
	for _, p := range pos {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	margin := 0.1 * float64(min(w, h))
	spanX, spanY := math.Max(maxX-minX, 1), math.Max(maxY-minY, 1)
	scale := math.Min((float64(w)-2*margin)/spanX, (float64(h)-2*margin)/spanY)
	offX := (float64(w) - spanX*scale) / 2
	offY := (float64(h) - spanY*scale) / 2
	screen := func(p Point) (float64, float64) {
		return offX + (p.X-minX)*scale, offY + (p.Y-minY)*scale
	}

	for _, b := range m.Bonds {
		x0, y0 := screen(pos[b.A])
		x1, y1 := screen(pos[b.B])
		lines := b.Type.order()
		if b.Aromatic {
			lines = 1
		}
		dx, dy := x1-x0, y1-y0
		l := math.Hypot(dx, dy)
		if l == 0 {
			continue
		}
		nx, ny := -dy/l*3, dx/l*3
		for k := 0; k < lines; k++ {
			off := float64(k) - float64(lines-1)/2
			drawLine(img, x0+nx*off, y0+ny*off, x1+nx*off, y1+ny*off, bondColor)
		}
	}

	radius := math.Max(2, scale*0.18)
	for i, a := range m.Atoms {
		if a.Element == 6 {
			continue
		}
		c, ok := atomColors[a.Element]
		if !ok {
			c = otherAtomColor
		}
		x, y := screen(pos[i])
		fillCircle(img, x, y, radius, c)
	}
	return img
}

func drawLine(img *image.RGBA, x0, y0, x1, y1 float64, c color.RGBA) {
	steps := int(math.Max(math.Abs(x1-x0), math.Abs(y1-y0))) + 1
	for s := 0; s <= steps; s++ {
		t := float64(s) / float64(steps)
		img.SetRGBA(int(math.Round(x0+(x1-x0)*t)), int(math.Round(y0+(y1-y0)*t)), c)
	}
}

func fillCircle(img *image.RGBA, cx, cy, r float64, c color.RGBA) {
	for y := int(cy - r); y <= int(cy+r); y++ {
		for x := int(cx - r); x <= int(cx+r); x++ {
			dx, dy := float64(x)-cx, float64(y)-cy
			if dx*dx+dy*dy <= r*r {
				img.SetRGBA(x, y, c)
			}
		}
	}
}
