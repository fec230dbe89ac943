package shader

import (
	"fmt"
	"image"
	_ "image/jpeg" // JPEG decoder
	_ "image/png"  // PNG decoder
	"log/slog"
	"math"
	"os"

	_ "golang.org/x/image/bmp"  // BMP decoder
	_ "golang.org/x/image/tiff" // TIFF decoder
	"seehuhn.de/go/geom/vec"

	"github.com/df07/go-wavefront-tracer/pkg/core"
)

// Texture is a linear-light RGB image, row-major with row 0 at the top
type Texture struct {
	Width  int
	Height int
	Pixels []core.Vec3
}

// NewTexture creates a texture from linear pixels
func NewTexture(width, height int, pixels []core.Vec3) (*Texture, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid texture size %dx%d", width, height)
	}
	if len(pixels) != width*height {
		return nil, fmt.Errorf("texture has %d pixels, want %d", len(pixels), width*height)
	}
	return &Texture{Width: width, Height: height, Pixels: pixels}, nil
}

// NewTextureFromImage converts an sRGB encoded image to a linear texture
func NewTextureFromImage(img image.Image) (*Texture, error) {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	pixels := make([]core.Vec3, width*height)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := img.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
			// RGBA returns uint32 in [0, 65535]
			pixels[y*width+x] = core.NewVec3(
				srgbToLinear(float64(r)/65535.0),
				srgbToLinear(float64(g)/65535.0),
				srgbToLinear(float64(b)/65535.0),
			)
		}
	}

	return NewTexture(width, height, pixels)
}

// LoadTexture decodes a PNG, JPEG, TIFF or BMP file into a linear texture.
// A nil logger means core.Logger().
func LoadTexture(filename string, logger *slog.Logger) (*Texture, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open environment map: %w", err)
	}
	defer file.Close()

	img, format, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode environment map %s: %w", filename, err)
	}

	if logger == nil {
		logger = core.Logger()
	}
	logger.Info("environment map loaded",
		"file", filename, "format", format,
		"width", img.Bounds().Dx(), "height", img.Bounds().Dy())

	texture, err := NewTextureFromImage(img)
	if err != nil {
		return nil, fmt.Errorf("environment map %s: %w", filename, err)
	}
	return texture, nil
}

// texelCenter offsets texel coordinates so integer positions fall on texel
// centers
var texelCenter = vec.Vec2{X: 0.5, Y: 0.5}

// Lookup samples the texture with bilinear filtering. U wraps around, V is
// clamped; V=0 is the top row.
func (t *Texture) Lookup(uv vec.Vec2) core.Vec3 {
	p := vec.Vec2{X: uv.X * float64(t.Width), Y: uv.Y * float64(t.Height)}.Sub(texelCenter)

	x0 := math.Floor(p.X)
	y0 := math.Floor(p.Y)
	fx := p.X - x0
	fy := p.Y - y0

	ix := int(x0)
	iy := int(y0)

	c00 := t.texel(ix, iy)
	c10 := t.texel(ix+1, iy)
	c01 := t.texel(ix, iy+1)
	c11 := t.texel(ix+1, iy+1)

	top := c00.Lerp(c10, fx)
	bottom := c01.Lerp(c11, fx)
	return top.Lerp(bottom, fy)
}

func (t *Texture) texel(x, y int) core.Vec3 {
	x %= t.Width
	if x < 0 {
		x += t.Width
	}
	y = max(0, min(t.Height-1, y))
	return t.Pixels[y*t.Width+x]
}

// DirectionToEquirect maps a unit direction to equirectangular coordinates.
// +Y is up; u grows counter-clockwise seen from above starting at -Z.
func DirectionToEquirect(d core.Vec3) vec.Vec2 {
	u := 0.5 + math.Atan2(d.X, -d.Z)/(2*math.Pi)
	v := math.Acos(max(-1, min(1, d.Y))) / math.Pi
	return vec.Vec2{X: u, Y: v}
}

func srgbToLinear(c float64) float64 {
	if c <= 0.04045 {
		return c / 12.92
	}
	return math.Pow((c+0.055)/1.055, 2.4)
}
