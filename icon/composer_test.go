package icon

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font"
)

var (
	white = color.RGBA{255, 255, 255, 255}
	blue  = color.RGBA{30, 115, 232, 255}
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func siteSpec(size int, background bool) IconSpec {
	return IconSpec{
		Size:            size,
		HasBackground:   background,
		BackgroundColor: blue,
		BadgeColor:      white,
		LabelText:       "BV",
		LabelColor:      blue,
	}
}

func TestComposeDimensions(t *testing.T) {
	c := NewComposer("", quietLogger())
	for _, size := range []int{1, 2, 3, 16, 17, 32, 48, 180, 192, 513} {
		for _, bg := range []bool{false, true} {
			img, err := c.Compose(siteSpec(size, bg))
			require.NoError(t, err, "size %d", size)
			assert.Equal(t, image.Rect(0, 0, size, size), img.Bounds(), "size %d", size)
		}
	}
}

func TestComposeInvalidSize(t *testing.T) {
	c := NewComposer("", quietLogger())
	for _, size := range []int{0, -1, -192} {
		img, err := c.Compose(siteSpec(size, false))
		assert.ErrorIs(t, err, ErrInvalidSize)
		assert.Nil(t, img)
	}
}

func TestLayoutSatellitesOnDiagonals(t *testing.T) {
	for _, size := range []int{16, 32, 48, 180, 192, 512, 1000} {
		l := LayoutFor(size)
		signs := make(map[[2]int]bool)
		for _, p := range l.Satellites {
			dx, dy := p.X-l.Center, p.Y-l.Center
			assert.Equal(t, l.SatelliteDistance, abs(dx), "size %d", size)
			assert.Equal(t, l.SatelliteDistance, abs(dy), "size %d", size)
			signs[[2]int{sign(dx), sign(dy)}] = true
		}
		assert.Len(t, signs, 4, "size %d", size)
	}
}

func TestLayoutTruncatesSatelliteDistance(t *testing.T) {
	assert.Equal(t, 76, LayoutFor(192).SatelliteDistance)
	assert.Equal(t, 72, LayoutFor(180).SatelliteDistance)
	assert.Equal(t, 6, LayoutFor(16).SatelliteDistance)
	assert.Equal(t, 2, LayoutFor(16).StrokeWidth)
	assert.Equal(t, 10, LayoutFor(512).StrokeWidth)
}

func TestComposeTransparentFavicon192(t *testing.T) {
	c := NewComposer("", quietLogger())
	img, err := c.Compose(siteSpec(192, false))
	require.NoError(t, err)

	l := LayoutFor(192)

	// corners and the gap above the badge are untouched
	assert.Equal(t, uint8(0), img.RGBAAt(0, 0).A)
	assert.Equal(t, uint8(0), img.RGBAAt(191, 191).A)
	assert.Equal(t, uint8(0), img.RGBAAt(96, 2).A)

	for _, p := range l.Satellites {
		assert.Equal(t, white, img.RGBAAt(p.X, p.Y), "satellite %v", p)
	}
	// badge interior above the label
	assert.Equal(t, white, img.RGBAAt(96, 35))

	assert.Greater(t, countBluish(img, image.Rect(40, 40, 152, 152)), 100)
}

func TestComposeBackgroundFavicon(t *testing.T) {
	c := NewComposer("", quietLogger())
	img, err := c.Compose(siteSpec(192, true))
	require.NoError(t, err)

	assert.Equal(t, blue, img.RGBAAt(96, 5))
	assert.Equal(t, white, img.RGBAAt(96, 35))
	assert.Equal(t, uint8(0), img.RGBAAt(0, 0).A)
}

func TestComposeOutsideBackgroundIsTransparent(t *testing.T) {
	c := NewComposer("", quietLogger())
	for _, size := range []int{16, 32, 48, 180, 192, 512} {
		for _, bg := range []bool{false, true} {
			assertTransparentOutsideShapes(t, c, size, bg)
		}
	}
}

func assertTransparentOutsideShapes(t *testing.T, c *Composer, size int, bg bool) {
	t.Helper()
	img, err := c.Compose(siteSpec(size, bg))
	require.NoError(t, err)

	l := LayoutFor(size)
	const margin = 1.5
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			px, py := float64(x)+0.5, float64(y)+0.5
			if dist(px, py, l.Center, l.Center) <= float64(l.OuterRadius)+margin {
				continue
			}
			covered := false
			for _, s := range l.Satellites {
				if dist(px, py, s.X, s.Y) <= float64(l.SatelliteRadius)+margin {
					covered = true
					break
				}
			}
			if covered {
				continue
			}
			require.Equal(t, uint8(0), img.RGBAAt(x, y).A, "size %d background %v pixel (%d,%d)", size, bg, x, y)
		}
	}
}

// A satellite clipped by the top edge must not leak coverage along row 0.
func TestComposeClippedSatellitesStayInside(t *testing.T) {
	img, err := NewComposer("", quietLogger()).Compose(siteSpec(48, false))
	require.NoError(t, err)

	for x := 12; x < 36; x++ {
		assert.Equal(t, uint8(0), img.RGBAAt(x, 0).A, "pixel (%d,0)", x)
	}
}

func TestComposeLabelPlacement(t *testing.T) {
	c := NewComposer("", quietLogger())
	for _, size := range []int{48, 192, 512} {
		l := LayoutFor(size)
		face := NewFontResolver("", quietLogger()).Face(float64(l.FontSize))
		b, _ := font.BoundString(face, "BV")
		w, h := inkSize(face, "BV")
		x := l.Center - w/2
		baseline := l.Center - h/2 - l.LabelLift + face.Metrics().Ascent.Round()
		want := image.Rect(
			x+b.Min.X.Floor(), baseline+b.Min.Y.Floor(),
			x+b.Max.X.Ceil(), baseline+b.Max.Y.Ceil(),
		)
		face.Close()

		img, err := c.Compose(siteSpec(size, false))
		require.NoError(t, err)
		got := labelInk(img)

		assert.InDelta(t, want.Min.X, got.Min.X, 1, "size %d left", size)
		assert.InDelta(t, want.Min.Y, got.Min.Y, 1, "size %d top", size)
		assert.InDelta(t, want.Max.X, got.Max.X, 1, "size %d right", size)
		assert.InDelta(t, want.Max.Y, got.Max.Y, 1, "size %d bottom", size)
	}
}

func TestComposeLabelPlacement192(t *testing.T) {
	img, err := NewComposer("", quietLogger()).Compose(siteSpec(192, false))
	require.NoError(t, err)
	got := labelInk(img)

	assert.InDelta(t, 59, got.Min.X, 1)
	assert.InDelta(t, 78, got.Min.Y, 1)
	assert.InDelta(t, 142, got.Max.X, 1)
	assert.InDelta(t, 124, got.Max.Y, 1)
}

func TestComposeDeterministic(t *testing.T) {
	c := NewComposer("", quietLogger())
	spec := siteSpec(192, true)

	a, err := c.Compose(spec)
	require.NoError(t, err)
	b, err := c.Compose(spec)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(a.Pix, b.Pix))

	var pa, pb bytes.Buffer
	require.NoError(t, EncodePNG(&pa, a))
	require.NoError(t, EncodePNG(&pb, b))
	assert.Equal(t, pa.Bytes(), pb.Bytes())
}

func TestComposeMissingFontFallsBack(t *testing.T) {
	missing := NewComposer("/nonexistent/DejaVuSans-Bold.ttf", quietLogger())
	img, err := missing.Compose(siteSpec(192, false))
	require.NoError(t, err)
	assert.Greater(t, countBluish(img, image.Rect(40, 40, 152, 152)), 100)

	embedded, err := NewComposer("", quietLogger()).Compose(siteSpec(192, false))
	require.NoError(t, err)
	assert.Equal(t, embedded.Pix, img.Pix)
}

func TestComposeWithoutLabel(t *testing.T) {
	spec := siteSpec(64, false)
	spec.LabelText = ""
	img, err := NewComposer("", quietLogger()).Compose(spec)
	require.NoError(t, err)
	assert.Zero(t, countBluish(img, img.Bounds()))
}

func TestEncodePNGKeepsAlpha(t *testing.T) {
	img, err := NewComposer("", quietLogger()).Compose(siteSpec(192, false))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, EncodePNG(&buf, img))

	decoded, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 192, 192), decoded.Bounds())
	_, _, _, a := decoded.At(0, 0).RGBA()
	assert.Zero(t, a)
	_, _, _, a = decoded.At(20, 20).RGBA()
	assert.Equal(t, uint32(0xffff), a)
}

func TestEncodeICO(t *testing.T) {
	c := NewComposer("", quietLogger())
	img, err := c.Compose(siteSpec(48, false))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, EncodeICO(&buf, img))
	require.Greater(t, buf.Len(), 6)
	assert.Equal(t, []byte{0, 0, 1, 0}, buf.Bytes()[:4])

	big, err := c.Compose(siteSpec(512, false))
	require.NoError(t, err)
	assert.Error(t, EncodeICO(io.Discard, big))
}

// labelInk returns the bounding box of every pixel tinted by the label.
// Badge and satellites are white, so any pixel with more blue than red
// belongs to the label.
func labelInk(img *image.RGBA) image.Rectangle {
	var r image.Rectangle
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := img.RGBAAt(x, y)
			if c.B > c.R {
				r = r.Union(image.Rect(x, y, x+1, y+1))
			}
		}
	}
	return r
}

// countBluish counts opaque pixels where blue clearly dominates red.
func countBluish(img *image.RGBA, r image.Rectangle) int {
	n := 0
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			c := img.RGBAAt(x, y)
			if c.A == 255 && int(c.B)-int(c.R) > 100 {
				n++
			}
		}
	}
	return n
}

func dist(x, y float64, cx, cy int) float64 {
	return math.Hypot(x-float64(cx), y-float64(cy))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	if v < 0 {
		return -1
	}
	return 1
}
