package icon

import (
	"log/slog"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
)

// FontResolver picks the label typeface. A missing or unreadable preferred
// font is never fatal: it falls back to the embedded Go Bold face and, if
// that cannot be parsed, to a fixed 7x13 bitmap face.
type FontResolver struct {
	path string
	log  *slog.Logger

	warnOnce sync.Once
}

// NewFontResolver returns a resolver preferring the TrueType file at path.
// An empty path goes straight to the embedded fallback.
func NewFontResolver(path string, log *slog.Logger) *FontResolver {
	if log == nil {
		log = slog.Default()
	}
	return &FontResolver{path: path, log: log}
}

// Face returns a face of the given pixel size. The caller owns the face.
func (r *FontResolver) Face(size float64) font.Face {
	if r.path != "" {
		face, err := gg.LoadFontFace(r.path, size)
		if err == nil {
			return face
		}
		r.warnOnce.Do(func() {
			r.log.Warn("preferred font unavailable, using fallback", "path", r.path, "error", err)
		})
	}
	return fallbackFace(size, r.log)
}

func fallbackFace(size float64, log *slog.Logger) font.Face {
	f, err := truetype.Parse(gobold.TTF)
	if err != nil {
		log.Warn("embedded font unusable, using bitmap face", "error", err)
		return basicfont.Face7x13
	}
	return truetype.NewFace(f, &truetype.Options{Size: size})
}
