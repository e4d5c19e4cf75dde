// Package generate renders the configured favicon and QR code set and
// writes it to the output directory.
package generate

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/bonvoyage/siteassets/config"
	"github.com/bonvoyage/siteassets/icon"
	"github.com/bonvoyage/siteassets/qr"
	"github.com/bonvoyage/siteassets/store"
)

// Target selects which part of the asset set to build.
type Target string

const (
	All      Target = "all"
	Favicons Target = "favicons"
	QRCodes  Target = "qrcodes"
)

// ParseTarget validates a target name. Empty means All.
func ParseTarget(s string) (Target, error) {
	switch Target(s) {
	case All, "":
		return All, nil
	case Favicons, QRCodes:
		return Target(s), nil
	}
	return "", fmt.Errorf("unknown target %q (want all, favicons or qrcodes)", s)
}

// Recorder receives every written asset. *store.ManifestStore implements it.
type Recorder interface {
	Record(a *store.Asset) error
}

// Generator writes assets one after another so log output has a stable
// order.
type Generator struct {
	cfg      *config.Config
	composer *icon.Composer
	manifest Recorder
	log      *slog.Logger
	now      func() time.Time
}

// New returns a Generator. manifest may be nil.
func New(cfg *config.Config, composer *icon.Composer, manifest Recorder, log *slog.Logger) *Generator {
	return &Generator{
		cfg:      cfg,
		composer: composer,
		manifest: manifest,
		log:      log,
		now:      time.Now,
	}
}

// Run builds the selected target. The first failure aborts the run.
func (g *Generator) Run(ctx context.Context, target Target) error {
	if err := os.MkdirAll(g.cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if target == All || target == Favicons {
		if err := g.Favicons(ctx); err != nil {
			return err
		}
	}
	if target == All || target == QRCodes {
		if err := g.QRCodes(ctx); err != nil {
			return err
		}
	}
	return nil
}

// FaviconSpec builds the IconSpec for a variant at size.
func FaviconSpec(cfg *config.Config, v config.FaviconVariant, size int) icon.IconSpec {
	return icon.IconSpec{
		Size:            size,
		HasBackground:   v.Background,
		BackgroundColor: v.BackgroundColor.RGBA,
		BadgeColor:      cfg.Favicon.BadgeColor.RGBA,
		LabelText:       cfg.Favicon.Label,
		LabelColor:      cfg.Favicon.LabelColor.RGBA,
	}
}

// Favicons renders every variant at every configured size, then the .ico.
func (g *Generator) Favicons(ctx context.Context) error {
	for _, v := range g.cfg.Favicon.Variants {
		g.log.Info("rendering favicons", "variant", v.Name, "background", v.Background)
		for _, size := range g.cfg.Favicon.Sizes {
			if err := ctx.Err(); err != nil {
				return err
			}
			img, err := g.composer.Compose(FaviconSpec(g.cfg, v, size))
			if err != nil {
				return fmt.Errorf("compose %s %d: %w", v.Name, size, err)
			}
			name := g.cfg.FaviconFile(v.Name, size)
			if err := g.writeImage(name, store.KindFavicon, v.Name, img, icon.EncodePNG); err != nil {
				return err
			}
		}
	}
	return g.ico(ctx)
}

func (g *Generator) ico(ctx context.Context) error {
	if g.cfg.Favicon.ICOSize <= 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	v, ok := g.cfg.FaviconVariant(g.cfg.Favicon.ICOVariant)
	if !ok {
		return fmt.Errorf("ico variant %q is not configured", g.cfg.Favicon.ICOVariant)
	}
	img, err := g.composer.Compose(FaviconSpec(g.cfg, v, g.cfg.Favicon.ICOSize))
	if err != nil {
		return fmt.Errorf("compose ico: %w", err)
	}
	return g.writeImage("favicon.ico", store.KindICO, v.Name, img, icon.EncodeICO)
}

// QRStyle converts a configured variant into a render style.
func QRStyle(v config.QRVariant) (qr.Style, error) {
	shape, err := qr.ParseShape(v.Shape)
	if err != nil {
		return qr.Style{}, err
	}
	return qr.Style{
		Shape:      shape,
		Foreground: v.Foreground.RGBA,
		Background: v.Background.RGBA,
		BoxSize:    v.BoxSize,
		Border:     v.Border,
	}, nil
}

// QRCodes renders every configured QR variant.
func (g *Generator) QRCodes(ctx context.Context) error {
	level, err := qr.ParseLevel(g.cfg.QR.Level)
	if err != nil {
		return err
	}
	g.log.Info("rendering qr codes", "url", g.cfg.QR.URL, "level", level)
	for _, v := range g.cfg.QR.Variants {
		if err := ctx.Err(); err != nil {
			return err
		}
		style, err := QRStyle(v)
		if err != nil {
			return fmt.Errorf("qr variant %s: %w", v.Name, err)
		}
		img, err := qr.Render(g.cfg.QR.URL, level, style)
		if err != nil {
			return fmt.Errorf("qr variant %s: %w", v.Name, err)
		}
		if err := g.writeImage(v.File, store.KindQR, v.Name, img, icon.EncodePNG); err != nil {
			return err
		}
	}
	return nil
}

func (g *Generator) writeImage(name, kind, variant string, img image.Image, encode func(w io.Writer, img image.Image) error) error {
	var buf bytes.Buffer
	if err := encode(&buf, img); err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}

	path := filepath.Join(g.cfg.OutputDir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	b := img.Bounds()
	g.log.Info("wrote asset", "file", name, "size", fmt.Sprintf("%dx%d", b.Dx(), b.Dy()), "kind", kind, "variant", variant)

	if g.manifest == nil {
		return nil
	}
	sum := sha256.Sum256(buf.Bytes())
	return g.manifest.Record(&store.Asset{
		Name:        name,
		Kind:        kind,
		Variant:     variant,
		Width:       b.Dx(),
		Height:      b.Dy(),
		Bytes:       int64(buf.Len()),
		SHA256:      hex.EncodeToString(sum[:]),
		GeneratedAt: g.now().Unix(),
	})
}
