package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image/color"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/bonvoyage/siteassets/api"
	"github.com/bonvoyage/siteassets/config"
	"github.com/bonvoyage/siteassets/generate"
	"github.com/bonvoyage/siteassets/icon"
	"github.com/bonvoyage/siteassets/qr"
	"github.com/bonvoyage/siteassets/store"
)

var version = "v0.1.0"

func main() {
	root := &cobra.Command{
		Use:          "bonvoyage-assets",
		Short:        "Favicon and QR code generator for the Bon Voyage site",
		SilenceUsage: true,
	}

	var configPath string
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "assets.yaml", "Path to config file")

	// --- generate command ----------------------------------------------------
	var only string
	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "Render the full favicon and QR code set",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(configPath, only)
		},
	}
	generateCmd.Flags().StringVar(&only, "only", "all", "Subset to build: all, favicons or qrcodes")
	root.AddCommand(generateCmd)

	// --- favicon command -----------------------------------------------------
	var (
		iconSize       int
		iconBackground bool
		iconOut        string
	)
	faviconCmd := &cobra.Command{
		Use:   "favicon",
		Short: "Render a single favicon",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFavicon(configPath, iconSize, iconBackground, iconOut)
		},
	}
	faviconCmd.Flags().IntVar(&iconSize, "size", 192, "Canvas size in pixels")
	faviconCmd.Flags().BoolVar(&iconBackground, "background", false, "Paint the blue background circle")
	faviconCmd.Flags().StringVarP(&iconOut, "out", "o", "", "Output file (default: configured name in the output dir)")
	root.AddCommand(faviconCmd)

	// --- qrcode command ------------------------------------------------------
	var (
		qrURL      string
		qrShape    string
		qrFg       string
		qrBox      int
		qrBorder   int
		qrOut      string
		qrTerminal bool
	)
	qrCmd := &cobra.Command{
		Use:   "qrcode",
		Short: "Render a single QR code",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQRCode(configPath, qrOptions{
				url: qrURL, shape: qrShape, fg: qrFg, box: qrBox, border: qrBorder,
				out: qrOut, terminal: qrTerminal,
			})
		},
	}
	qrCmd.Flags().StringVar(&qrURL, "url", "", "Content to encode (default: configured site URL)")
	qrCmd.Flags().StringVar(&qrShape, "shape", "square", "Module shape: square, rounded or circle")
	qrCmd.Flags().StringVar(&qrFg, "fg", "#000000", "Module color")
	qrCmd.Flags().IntVar(&qrBox, "box", 10, "Pixels per module")
	qrCmd.Flags().IntVar(&qrBorder, "border", 4, "Quiet zone in modules")
	qrCmd.Flags().StringVarP(&qrOut, "out", "o", "qrcode.png", "Output file")
	qrCmd.Flags().BoolVar(&qrTerminal, "terminal", false, "Print to the terminal instead of writing a file")
	root.AddCommand(qrCmd)

	// --- serve command -------------------------------------------------------
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the asset preview server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configPath)
		},
	}
	root.AddCommand(serveCmd)

	// --- assets command ------------------------------------------------------
	var kind string
	assetsCmd := &cobra.Command{
		Use:   "assets",
		Short: "List generated assets from the manifest",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAssets(configPath, kind)
		},
	}
	assetsCmd.Flags().StringVar(&kind, "kind", "", "Filter by kind: favicon, ico or qrcode")
	root.AddCommand(assetsCmd)

	// --- version command -----------------------------------------------------
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("bonvoyage-assets %s\n", version)
		},
	})

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(log)
	return log
}

func openManifest(cfg *config.Config) (*store.ManifestStore, error) {
	if err := cfg.EnsureDirs(); err != nil {
		return nil, err
	}
	return store.NewManifestStore(filepath.Join(cfg.DataDir, "manifest.db"))
}

// runGenerate renders every configured asset in a fixed order.
func runGenerate(configPath, only string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	target, err := generate.ParseTarget(only)
	if err != nil {
		return err
	}
	log := newLogger(cfg.LogLevel)

	manifest, err := openManifest(cfg)
	if err != nil {
		return fmt.Errorf("open manifest: %w", err)
	}
	defer manifest.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("generating assets", "version", version, "target", target, "output_dir", cfg.OutputDir)
	g := generate.New(cfg, icon.NewComposer(cfg.Favicon.FontPath, log), manifest, log)
	if err := g.Run(ctx, target); err != nil {
		return fmt.Errorf("generate: %w", err)
	}
	log.Info("all assets generated", "output_dir", cfg.OutputDir)
	return nil
}

// runFavicon renders one favicon outside the configured size list.
func runFavicon(configPath string, size int, background bool, out string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := newLogger(cfg.LogLevel)

	variant := config.FaviconVariant{Name: "transparent"}
	if background {
		variant = config.FaviconVariant{Name: "blue-circle", Background: true, BackgroundColor: config.BrandBlue}
		if v, ok := cfg.FaviconVariant("blue-circle"); ok {
			variant = v
		}
	}

	img, err := icon.NewComposer(cfg.Favicon.FontPath, log).Compose(generate.FaviconSpec(cfg, variant, size))
	if err != nil {
		return err
	}
	if out == "" {
		out = filepath.Join(cfg.OutputDir, cfg.FaviconFile(variant.Name, size))
	}

	var buf bytes.Buffer
	if err := icon.EncodePNG(&buf, img); err != nil {
		return err
	}
	if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	log.Info("wrote favicon", "file", out, "size", size, "background", background)
	return nil
}

type qrOptions struct {
	url      string
	shape    string
	fg       string
	box      int
	border   int
	out      string
	terminal bool
}

// runQRCode renders one QR code to a file or the terminal.
func runQRCode(configPath string, opts qrOptions) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := newLogger(cfg.LogLevel)

	content := opts.url
	if content == "" {
		content = cfg.QR.URL
	}
	level, err := qr.ParseLevel(cfg.QR.Level)
	if err != nil {
		return err
	}

	if opts.terminal {
		return qr.Terminal(os.Stdout, content, level)
	}

	shape, err := qr.ParseShape(opts.shape)
	if err != nil {
		return err
	}
	fg, err := config.ParseColor(opts.fg)
	if err != nil {
		return err
	}
	png, err := qr.RenderPNG(content, level, qr.Style{
		Shape:      shape,
		Foreground: fg.RGBA,
		Background: color.RGBA{255, 255, 255, 255},
		BoxSize:    opts.box,
		Border:     opts.border,
	})
	if err != nil {
		return err
	}
	if err := os.WriteFile(opts.out, png, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", opts.out, err)
	}
	log.Info("wrote qr code", "file", opts.out, "shape", shape, "level", level)
	return nil
}

// runServe starts the preview server and blocks until a shutdown signal.
func runServe(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := newLogger(cfg.LogLevel)

	manifest, err := openManifest(cfg)
	if err != nil {
		return fmt.Errorf("open manifest: %w", err)
	}
	defer manifest.Close()

	srv := &http.Server{
		Addr: fmt.Sprintf(":%d", cfg.Port),
		Handler: api.NewRouter(&api.Server{
			Config:    cfg,
			Composer:  icon.NewComposer(cfg.Favicon.FontPath, log),
			Manifest:  manifest,
			Log:       log,
			Version:   version,
			StartTime: time.Now(),
		}),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info("HTTP server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	log.Info("preview is running", "qr_url", fmt.Sprintf("http://localhost:%d/qr", cfg.Port))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", "error", err)
	}
	return nil
}

// runAssets prints the manifest as JSON.
func runAssets(configPath, kind string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	manifest, err := openManifest(cfg)
	if err != nil {
		return fmt.Errorf("open manifest: %w", err)
	}
	defer manifest.Close()

	assets, err := manifest.List(kind)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(assets)
}
