package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/ByLCY/scholar/api"
	"github.com/ByLCY/scholar/config"
	"github.com/ByLCY/scholar/domain"
	"github.com/ByLCY/scholar/fonts"
	"github.com/ByLCY/scholar/layout"
	"github.com/ByLCY/scholar/renderer"
	"github.com/ByLCY/scholar/renderer/builtin"
	"github.com/ByLCY/scholar/renderer/pdf"
	"github.com/ByLCY/scholar/service"
	"github.com/ByLCY/scholar/store"
)

func main() {
	configPath := flag.String("config", "", "YAML config file (defaults to $"+config.EnvPath+" or ./scholar.yaml)")
	student := flag.Int64("student", 0, "render the certificate of this student id and exit")
	format := flag.String("format", "pdf", "document format used with -student")
	output := flag.String("out", "", "output path used with -student (defaults to the document file name)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	logger, err := newLogger(cfg.Log)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *student > 0 {
		err = renderOnce(ctx, cfg, logger, *student, *format, *output)
	} else {
		err = run(ctx, cfg, logger)
	}
	if err != nil {
		logger.Error("scholar stopped", "error", err)
		os.Exit(1)
	}
}

func newLogger(cfg config.LogConfig) (*slog.Logger, error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts)), nil
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts)), nil
}

// app is everything run and renderOnce share.
type app struct {
	db       *store.DB
	services api.Services
	avail    *builtin.Availability
}

func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	db, err := store.Open(cfg.Database.Driver, cfg.Database.DSN, store.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("database %s: %w", cfg.Database.Driver, err)
	}
	if cfg.Database.Migrate {
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, err
		}
	}

	docs := cfg.Documents
	avail, err := builtin.Register(renderer.Default, builtin.Options{
		TemplateRoot:  docs.TemplateRoot,
		StaticBaseURL: docs.StaticBaseURL,
		ScratchDir:    docs.ScratchDir,
		Page: layout.PageSpec{
			Size:      docs.PDF.PageSize,
			Landscape: docs.PDF.Landscape,
			Margin:    layout.Margin{Top: docs.PDF.MarginMM, Right: docs.PDF.MarginMM, Bottom: docs.PDF.MarginMM, Left: docs.PDF.MarginMM},
		},
		FontSize:    docs.PDF.FontSizePt,
		LayoutDebug: docs.PDF.LayoutDebugDir,
		PDF: pdf.BackendOptions{
			Fonts: map[fonts.Style]string{
				fonts.Regular:    docs.PDF.Fonts.Regular,
				fonts.Bold:       docs.PDF.Fonts.Bold,
				fonts.Italic:     docs.PDF.Fonts.Italic,
				fonts.BoldItalic: docs.PDF.Fonts.BoldItalic,
			},
			FontDirs:      docs.PDF.FontDirs,
			MaxConcurrent: docs.PDF.MaxConcurrent,
		},
		Logger: logger,
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &app{
		db:    db,
		avail: avail,
		services: api.Services{
			Universities: service.NewCRUD[*domain.University](db.Universities),
			Faculties:    service.NewCRUD[*domain.Faculty](db.Faculties),
			Specialties:  service.NewSpecialties(db.Specialties, db),
			Students: service.NewStudents(db.Students, db, service.StudentsOptions{
				Registry: renderer.Default,
				Locale:   service.MatchLocale(docs.Locale),
				Folder:   docs.Certificate.Folder,
				Template: docs.Certificate.Template,
				Filename: docs.Certificate.Filename,
				Timeout:  docs.Timeout,
				Logger:   logger,
			}),
			Positions: service.NewCRUD[*domain.Position](db.Positions),
			Areas:     service.NewCRUD[*domain.Area](db.Areas),
			Registry:  renderer.Default,
			Formats:   func() []builtin.Status { return avail.Formats(renderer.Default) },
		},
	}, nil
}

// run serves the API until ctx is cancelled.
func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.db.Close()

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      api.NewHandler(a.services, api.WithLogger(logger)),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", "addr", cfg.Server.Addr, "formats", renderer.Default.AvailableFormats())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownGrace)
		defer cancel()
		logger.Info("shutting down", "grace", cfg.Server.ShutdownGrace)
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// renderOnce writes one certificate to disk.
func renderOnce(ctx context.Context, cfg *config.Config, logger *slog.Logger, id int64, format, output string) error {
	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.db.Close()

	doc, err := a.services.Students.GenerateCertificate(ctx, id, format)
	if err != nil {
		return err
	}
	if output == "" {
		output = doc.Filename
	}
	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if err := os.WriteFile(output, doc.Data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}
	logger.Info("document written", "path", output, "bytes", len(doc.Data))
	return nil
}
