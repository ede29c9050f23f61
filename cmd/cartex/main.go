package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/cartex"
	"github.com/fwojciec/cartex/capture"
	"github.com/fwojciec/cartex/config"
	"github.com/fwojciec/cartex/extract"
	"github.com/fwojciec/cartex/goquery"
	cartexhttp "github.com/fwojciec/cartex/http"
	"github.com/fwojciec/cartex/prometheus"
	"github.com/fwojciec/cartex/readability"
	"github.com/fwojciec/cartex/rod"
	cartexslog "github.com/fwojciec/cartex/slog"
	"github.com/fwojciec/cartex/sqlite"
	"github.com/fwojciec/cartex/trafilatura"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database path. Set before calling Run().
	DBPath string

	// SQLite database used by the cart service.
	DB *sqlite.DB

	// Fetcher overrides the fetcher chosen by --render. Used by tests.
	Fetcher cartex.Fetcher

	closers []func() error
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath: defaultDBPath(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	var firstErr error
	for i := len(m.closers) - 1; i >= 0; i-- {
		if err := m.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	m.closers = nil
	return firstErr
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("cartex"),
		kong.Description("Capture product title, price and image from store pages"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'cartex --help' to see available commands")
	}

	if args[0] == "help" || args[0] == "--help" || args[0] == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	cmd := strings.Fields(kongCtx.Command())[0]
	defer m.Close()

	level := slog.LevelInfo
	if cli.Verbose {
		level = slog.LevelDebug
	}
	deps.Logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	cfg := config.Default()
	if cli.Config != "" {
		if cfg, err = config.LoadFile(cli.Config); err != nil {
			return fmt.Errorf("failed to load config %q: %w", cli.Config, err)
		}
	}
	deps.Timeout = cfg.CaptureTimeout

	if cmd != "extract" {
		m.DB = sqlite.NewDB(m.DBPath)
		if err := m.DB.Open(); err != nil {
			fmt.Fprintf(stderr, "Hint: Set CARTEX_DB to use a different database path\n")
			return fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
		}
		m.closers = append(m.closers, m.DB.Close)
		deps.Cart = cartexslog.NewLoggingCartService(sqlite.NewCartService(m.DB), deps.Logger)
	}

	if cmd == "extract" || cmd == "add" || cmd == "serve" {
		fetcher, err := m.fetcher(cli.Render, stderr)
		if err != nil {
			return err
		}

		metrics := prometheus.NewMetrics()
		engine, err := newEngine(cfg, metrics, deps.Logger)
		if err != nil {
			return err
		}

		var extractor cartex.Extractor = prometheus.NewExtractor(engine, metrics)
		extractor = cartexslog.NewLoggingExtractor(extractor, deps.Logger)

		capturer := extract.NewCapturer(cartexslog.NewLoggingFetcher(fetcher, deps.Logger), extractor, goquery.Parse)
		capturer.Limiter = capture.NewDomainLimiter(cfg.RateLimit)
		capturer.Logger = deps.Logger
		deps.Capturer = cartexslog.NewLoggingCapturer(capturer, deps.Logger)

		if cmd == "serve" {
			router := capture.NewRouter(deps.Capturer)
			router.Timeout = cfg.CaptureTimeout
			router.Logger = deps.Logger
			deps.Handler = cartexhttp.NewServer(router, deps.Cart, metrics.Handler(), deps.Logger).Handler()
		}
	}

	return kongCtx.Run(deps)
}

// fetcher returns the configured fetcher, launching Chrome when render is set.
func (m *Main) fetcher(render bool, stderr io.Writer) (cartex.Fetcher, error) {
	if m.Fetcher != nil {
		return m.Fetcher, nil
	}
	if !render {
		f := cartexhttp.NewFetcher()
		m.closers = append(m.closers, f.Close)
		return f, nil
	}
	f, err := rod.NewFetcher()
	if err != nil {
		fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed for --render")
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}
	m.closers = append(m.closers, f.Close)
	return f, nil
}

// newEngine builds the extraction engine described by cfg. Metadata
// strategies run ahead of the document title and after the markup image
// strategies. Readability article strategies come last.
func newEngine(cfg *config.Config, metrics *prometheus.Metrics, logger *slog.Logger) (*extract.Engine, error) {
	registry := goquery.NewRegistry(cfg.SiteProfiles()...)
	detector := cartexslog.NewLoggingDetector(goquery.NewDetector(), logger)
	goquery.RegisterDefaultsWith(registry, cfg.PriceCeiling, detector)

	metadata := trafilatura.NewMetadataReader()
	registry.RegisterBefore("document-title", trafilatura.NewTitleStrategy(metadata))
	registry.Register(trafilatura.NewImageStrategy(metadata))

	article := readability.NewArticleReader()
	registry.Register(readability.NewTitleStrategy(article))
	registry.Register(readability.NewImageStrategy(article))

	opts, err := cfg.EngineOptions()
	if err != nil {
		return nil, err
	}
	opts = append(opts,
		extract.WithLogger(logger),
		extract.WithObserver(metrics),
	)
	return extract.NewEngine(cartexslog.NewLoggingRegistry(registry, logger), opts...), nil
}

func defaultDBPath() string {
	if path := os.Getenv("CARTEX_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "cartex.db"
	}
	dir := filepath.Join(home, ".cartex")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "cartex.db")
}
