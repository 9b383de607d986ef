package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/erazemk/transferlog/internal/api"
	"github.com/erazemk/transferlog/internal/auth"
	"github.com/erazemk/transferlog/internal/config"
	"github.com/erazemk/transferlog/internal/db"
	"github.com/erazemk/transferlog/internal/httpx"
	"github.com/erazemk/transferlog/internal/metrics"
	"github.com/erazemk/transferlog/internal/model"
	"github.com/erazemk/transferlog/internal/notify"
	"github.com/erazemk/transferlog/internal/registry"
	"github.com/erazemk/transferlog/internal/seed"
	"github.com/erazemk/transferlog/internal/store"
	"github.com/erazemk/transferlog/internal/transcribe"
	"github.com/erazemk/transferlog/internal/web"
)

const usage = `Usage: transferlog [flags]
       transferlog admin add|promote [flags] <email>
       transferlog seed [flags]

Flags:
  -d, -db <path>          SQLite database path (default: transferlog.sqlite3)
  -a, -addr <host:port>   listen address (default: :8080)
  -l, -log <path>         log file path (default: no file, stdout/stderr only)
  -e, -env <path>         environment file (default: .env)
  -h, -help               show this help and exit

Seed flags:
  -n <count>              number of transfers to generate (default: 50)
  -user <email>           owner of the generated transfers
`

// purgeInterval is how often expired revoked tokens are deleted.
const purgeInterval = time.Hour

// options holds the flags shared by every command.
type options struct {
	dbPath  string
	addr    string
	logPath string
	envPath string
}

func newFlagSet(name string, o *options) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.StringVar(&o.dbPath, "db", "transferlog.sqlite3", "")
	fs.StringVar(&o.dbPath, "d", "transferlog.sqlite3", "")
	fs.StringVar(&o.addr, "addr", ":8080", "")
	fs.StringVar(&o.addr, "a", ":8080", "")
	fs.StringVar(&o.logPath, "log", "", "")
	fs.StringVar(&o.logPath, "l", "", "")
	fs.StringVar(&o.envPath, "env", ".env", "")
	fs.StringVar(&o.envPath, "e", ".env", "")
	fs.Usage = func() { fmt.Fprint(os.Stdout, usage) }
	return fs
}

func parseFlags(fs *flag.FlagSet, args []string) {
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}
}

func main() {
	args := os.Args[1:]
	cmd := "serve"
	if len(args) > 0 && (args[0] == "admin" || args[0] == "seed") {
		cmd, args = args[0], args[1:]
	}

	var err error
	switch cmd {
	case "admin":
		err = cmdAdmin(args)
	case "seed":
		err = cmdSeed(args)
	default:
		err = cmdServe(args)
	}
	if err != nil {
		slog.Error("command failed", "command", cmd, "error", err)
		os.Exit(1)
	}
}

// setup loads configuration, starts logging and opens the migrated database.
// The returned cleanup closes both.
func setup(o *options) (*config.Config, *sql.DB, func(), error) {
	cfg, err := config.Load(o.envPath)
	if err != nil {
		return nil, nil, nil, err
	}

	// Set up structured logging: INFO/WARN → stdout, ERROR → stderr.
	closeLog, err := setupLogger(o.logPath, parseLevel(cfg.LogLevel))
	if err != nil {
		return nil, nil, nil, err
	}

	database, err := db.Open(o.dbPath)
	if err != nil {
		if closeLog != nil {
			closeLog()
		}
		return nil, nil, nil, err
	}
	cleanup := func() {
		database.Close()
		if closeLog != nil {
			closeLog()
		}
	}

	if err := db.Migrate(database); err != nil {
		cleanup()
		return nil, nil, nil, err
	}
	version, _ := db.Version(database)
	slog.Info("database ready", "path", o.dbPath, "schema_version", version)

	return cfg, database, cleanup, nil
}

func cmdServe(args []string) error {
	var o options
	fs := newFlagSet("transferlog", &o)
	parseFlags(fs, args)
	if fs.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "unexpected argument: %s\n", fs.Arg(0))
		fs.Usage()
		os.Exit(1)
	}

	cfg, database, cleanup, err := setup(&o)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := context.Background()

	secret := cfg.SessionSecret
	if secret == "" {
		if secret, err = store.GetSessionSecret(ctx, database); err != nil {
			return fmt.Errorf("loading session secret: %w", err)
		}
	}

	reg := registry.New(database)
	if cfg.InitialAdminEmail != "" {
		if _, err := reg.Bootstrap(ctx, cfg.InitialAdminEmail); err != nil {
			return fmt.Errorf("bootstrapping initial admin: %w", err)
		}
	} else {
		slog.Warn("no initial admin configured, set TRANSFERLOG_INITIAL_ADMIN_EMAIL or use `transferlog admin`")
	}

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(promReg)

	sender := mailSender(cfg)
	if missing := cfg.MissingContacts(); len(missing) > 0 {
		slog.Warn("no notification contact configured, set TRANSFERLOG_LOCATION_CONTACTS or TRANSFERLOG_DEFAULT_CONTACT",
			"locations", missing)
	}
	dispatcher := &notify.Dispatcher{
		Directory:  notify.Directory(cfg.Contacts()),
		Sender:     sender,
		SystemName: cfg.SystemName,
		Metrics:    m,
	}
	provider := &auth.Provider{
		DB:         database,
		Secret:     secret,
		Mailer:     sender,
		PublicURL:  cfg.PublicURL,
		SystemName: cfg.SystemName,
	}

	google := auth.NewGoogle(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.PublicURL+"/auth/google/callback")
	if google == nil {
		slog.Info("google sign-in disabled")
	}

	var transcriber transcribe.Transcriber
	gemini, err := transcribe.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	switch {
	case err != nil:
		slog.Error("transcription disabled", "error", err)
	case gemini == nil:
		slog.Info("transcription disabled, no API key")
	default:
		defer gemini.Close()
		transcriber = gemini
	}

	// Set up routers.
	apiRouter := api.NewRouter(api.Deps{
		DB:          database,
		Config:      cfg,
		Auth:        provider,
		Registry:    reg,
		Dispatcher:  dispatcher,
		Transcriber: transcriber,
		Metrics:     m,
	})
	webRouter, err := web.NewRouter(web.Deps{
		DB:         database,
		Config:     cfg,
		Auth:       provider,
		Google:     google,
		Registry:   reg,
		Dispatcher: dispatcher,
		Metrics:    m,
	})
	if err != nil {
		return fmt.Errorf("setting up web router: %w", err)
	}

	// Combine: API routes take priority, web routes handle the rest.
	mux := http.NewServeMux()
	mux.Handle("/api/", apiRouter)
	mux.Handle("GET /metrics", promhttp.HandlerFor(promReg, promhttp.HandlerOpts{}))
	mux.Handle("/", webRouter)

	server := &http.Server{
		Addr:              o.addr,
		Handler:           httpx.LoggingMiddleware(m)(mux),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	purgeCtx, stopPurge := context.WithCancel(ctx)
	defer stopPurge()
	go purgeRevokedTokens(purgeCtx, database)

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-quit
		slog.Info("shutdown signal received", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	slog.Info("server started", "addr", o.addr, "env", cfg.AppEnv,
		"mail", cfg.MailConfigured(), "google", google != nil, "transcription", transcriber != nil)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	slog.Info("server stopped, closing database")
	return nil
}

// mailSender returns the SMTP relay, or a LogSender when mail is not
// configured or the relay cannot be set up.
func mailSender(cfg *config.Config) notify.Sender {
	if !cfg.MailConfigured() {
		slog.Warn("mail relay not configured, notifications will fail")
		return notify.LogSender{}
	}
	s, err := notify.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.MailFrom)
	if err != nil {
		slog.Error("failed to configure mail relay", "error", err)
		return notify.LogSender{}
	}
	return s
}

func purgeRevokedTokens(ctx context.Context, database *sql.DB) {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := store.PurgeRevokedTokens(ctx, database, now)
			if err != nil {
				slog.Error("failed to purge revoked tokens", "error", err)
				continue
			}
			if n > 0 {
				slog.Info("purged revoked tokens", "count", n)
			}
		}
	}
}

// cmdAdmin handles `transferlog admin add|promote <email>`.
func cmdAdmin(args []string) error {
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
	action := args[0]

	var o options
	var name string
	fs := newFlagSet("admin", &o)
	fs.StringVar(&name, "name", "", "")
	parseFlags(fs, args[1:])
	if fs.NArg() != 1 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
	email := fs.Arg(0)

	_, database, cleanup, err := setup(&o)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := context.Background()
	reg := registry.New(database)

	switch action {
	case "add":
		a, err := reg.AddAdmin(ctx, email, name, model.AddedBySystem)
		if err != nil {
			return err
		}
		fmt.Printf("Admin added: %s\n", a.Email)
	case "promote":
		if _, err := reg.AddAdmin(ctx, email, name, model.AddedBySystem); err != nil {
			return err
		}
		if err := reg.Promote(ctx, email); err != nil {
			return err
		}
		fmt.Printf("Initial admin: %s\n", email)
	default:
		return fmt.Errorf("unknown admin action %q", action)
	}
	return nil
}

// cmdSeed handles `transferlog seed -n N -user <email>`.
func cmdSeed(args []string) error {
	var o options
	var count int
	var email string
	fs := newFlagSet("seed", &o)
	fs.IntVar(&count, "n", 50, "")
	fs.StringVar(&email, "user", "", "")
	parseFlags(fs, args)
	if email == "" {
		return errors.New("seed: -user is required")
	}

	_, database, cleanup, err := setup(&o)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := context.Background()
	user, err := store.GetUserByEmail(ctx, database, model.NormalizeEmail(email))
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("seed: no user with email %s", email)
	}

	seedVal := uint64(time.Now().UnixNano())
	n, err := seed.Generate(ctx, database, user.ID, count, rand.New(rand.NewPCG(seedVal, seedVal>>1)))
	slog.Info("generated test transfers", "count", n)
	return err
}
