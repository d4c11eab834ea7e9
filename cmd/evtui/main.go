package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ajramos/evtui/internal/api"
	"github.com/ajramos/evtui/internal/cache"
	"github.com/ajramos/evtui/internal/config"
	"github.com/ajramos/evtui/internal/db"
	"github.com/ajramos/evtui/internal/metrics"
	"github.com/ajramos/evtui/internal/nav"
	"github.com/ajramos/evtui/internal/services"
	"github.com/ajramos/evtui/internal/tui"
	"github.com/ajramos/evtui/internal/version"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"
)

// flags holds the parsed command line.
type flags struct {
	configPath  string
	envFile     string
	baseURL     string
	showVersion bool
	writeConfig bool
}

func parseFlags(args []string) (flags, error) {
	var f flags
	flagSet := pflag.NewFlagSet("evtui", pflag.ContinueOnError)
	flagSet.StringVar(&f.configPath, "config", "", "Path to JSON configuration file (default: ~/.config/evtui/config.json)")
	flagSet.StringVar(&f.envFile, "env-file", ".env", "Dotenv file read before the environment is applied")
	flagSet.StringVar(&f.baseURL, "base-url", "", "Backend base URL, overrides the config file and environment")
	flagSet.BoolVar(&f.showVersion, "version", false, "Show version information and exit")
	flagSet.BoolVar(&f.writeConfig, "write-config", false, "Write the effective configuration to the config file and exit")
	flagSet.Usage = func() { printUsage(flagSet) }
	if err := flagSet.Parse(args); err != nil {
		return f, err
	}
	return f, nil
}

func printUsage(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, "%s\n\n", version.GetVersionString())
	fmt.Fprintf(os.Stderr, "Usage:\n  evtui [options]\n\n")
	fmt.Fprintf(os.Stderr, "Options:\n%s\n", flagSet.FlagUsages())
	fmt.Fprintf(os.Stderr, "Environment Variables:\n")
	fmt.Fprintf(os.Stderr, "  EVTUI_CONFIG        Override default config file path\n")
	fmt.Fprintf(os.Stderr, "  EVTUI_BASE_URL      Backend base URL\n")
	fmt.Fprintf(os.Stderr, "  APP_HOST, APP_PORT  Backend host and port, as the server reads them\n")
	fmt.Fprintf(os.Stderr, "  EVTUI_LOG_FILE      Log file path\n")
	fmt.Fprintf(os.Stderr, "  EVTUI_METRICS_ADDR  Serve Prometheus metrics on this address\n")
}

func main() {
	f, err := parseFlags(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if f.showVersion {
		fmt.Println(version.GetDetailedVersionString())
		return
	}
	if err := loadEnvFile(f.envFile); err != nil {
		log.Printf("Warning: %v", err)
	}

	mgr := config.NewManager()
	if err := mgr.LoadFromFile(getConfigPath(f.configPath), os.Getenv); err != nil {
		log.Fatalf("Could not load configuration: %v", err)
	}
	if f.baseURL != "" {
		if err := mgr.Update(func(c *config.Config) { c.API.BaseURL = f.baseURL }); err != nil {
			log.Fatalf("Invalid --base-url: %v", err)
		}
	}
	if f.writeConfig {
		if err := writeConfig(mgr, os.Stdout); err != nil {
			log.Fatalf("Could not write configuration: %v", err)
		}
		return
	}
	cfg := mgr.GetConfig()

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error running application: %v\n", err)
		os.Exit(1)
	}
}

// writeConfig saves the loaded configuration, flags and environment
// included, back to the file it was read from.
func writeConfig(mgr *config.Manager, w io.Writer) error {
	if err := mgr.Save(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Configuration written to %s\n", mgr.Path())
	return err
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, closer := tui.NewLogger(cfg.LogFile)
	defer func() { _ = closer.Close() }()
	logger.Printf("main: %s starting against %s", version.GetVersionString(), cfg.API.BaseURL)

	persistent, closeStore := openCache(ctx, cfg.Cache.Path, logger)
	defer closeStore()

	client, err := api.NewClient(cfg.API.BaseURL, cfg.APITimeout(), logger)
	if err != nil {
		return fmt.Errorf("api client: %w", err)
	}
	profiles := services.NewProfileService(client)
	media := services.NewMediaService(client)
	chat := services.NewChatService(client)

	recorder := metrics.NewRecorder(prometheus.NewRegistry())
	if cfg.Metrics.Addr != "" {
		go func() {
			if err := recorder.Serve(ctx, cfg.Metrics.Addr, logger); err != nil {
				logger.Printf("main: %v", err)
			}
		}()
	}

	templates := nav.NewTemplateCache(nav.NewFileSource(cfg.Navigation.TemplateDir), logger)
	if err := templates.Watch(ctx, cfg.Navigation.TemplateDir); err != nil {
		logger.Printf("main: template watch: %v", err)
	}

	app := tui.NewApp(tui.Options{
		Config:    cfg,
		Logger:    logger,
		Cache:     persistent,
		Sessions:  cache.NewSessionStore(cfg.Cache.SessionDir, logger),
		Templates: templates,
		Themes:    config.NewThemeLoader(cfg.Layout.CustomThemeDir),
		Metrics:   recorder,
		Services: tui.Services{
			Profiles:      profiles,
			Files:         media,
			Transcription: media,
			Progress:      media,
			Chat:          chat,
			Analytics:     chat,
			Health:        chat,
		},
	})
	defer app.Stop()
	return app.Run(ctx)
}

// openCache opens the sqlite cache, falling back to memory so a broken
// cache file never blocks startup.
func openCache(ctx context.Context, path string, logger *log.Logger) (*cache.Persistent, func()) {
	store, err := db.Open(ctx, path)
	if err != nil {
		logger.Printf("main: cache %s unavailable, using memory: %v", path, err)
		return cache.NewPersistent(cache.NewMemoryBackend(), logger), func() {}
	}
	return cache.NewPersistent(db.NewKVStore(store), logger), func() {
		if err := store.Close(); err != nil {
			logger.Printf("main: close cache: %v", err)
		}
	}
}

// loadEnvFile reads KEY=value pairs into the environment. Variables that are
// already set win, and a missing file is not an error.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("env file %s: %w", path, err)
	}
	return nil
}

// getConfigPath returns the configuration file path using the following priority:
// 1. CLI flag
// 2. Environment variable EVTUI_CONFIG
// 3. Default path ~/.config/evtui/config.json
func getConfigPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envPath := os.Getenv("EVTUI_CONFIG"); envPath != "" {
		return config.ExpandPath(envPath)
	}
	return config.DefaultConfigPath()
}
