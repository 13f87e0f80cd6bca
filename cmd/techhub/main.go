// ABOUTME: Entry point for the techhub community server
// ABOUTME: Subcommands: serve, init, bootstrap, health

package main

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fatih/color"

	"github.com/techguides/techhub/internal/api"
	"github.com/techguides/techhub/internal/auth"
	"github.com/techguides/techhub/internal/config"
	"github.com/techguides/techhub/internal/content"
	"github.com/techguides/techhub/internal/dispatch"
	"github.com/techguides/techhub/internal/queue"
	"github.com/techguides/techhub/internal/store"
	"github.com/techguides/techhub/internal/tools"
)

// Version is set by goreleaser at build time.
var version = "dev"

const banner = `
 _            _     _           _
| |_ ___  ___| |__ | |__  _   _| |__
| __/ _ \/ __| '_ \| '_ \| | | | '_ \
| ||  __/ (__| | | | | | | |_| | |_) |
 \__\___|\___|_| |_|_| |_|\__,_|_.__/
`

// getConfigPath returns the path to the server config file.
// Priority: TECHHUB_CONFIG env var > XDG_CONFIG_HOME/techhub/server.yaml > ~/.config/techhub/server.yaml
func getConfigPath() string {
	if envPath := os.Getenv("TECHHUB_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "server.yaml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "techhub", "server.yaml")
}

// getDataPath returns the path to the techhub data directory.
// Priority: XDG_DATA_HOME/techhub > ~/.local/share/techhub
func getDataPath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "data" // fallback
		}
		dataDir = filepath.Join(homeDir, ".local", "share")
	}

	return filepath.Join(dataDir, "techhub")
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: techhub <command>")
		fmt.Println()
		fmt.Println("Commands:")
		fmt.Println("  serve                    Start the community server")
		fmt.Println("  init                     Write a starter config file")
		fmt.Println("  bootstrap --user NAME    Create config and the first entitled user")
		fmt.Println("  health                   Check server health")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(ctx)
	case "init":
		err = runInit()
	case "bootstrap":
		err = runBootstrap(ctx)
	case "health":
		err = runHealth(ctx)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServe(ctx context.Context) error {
	configPath := getConfigPath()

	// Print banner
	cyan := color.New(color.FgCyan)
	cyan.Print(banner)

	gray := color.New(color.FgHiBlack)
	gray.Printf("    version: %s\n\n", version)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := setupLogger(cfg.Logging)

	green := color.New(color.FgGreen)
	green.Print("    ▶ ")
	fmt.Printf("Config:   %s\n", configPath)
	green.Print("    ▶ ")
	fmt.Printf("HTTP:     %s\n", cfg.Server.HTTPAddr)
	green.Print("    ▶ ")
	fmt.Printf("Database: %s\n", cfg.Database.Path)
	green.Print("    ▶ ")
	fmt.Printf("Tools:    %s\n", cfg.Tools.ConfigPath)
	fmt.Println()

	logger.Info("starting techhub",
		"config", configPath,
		"http_addr", cfg.Server.HTTPAddr,
		"database", cfg.Database.Path,
	)

	st, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer st.Close()

	registry, err := tools.NewRegistry(cfg.Tools.ConfigPath, st)
	if err != nil {
		return fmt.Errorf("loading tool registry: %w", err)
	}

	if cfg.Tools.Watch {
		watcher, err := tools.NewWatcher(registry)
		if err != nil {
			return fmt.Errorf("starting tools watcher: %w", err)
		}
		go watcher.Run(ctx)
	}

	q := queue.New()
	go runQueueGauge(ctx, q)

	engine := dispatch.NewEngine(registry, q, st)
	verifier := auth.NewJWTVerifier([]byte(cfg.Auth.JWTSecret))
	login := auth.NewLogin(st, verifier, cfg.Auth.MasterPassword, cfg.Auth.TokenTTL)

	contentSvc := content.NewService(st)
	if err := contentSvc.Startup(ctx, cfg.Content.WipeChatOnStartup); err != nil {
		return err
	}

	server := api.NewServer(st, registry, engine, q, login, verifier, contentSvc)

	httpServer := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", cfg.Server.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

// runQueueGauge logs the total queue depth once a minute. The queue is
// unbounded, so the gauge is the operator's only visibility into growth.
func runQueueGauge(ctx context.Context, q *queue.Queue) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			q.LogDepth()
		}
	}
}

func runInit() error {
	configPath := getConfigPath()
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config already exists at %s", configPath)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	secret, err := randomSecret()
	if err != nil {
		return err
	}

	dataPath := getDataPath()
	starter := fmt.Sprintf(`server:
  http_addr: "0.0.0.0:8080"

database:
  path: %q

auth:
  jwt_secret: %q
  # Set to enable the admin override login. Leave empty to disable.
  master_password: ""
  token_ttl: "168h"

tools:
  config_path: %q
  watch: true

content:
  upload_dir: %q
  wipe_chat_on_startup: true

logging:
  level: "info"
  format: "text"
`,
		filepath.Join(dataPath, "techhub.db"),
		secret,
		filepath.Join(dataPath, "external_tools_config.json"),
		filepath.Join(dataPath, "uploads"),
	)

	if err := os.WriteFile(configPath, []byte(starter), 0600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	green := color.New(color.FgGreen)
	green.Print("✓ ")
	fmt.Printf("Config written to %s\n", configPath)
	fmt.Println("Edit it, then run: techhub serve")
	return nil
}

// runBootstrap performs first-time setup: writes a config when none exists
// and creates the first user with external tools access enabled.
func runBootstrap(ctx context.Context) error {
	username, password, err := parseBootstrapArgs(os.Args[2:])
	if err != nil {
		return err
	}

	configPath := getConfigPath()
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := runInit(); err != nil {
			return err
		}
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	st, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer st.Close()

	user := &store.User{Username: username, ExternalFeatures: true}
	if err := st.CreateUser(ctx, user, password); err != nil {
		return fmt.Errorf("creating user: %w", err)
	}

	green := color.New(color.FgGreen)
	cyan := color.New(color.FgCyan)
	green.Print("✓ ")
	fmt.Print("Created user ")
	cyan.Println(username)
	fmt.Println("External tools access is enabled for this account.")
	return nil
}

func parseBootstrapArgs(args []string) (username, password string, err error) {
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--user", "-u":
			if i+1 >= len(args) {
				return "", "", fmt.Errorf("--user requires a value")
			}
			username = args[i+1]
			i++
		case "--password", "-p":
			if i+1 >= len(args) {
				return "", "", fmt.Errorf("--password requires a value")
			}
			password = args[i+1]
			i++
		default:
			return "", "", fmt.Errorf("unexpected argument: %s", args[i])
		}
	}

	if username == "" {
		return "", "", fmt.Errorf("--user flag is required")
	}
	if password == "" {
		secret, err := randomSecret()
		if err != nil {
			return "", "", err
		}
		password = secret[:16]
		fmt.Printf("Generated password: %s\n", password)
	}
	return username, password, nil
}

func runHealth(ctx context.Context) error {
	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	url := fmt.Sprintf("http://%s/api/health", cfg.Server.HTTPAddr)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unhealthy: status %d", resp.StatusCode)
	}

	fmt.Println("healthy")
	return nil
}

func randomSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating secret: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf), nil
}
