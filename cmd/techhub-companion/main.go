// ABOUTME: Entry point for the techhub companion desktop helper
// ABOUTME: Subcommands: run, init, check

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fatih/color"

	"github.com/techguides/techhub/internal/companion"
)

// Version is set by goreleaser at build time.
var version = "dev"

// getConfigPath returns the companion config location.
// Priority: TECHHUB_COMPANION_CONFIG env var > XDG_CONFIG_HOME/techhub/companion.toml > ~/.config/techhub/companion.toml
func getConfigPath() string {
	if envPath := os.Getenv("TECHHUB_COMPANION_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "companion.toml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "techhub", "companion.toml")
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: techhub-companion <command>")
		fmt.Println()
		fmt.Println("Commands:")
		fmt.Println("  run     Connect to the server and execute queued commands")
		fmt.Println("  init    Write a starter config file")
		fmt.Println("  check   Verify credentials and external tools access")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "run":
		err = runRun(ctx)
	case "init":
		err = runInit()
	case "check":
		err = runCheck(ctx)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runRun(ctx context.Context) error {
	cfg, err := companion.LoadConfig(getConfigPath())
	if err != nil {
		return err
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, nil)))

	gray := color.New(color.FgHiBlack)
	gray.Printf("techhub-companion %s\n", version)
	fmt.Printf("Server: %s\n", cfg.ServerURL)
	fmt.Printf("User:   %s\n\n", cfg.Username)

	runner := companion.NewRunner(
		companion.NewClient(cfg.ServerURL),
		companion.NewLocalExecutor(),
		cfg,
	)

	err = runner.Run(ctx)
	if errors.Is(err, context.Canceled) {
		fmt.Println("\nStopped.")
		return nil
	}
	return err
}

func runInit() error {
	configPath := getConfigPath()
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config already exists at %s", configPath)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(configPath, []byte(companion.DefaultConfigTOML), 0600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	green := color.New(color.FgGreen)
	green.Print("✓ ")
	fmt.Printf("Config written to %s\n", configPath)
	fmt.Println("Fill in your credentials, then run: techhub-companion run")
	return nil
}

// runCheck logs in and reports whether the account may use external tools,
// without starting the poll loop.
func runCheck(ctx context.Context) error {
	cfg, err := companion.LoadConfig(getConfigPath())
	if err != nil {
		return err
	}

	client := companion.NewClient(cfg.ServerURL)
	if err := client.Login(ctx, cfg.Username, cfg.Password); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	green.Print("✓ ")
	fmt.Println("Login OK")

	entitled, err := client.CheckExternalFeatures(ctx)
	if err != nil {
		return err
	}
	if !entitled {
		red.Print("✗ ")
		fmt.Println("This account has no external tools access. Ask an admin to enable it.")
		os.Exit(1)
	}
	green.Print("✓ ")
	fmt.Println("External tools access enabled")

	toolList, err := client.ListTools(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("\n%d tools available:\n", len(toolList))
	for _, t := range toolList {
		fmt.Printf("  %-20s %s (%s)\n", t.ID, t.Name, t.Type)
	}
	return nil
}
