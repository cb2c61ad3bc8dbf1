package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/paperdeck/paperdeck/internal/config"
	"github.com/paperdeck/paperdeck/internal/log"
	"github.com/paperdeck/paperdeck/internal/service"
	"github.com/paperdeck/paperdeck/internal/shelf"
	"github.com/paperdeck/paperdeck/internal/store"
	"github.com/paperdeck/paperdeck/internal/tui"
	"github.com/paperdeck/paperdeck/internal/viewer"
)

// Version is set at build time via -ldflags
var Version = "dev"

func main() {
	var showVersion bool
	flag.BoolVar(&showVersion, "v", false, "print version")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.Parse()

	if showVersion {
		fmt.Printf("paperdeck %s\n", Version)
		return
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := log.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = log.NullLogger()
	}
	slog.SetDefault(logger)

	logger.Info("starting paperdeck", "version", Version)

	// The shelf is a full-screen TUI; refuse to start on a pipe
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("paperdeck requires an interactive terminal")
	}

	if !cfg.IsConfigured() {
		return runSetupFlow(cfg, logger)
	}

	client := shelf.NewClient(cfg.Server, logger)
	uploader := shelf.NewUploader(cfg.Server, logger)

	cache, err := store.NewAssetStore(config.GetCachePath(), cfg.Server.URL)
	if err != nil {
		logger.Warn("cache unavailable, running without persistence", "error", err)
		cache, _ = store.NewAssetStore("", cfg.Server.URL)
	}
	defer cache.Close()

	launcher := viewer.NewLauncher(cfg.Viewer.Command, cfg.Viewer.Args, cfg.Viewer.Fragment, logger)
	assetSvc := service.NewAssetService(client, client, cache, logger)

	model := tui.NewModel(assetSvc, uploader, launcher, downloadDir(), logger)

	p := tea.NewProgram(model, tea.WithAltScreen())

	logger.Info("starting TUI")

	if _, err := p.Run(); err != nil {
		logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}

	logger.Info("shutting down")
	return nil
}

// downloadDir is where downloaded documents land
func downloadDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, "Downloads")
}

// runSetupFlow handles the initial setup when no server is configured
func runSetupFlow(cfg *config.Config, logger *slog.Logger) error {
	fmt.Println()
	fmt.Println("Welcome to Paperdeck!")
	fmt.Println()

	reader := bufio.NewReader(os.Stdin)

	var serverURL string
	for {
		fmt.Print("Enter your shelf server URL (e.g., http://192.168.1.100:8080): ")
		input, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		serverURL = strings.TrimSpace(input)

		if serverURL == "" {
			fmt.Println("Server URL cannot be empty. Please try again.")
			continue
		}
		if !strings.HasPrefix(serverURL, "http://") && !strings.HasPrefix(serverURL, "https://") {
			serverURL = "http://" + serverURL
		}

		fmt.Println()
		fmt.Print("Checking server...")
		if err := checkServer(cfg, serverURL, logger); err != nil {
			fmt.Printf("\r✗ Could not reach the shelf server: %v\n", err)
			fmt.Println("Please check the URL and try again.")
			fmt.Println()
			continue
		}
		fmt.Println("\r✓ Server is reachable.")
		break
	}

	cfg.Server.URL = serverURL
	if err := config.SaveConfig(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Println()
	fmt.Println("✓ Configuration saved!")
	fmt.Println()
	fmt.Println("Run paperdeck again to start the application.")

	return nil
}

// checkServer asks the candidate server for its listing
func checkServer(cfg *config.Config, serverURL string, logger *slog.Logger) error {
	probe := cfg.Server
	probe.URL = serverURL

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	client := shelf.NewClient(probe, logger)
	_, err := client.ListAssets(ctx)
	return err
}
