package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"

	"golang.org/x/oauth2"

	tea "github.com/charmbracelet/bubbletea"

	"runsplits/internal/auth"
	"runsplits/internal/config"
	"runsplits/internal/service"
	"runsplits/internal/store"
	"runsplits/internal/strava"
	"runsplits/internal/tui"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	syncFlag := flag.Bool("sync", false, "sync activities and export reports, then exit")
	importDir := flag.String("import", "", "import TCX/FIT lap files from a directory, then exit")
	initConfig := flag.Bool("init-config", false, "write an example config file and exit")
	flag.Parse()

	ctx := context.Background()

	if *initConfig {
		if err := config.CreateExample(); err != nil {
			return fmt.Errorf("creating example config: %w", err)
		}
		configDir, _ := config.GetConfigDir()
		fmt.Printf("Config file ready at:\n  %s/config.json\n", configDir)
		return nil
	}

	// Load configuration
	cfg, err := config.Load()
	if errors.Is(err, config.ErrNoConfig) {
		fmt.Println("No config file found. Creating example config...")
		if err := config.CreateExample(); err != nil {
			return fmt.Errorf("creating example config: %w", err)
		}
		configDir, _ := config.GetConfigDir()
		fmt.Printf("\nPlease edit the config file at:\n  %s/config.json\n\n", configDir)
		fmt.Println("You need to add your Strava API credentials.")
		fmt.Println("Get them from: https://www.strava.com/settings/api")
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Open database
	db, err := store.Open(cfg.DBPath())
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	// File imports never touch the API, so they skip credential checks
	if *importDir != "" {
		return runImport(ctx, db, cfg, *importDir)
	}

	// Validate config
	if err := cfg.Validate(); err != nil {
		configDir, _ := config.GetConfigDir()
		fmt.Printf("Config validation failed: %v\n\n", err)
		fmt.Printf("Please edit the config file at:\n  %s/config.json\n", configDir)
		return nil
	}

	tokenSource, err := setupTokenSource(ctx, db, cfg)
	if err != nil {
		return err
	}

	// Create services
	stravaClient := strava.NewClient(tokenSource)
	exportSvc := service.NewExportService(stravaClient, db, cfg.Export.OutputDir, cfg.Export.LapMeters)
	syncSvc := service.NewSyncService(stravaClient, db, exportSvc)
	querySvc := service.NewQueryService(db)

	if *syncFlag {
		return runSync(ctx, syncSvc)
	}

	// Launch TUI
	app := tui.NewApp(querySvc, syncSvc)
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}

	return nil
}

// runImport imports lap files from dir and prints a short summary
func runImport(ctx context.Context, db *store.DB, cfg *config.Config, dir string) error {
	exportSvc := service.NewExportService(nil, db, cfg.Export.OutputDir, cfg.Export.LapMeters)

	result, err := exportSvc.ImportDirectory(ctx, dir)
	if err != nil {
		return fmt.Errorf("importing %s: %w", dir, err)
	}

	fmt.Printf("Imported %d of %d lap files\n", result.Imported, result.FilesFound)
	for _, e := range result.Errors {
		fmt.Printf("  %v\n", e)
	}
	if len(result.Errors) > 0 {
		return fmt.Errorf("%d files failed", len(result.Errors))
	}
	return nil
}

// runSync performs a headless sync and prints the result summary
func runSync(ctx context.Context, syncSvc *service.SyncService) error {
	fmt.Println("Syncing activities from Strava...")

	result, err := syncSvc.SyncAll(ctx, nil)
	if err != nil {
		return fmt.Errorf("sync: %w", err)
	}

	fmt.Printf("Fetched %d activities, stored %d runs\n", result.ActivitiesFetched, result.ActivitiesStored)
	fmt.Printf("Exported %d reports", result.ReportsExported)
	if result.Skipped > 0 {
		fmt.Printf(", skipped %d with no lap data", result.Skipped)
	}
	fmt.Println()
	for _, e := range result.Errors {
		fmt.Printf("  %v\n", e)
	}
	if len(result.Errors) > 0 {
		return fmt.Errorf("%d activities failed", len(result.Errors))
	}
	return nil
}

// setupTokenSource returns a token source backed by the stored auth row,
// bootstrapping from the configured refresh token or the browser flow when
// nothing is stored yet
func setupTokenSource(ctx context.Context, db *store.DB, cfg *config.Config) (*auth.TokenSource, error) {
	oauthCfg := auth.NewOAuthConfig(auth.Config{
		ClientID:     cfg.Strava.ClientID,
		ClientSecret: cfg.Strava.ClientSecret,
		RedirectURL:  fmt.Sprintf("http://localhost:%d/callback", auth.CallbackPort),
	})

	storedAuth, err := db.GetAuth()
	if errors.Is(err, store.ErrNoAuth) {
		if cfg.Strava.RefreshToken != "" {
			// Headless bootstrap: exchange the configured refresh token
			// once and persist the result
			src := oauthCfg.TokenSource(ctx, auth.TokenFromRefresh(cfg.Strava.RefreshToken))
			tok, err := src.Token()
			if err != nil {
				return nil, fmt.Errorf("refresh token exchange: %w", err)
			}
			if err := db.SaveAuth(&store.Auth{
				AthleteID:    auth.ExtractAthleteID(tok),
				AccessToken:  tok.AccessToken,
				RefreshToken: tok.RefreshToken,
				ExpiresAt:    tok.Expiry,
			}); err != nil {
				return nil, fmt.Errorf("saving auth: %w", err)
			}
		} else {
			fmt.Println("No authentication found. Starting OAuth flow...")
			if err := authenticate(ctx, db, oauthCfg); err != nil {
				return nil, fmt.Errorf("authentication: %w", err)
			}
		}

		storedAuth, err = db.GetAuth()
		if err != nil {
			return nil, fmt.Errorf("fetching auth after login: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("checking auth: %w", err)
	}

	persist := func(newToken *oauth2.Token) error {
		return db.UpdateTokens(newToken.AccessToken, newToken.RefreshToken, newToken.Expiry)
	}

	token := &oauth2.Token{
		AccessToken:  storedAuth.AccessToken,
		RefreshToken: storedAuth.RefreshToken,
		Expiry:       storedAuth.ExpiresAt,
	}
	tokenSource := auth.NewTokenSource(oauthCfg, token, persist)

	// Test token is valid by getting a fresh one
	if _, err := tokenSource.Token(); err != nil {
		fmt.Println("Stored token is invalid or expired. Re-authenticating...")
		if err := authenticate(ctx, db, oauthCfg); err != nil {
			return nil, fmt.Errorf("re-authentication: %w", err)
		}

		storedAuth, err = db.GetAuth()
		if err != nil {
			return nil, fmt.Errorf("fetching auth after login: %w", err)
		}
		token = &oauth2.Token{
			AccessToken:  storedAuth.AccessToken,
			RefreshToken: storedAuth.RefreshToken,
			Expiry:       storedAuth.ExpiresAt,
		}
		tokenSource = auth.NewTokenSource(oauthCfg, token, persist)
	}

	return tokenSource, nil
}

func authenticate(ctx context.Context, db *store.DB, oauthCfg *oauth2.Config) error {
	result, err := auth.Authenticate(ctx, oauthCfg)
	if err != nil {
		return err
	}

	// Store the tokens
	storedAuth := &store.Auth{
		AthleteID:    result.AthleteID,
		AccessToken:  result.Token.AccessToken,
		RefreshToken: result.Token.RefreshToken,
		ExpiresAt:    result.Token.Expiry,
	}

	if err := db.SaveAuth(storedAuth); err != nil {
		return fmt.Errorf("saving auth: %w", err)
	}

	fmt.Println()
	fmt.Printf("Successfully authenticated as athlete %d!\n", result.AthleteID)
	return nil
}
