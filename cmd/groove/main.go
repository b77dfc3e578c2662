package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/glebovdev/groove-cli/internal/api"
	"github.com/glebovdev/groove-cli/internal/cache"
	"github.com/glebovdev/groove-cli/internal/config"
	"github.com/glebovdev/groove-cli/internal/player"
	"github.com/glebovdev/groove-cli/internal/queue"
	"github.com/glebovdev/groove-cli/internal/service"
	"github.com/glebovdev/groove-cli/internal/ui"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	versionFlag = flag.Bool("version", false, "Show version information")
	debugFlag   = flag.Bool("debug", false, "Enable debug logging")
	queryFlag   = flag.String("query", "", "Start with songs whose title matches `title`")
	likedFlag   = flag.Bool("liked", false, "Start with liked songs only")
)

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s v%s - %s\n\n", config.AppName, config.AppVersion, config.AppDescription)
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()

		configPath, err := config.GetConfigPath()
		if err == nil {
			if _, statErr := os.Stat(configPath); statErr == nil {
				fmt.Fprintf(os.Stderr, "\nConfig file: %s\n", configPath)
			} else {
				fmt.Fprintf(os.Stderr, "\nConfig file will be created on first use.\n")
			}
		}
	}
}

func setupLogging(debug bool) {
	if !debug {
		// Avoid TUI corruption by only logging errors to /dev/null
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
		logFile, err := os.OpenFile(os.DevNull, os.O_WRONLY, 0644)
		if err == nil {
			log.Logger = log.Output(logFile)
		}
		return
	}

	zerolog.SetGlobalLevel(zerolog.DebugLevel)

	cacheDir, err := cache.GetCacheDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not get cache dir: %v\n", err)
		cacheDir = os.TempDir()
	}
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not create log dir: %v\n", err)
	}
	logPath := filepath.Join(cacheDir, "debug.log")
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not create log file: %v\n", err)
		logFile = os.Stderr
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: logFile, TimeFormat: "15:04:05"})
	fmt.Printf("Debug log: %s\n", logPath)
	log.Info().Msgf("Starting %s v%s (debug mode)", config.AppName, config.AppVersion)

	if configPath, err := config.GetConfigPath(); err == nil {
		log.Debug().Msgf("Config: %s", configPath)
	}
	log.Debug().Msgf("Cache: %s", cacheDir)
}

func main() {
	flag.Parse()

	if *versionFlag {
		fmt.Printf("%s v%s\n", config.AppName, config.AppVersion)
		fmt.Println(config.AppDescription)
		os.Exit(0)
	}

	setupLogging(*debugFlag)

	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load config, using defaults")
	}

	diskCache, err := cache.NewCache()
	if err != nil {
		log.Error().Err(err).Msg("Failed to locate cache directory, using temp dir")
		diskCache = cache.NewCacheAt(filepath.Join(os.TempDir(), cache.AppName))
	}
	go func() {
		if err := diskCache.CleanExpired(); err != nil {
			log.Debug().Err(err).Msg("Failed to clean cache")
		}
	}()

	var apiClient *api.CatalogClient
	if cfg.Catalog.IsConfigured() {
		apiClient = api.NewCatalogClient(cfg.Catalog)
	} else {
		log.Error().Msg("Catalog URL is not configured")
	}

	catalogService := service.NewCatalogService(apiClient, diskCache)
	playbackQueue := queue.New()
	controller := player.NewController(playbackQueue, player.NewBeepEngine(diskCache), catalogService, player.Options{
		Volume:    cfg.Volume,
		Looping:   cfg.Loop,
		Shuffling: cfg.Shuffle,
	})
	grooveUI := ui.NewUI(controller, playbackQueue, catalogService, cfg, ui.Options{
		Query: *queryFlag,
		Liked: *likedFlag,
	})

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		controller.Run(ctx)
	}()

	// Releases the audio handle before exit
	stopPlayback := func() {
		cancel()
		wg.Wait()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	uiDone := make(chan error, 1)

	go func() {
		<-sigChan
		log.Info().Msg("Received shutdown signal, cleaning up...")
		grooveUI.Shutdown()
	}()

	log.Info().Msg("Starting UI...")

	// Run UI in a goroutine so we can handle signals properly
	go func() {
		uiDone <- grooveUI.Run()
	}()

	if err := <-uiDone; err != nil {
		log.Error().Err(err).Msg("Error running UI")
		stopPlayback()
		os.Exit(1)
	}

	stopPlayback()
	log.Info().Msgf("%s stopped", config.AppName)
}
