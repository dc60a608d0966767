// Package cli wires the pipeline services behind the papertrail
// command tree.
package cli

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/archivelab/papertrail/internal/adapters/driven/config/file"
	"github.com/archivelab/papertrail/internal/adapters/driven/storage/blob"
	storagefile "github.com/archivelab/papertrail/internal/adapters/driven/storage/file"
	"github.com/archivelab/papertrail/internal/adapters/driven/storage/sqlite"
	"github.com/archivelab/papertrail/internal/analysis"
	"github.com/archivelab/papertrail/internal/analysis/metadata"
	"github.com/archivelab/papertrail/internal/analysis/ocr"
	"github.com/archivelab/papertrail/internal/config"
	"github.com/archivelab/papertrail/internal/core/domain"
	"github.com/archivelab/papertrail/internal/core/ports/driven"
	"github.com/archivelab/papertrail/internal/core/ports/driving"
	"github.com/archivelab/papertrail/internal/core/services"
	"github.com/archivelab/papertrail/internal/fetch"
	"github.com/archivelab/papertrail/internal/logger"
	"github.com/archivelab/papertrail/internal/sources"
)

// version is stamped at build time via -ldflags.
var version = "dev"

var (
	configDir string
	dataDir   string
	verbose   bool
)

var rootCmd = &cobra.Command{
	Use:   "papertrail",
	Short: "Document archive pipeline",
	Long: `papertrail ingests documents from configured sources, analyses
them (classification, OCR, metadata extraction) and builds a sharded
catalog with a local search index.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
		logger.SetOutput(cmd.ErrOrStderr())
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "config directory (default ~/.papertrail)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "data directory (default <config-dir>/data)")
}

// Execute runs the command tree.
func Execute() error {
	defer closeApp()
	return rootCmd.Execute()
}

// app holds the wired services. Built lazily so commands like version
// never touch the filesystem.
type app struct {
	settings  file.Settings
	dataDir   string
	configDir string

	states    *storagefile.StateStore
	blobs     *blob.Store
	catalog   *storagefile.CatalogStore
	texts     *storagefile.TextStore
	shards    *storagefile.ShardStore
	index     *sqlite.Index
	registry  *config.Registry
	fetcher   *fetch.Client
	hasJar    bool

	ingestor     driving.Ingestor
	extractor    driving.Extractor
	indexBuilder driving.IndexBuilder
	validator    driving.Validator
	search       driving.SearchService
}

var theApp *app

func closeApp() {
	if theApp != nil && theApp.index != nil {
		theApp.index.Close()
	}
}

// getApp wires all stores and services on first use.
func getApp() (*app, error) {
	if theApp != nil {
		return theApp, nil
	}

	cfgDir := configDir
	if cfgDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		cfgDir = filepath.Join(home, ".papertrail")
	}

	settingsStore, err := file.NewSettingsStore(cfgDir)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	settings := settingsStore.Settings()

	dir := dataDir
	if dir == "" {
		dir = filepath.Join(cfgDir, "data")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	a := &app{
		settings:  settings,
		dataDir:   dir,
		configDir: cfgDir,
		states:    storagefile.NewStateStore(filepath.Join(dir, "state")),
		blobs:     blob.New(dir, driven.SystemClock{}),
		catalog:   storagefile.NewCatalogStore(filepath.Join(dir, "catalog.json")),
		texts:     storagefile.NewTextStore(filepath.Join(dir, "text")),
		shards:    storagefile.NewShardStore(filepath.Join(dir, "index")),
	}

	a.index, err = sqlite.NewIndex(dir, settings.Index.MinTokenLength)
	if err != nil {
		return nil, fmt.Errorf("open search index: %w", err)
	}

	jar, cookies := loadJar(settings.Ingest.CookieJarPath)
	a.hasJar = cookies > 0
	a.fetcher = fetch.NewClient(fetch.Options{
		UserAgent:   settings.Ingest.UserAgent,
		Timeout:     time.Duration(settings.Ingest.TimeoutSeconds) * time.Second,
		RetryMax:    settings.Ingest.RetryMax,
		BackoffBase: time.Duration(settings.Ingest.BackoffBaseSeconds * float64(time.Second)),
		BackoffCap:  time.Duration(settings.Ingest.BackoffCapSeconds * float64(time.Second)),
		Jar:         jar,
		TempDir:     filepath.Join(dir, "tmp"),
	})

	runner := ocr.NewRunner(&ocr.PopplerRenderer{}, &ocr.TesseractEngine{Languages: "eng"}, ocr.Options{
		MaxPages:            settings.Analysis.OCRMaxPages,
		Multipass:           true,
		EarlyExitConfidence: settings.Analysis.EarlyExitConfidence,
		PageTimeout:         time.Duration(settings.Analysis.OCRTimeoutSeconds) * time.Second,
		MinAlnumYield:       settings.Analysis.MinAlnumYield,
		DPI: ocr.DPIBands{
			Small:  settings.Analysis.DPISmall,
			Medium: settings.Analysis.DPIMedium,
			Large:  settings.Analysis.DPILarge,
			Max:    settings.Analysis.DPIMax,
		},
	})

	extractor := services.NewExtractPipeline(a.catalog, a.texts, runner, &metadata.Extractor{
		KnownNames:  settings.Analysis.KnownNames,
		KnownPlaces: settings.Analysis.KnownPlaces,
	})
	extractor.Tune(services.Tuning{
		Thresholds: analysis.Thresholds{
			ImageMaxChars:   settings.Analysis.ImageMaxChars,
			TextMinChars:    settings.Analysis.TextMinChars,
			DensityImageMax: settings.Analysis.DensityImageMax,
			DensityTextMin:  settings.Analysis.DensityTextMin,
		},
		OCRQualityThreshold: settings.Analysis.OCRQualityThreshold,
	})
	a.extractor = extractor

	builder := services.NewIndexBuilder(a.catalog, a.texts, a.shards, a.index, driven.SystemClock{})
	builder.SetContentCap(settings.Analysis.MaxContentChars)
	a.indexBuilder = builder
	a.validator = services.NewIntegrityChecker(a.catalog, a.blobs, a.texts, a.shards)
	a.search = services.NewSearchService(a.index)

	theApp = a
	return a, nil
}

// loadRegistry reads sources.yaml from the config directory.
func (a *app) loadRegistry() (*config.Registry, error) {
	if a.registry != nil {
		return a.registry, nil
	}
	reg, err := config.LoadRegistry(filepath.Join(a.configDir, "sources.yaml"))
	if err != nil {
		return nil, fmt.Errorf("load source registry: %w", err)
	}
	a.registry = reg
	return reg, nil
}

// newIngestor builds the coordinator over the registered sources.
func (a *app) newIngestor(watch bool) (driving.Ingestor, error) {
	if a.ingestor != nil {
		return a.ingestor, nil
	}
	reg, err := a.loadRegistry()
	if err != nil {
		return nil, err
	}
	factory := func(src domain.Source) (driven.SourceAdapter, error) {
		return sources.New(src, sources.Options{
			Client:    &http.Client{Timeout: 30 * time.Second},
			UserAgent: a.settings.Ingest.UserAgent,
			Watch:     watch,
		})
	}
	coord := services.NewIngestCoordinator(
		reg.Sources, factory, a.fetcher,
		a.states, a.blobs, a.catalog, driven.SystemClock{}, a.hasJar,
	)
	coord.SetRetryCooldown(time.Duration(a.settings.Ingest.FailedRetryCooldownMinutes) * time.Minute)
	a.ingestor = coord
	return a.ingestor, nil
}

// loadJar loads session cookies when a jar path is configured.
func loadJar(path string) (http.CookieJar, int) {
	if path == "" {
		return nil, 0
	}
	jar, n, err := fetch.LoadCookieJar(path, time.Now())
	if err != nil {
		logger.Warn("Cookie jar %s unusable: %v", path, err)
		return nil, 0
	}
	return jar, n
}
