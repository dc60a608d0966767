package file

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml/v2"
)

// Settings holds every tunable threshold of the pipeline. The numeric
// defaults mirror observed good values but none is load-bearing; all
// can be overridden from the TOML file.
type Settings struct {
	Ingest   IngestSettings   `toml:"ingest"`
	Analysis AnalysisSettings `toml:"analysis"`
	Index    IndexSettings    `toml:"index"`
}

// IngestSettings tune the ingestion coordinator.
type IngestSettings struct {
	// UserAgent is sent on every request.
	UserAgent string `toml:"user_agent"`

	// TimeoutSeconds is the per-request timeout.
	TimeoutSeconds int `toml:"timeout_seconds"`

	// RetryMax is the attempt ceiling per ref within one run.
	RetryMax int `toml:"retry_max"`

	// BackoffBaseSeconds is the first retry delay; each subsequent
	// retry doubles it up to BackoffCapSeconds.
	BackoffBaseSeconds float64 `toml:"backoff_base_seconds"`
	BackoffCapSeconds  float64 `toml:"backoff_cap_seconds"`

	// FailedRetryCooldownMinutes schedules next_retry_at for refs whose
	// in-run retries were exhausted.
	FailedRetryCooldownMinutes int `toml:"failed_retry_cooldown_minutes"`

	// CookieJarPath locates the external cookie jar for cookie-auth
	// sources. Netscape and JSON formats are accepted.
	CookieJarPath string `toml:"cookie_jar_path"`
}

// AnalysisSettings tune classification, quality scoring and OCR.
type AnalysisSettings struct {
	// ImageMaxChars is the embedded-text length below which a PDF is
	// classified image-only.
	ImageMaxChars int `toml:"image_max_chars"`

	// TextMinChars is the length above which a PDF is text-based,
	// subject to the density check.
	TextMinChars int `toml:"text_min_chars"`

	// DensityTextMin and DensityImageMax are chars-per-KB bounds for
	// the ambiguous band between the two length cutoffs.
	DensityTextMin  float64 `toml:"density_text_min"`
	DensityImageMax float64 `toml:"density_image_max"`

	// OCRQualityThreshold is the quality score below which an image
	// PDF goes to OCR.
	OCRQualityThreshold float64 `toml:"ocr_quality_threshold"`

	// OCRMaxPages caps pages rendered per document. Zero means all.
	OCRMaxPages int `toml:"ocr_max_pages"`

	// OCRTimeoutSeconds bounds one document's OCR work.
	OCRTimeoutSeconds int `toml:"ocr_timeout_seconds"`

	// DPISmall/Medium/Large are the adaptive DPI bands selected by
	// first-page pixel area; DPIMax is the unconditional ceiling.
	DPISmall  int `toml:"dpi_small"`
	DPIMedium int `toml:"dpi_medium"`
	DPILarge  int `toml:"dpi_large"`
	DPIMax    int `toml:"dpi_max"`

	// EarlyExitConfidence stops the multi-pass strategy search once a
	// pass scores at or above it.
	EarlyExitConfidence float64 `toml:"early_exit_confidence"`

	// MinAlnumYield is the alphanumeric character count below which a
	// pass triggers another strategy.
	MinAlnumYield int `toml:"min_alnum_yield"`

	// MaxContentChars caps the content carried into the search index.
	MaxContentChars int `toml:"max_content_chars"`

	// KnownNames and KnownPlaces extend the heuristic extractors with
	// archive-specific entities, matched on word boundaries.
	KnownNames  []string `toml:"known_names"`
	KnownPlaces []string `toml:"known_places"`
}

// IndexSettings tune the index builder.
type IndexSettings struct {
	// MinTokenLength drops shorter tokens from the token index.
	MinTokenLength int `toml:"min_token_length"`
}

// Defaults returns the settings used when no file overrides them.
func Defaults() Settings {
	return Settings{
		Ingest: IngestSettings{
			UserAgent:                  "papertrail/1.0 (research archive)",
			TimeoutSeconds:             120,
			RetryMax:                   3,
			BackoffBaseSeconds:         1.0,
			BackoffCapSeconds:          60.0,
			FailedRetryCooldownMinutes: 60,
		},
		Analysis: AnalysisSettings{
			ImageMaxChars:       100,
			TextMinChars:        1000,
			DensityTextMin:      15,
			DensityImageMax:     5,
			OCRQualityThreshold: 30,
			OCRMaxPages:         0,
			OCRTimeoutSeconds:   300,
			DPISmall:            200,
			DPIMedium:           250,
			DPILarge:            300,
			DPIMax:              300,
			EarlyExitConfidence: 85,
			MinAlnumYield:       40,
			MaxContentChars:     20000,
		},
		Index: IndexSettings{
			MinTokenLength: 2,
		},
	}
}

// SettingsStore loads and persists Settings from a TOML file.
type SettingsStore struct {
	mu       sync.RWMutex
	filePath string
	settings Settings
}

// NewSettingsStore creates a store rooted at configDir. If configDir is
// empty it defaults to ~/.papertrail. A missing file yields defaults.
func NewSettingsStore(configDir string) (*SettingsStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		configDir = filepath.Join(home, ".papertrail")
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, err
	}

	s := &SettingsStore{
		filePath: filepath.Join(configDir, "settings.toml"),
		settings: Defaults(),
	}

	if err := s.Load(); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	return s, nil
}

// Settings returns the current settings snapshot.
func (s *SettingsStore) Settings() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// Load reads the TOML file over the defaults.
func (s *SettingsStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			// No settings file yet - run on defaults
			s.settings = Defaults()
			return nil
		}
		return err
	}

	loaded := Defaults()
	if err := toml.Unmarshal(data, &loaded); err != nil {
		return err
	}
	// TOML decodes an empty array to a non-nil empty slice; keep the
	// nil form so loaded settings compare equal to Defaults().
	if len(loaded.Analysis.KnownNames) == 0 {
		loaded.Analysis.KnownNames = nil
	}
	if len(loaded.Analysis.KnownPlaces) == 0 {
		loaded.Analysis.KnownPlaces = nil
	}
	s.settings = loaded
	return nil
}

// Save persists the current settings to disk.
func (s *SettingsStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := toml.Marshal(s.settings)
	if err != nil {
		return err
	}
	return os.WriteFile(s.filePath, data, 0600)
}

// Path returns the settings file path.
func (s *SettingsStore) Path() string {
	return s.filePath
}
