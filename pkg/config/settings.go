package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/japaniel/vocabreader/pkg/paging"
	"github.com/japaniel/vocabreader/pkg/readerer"
	"github.com/japaniel/vocabreader/pkg/render"
)

// Storage backends.
const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
)

const (
	DefaultTimeout = 10 * time.Second
	DefaultWorkers = 4
)

// Settings is the resolved configuration with defaults applied.
type Settings struct {
	Backend      string
	StoragePath  string
	WordsPerPage int
	Lang         readerer.Language
	Highlight    render.Mode
	Width        int

	DictEndpoint string
	DictTimeout  time.Duration
	DictWorkers  int
	DictFile     string
	DictSource   string
	Offline      bool
}

// Defaults returns the settings used when nothing is configured.
func Defaults() Settings {
	return Settings{
		Backend:      BackendSQLite,
		StoragePath:  DefaultDBPath(),
		WordsPerPage: paging.DefaultWordsPerPage,
		Lang:         readerer.English,
		Highlight:    render.Discrete,
		DictTimeout:  DefaultTimeout,
		DictWorkers:  DefaultWorkers,
		DictFile:     DefaultDictionaryPath(),
	}
}

// Resolve applies the file values over Defaults and validates the result.
func Resolve(fc FileConfig) (Settings, error) {
	s := Defaults()

	if v := fc.Storage.Backend; v != nil {
		s.Backend = strings.ToLower(strings.TrimSpace(*v))
		if s.Backend == BackendFile {
			s.StoragePath = DefaultStateDir()
		}
	}
	if v := fc.Storage.Path; v != nil && *v != "" {
		s.StoragePath = *v
	}
	if v := fc.Reading.WordsPerPage; v != nil {
		s.WordsPerPage = *v
	}
	if v := fc.Reading.Width; v != nil {
		s.Width = *v
	}
	if v := fc.Reading.Lang; v != nil {
		lang, err := readerer.ParseLanguage(*v)
		if err != nil {
			return Settings{}, err
		}
		s.Lang = lang
	}
	if v := fc.Reading.Highlight; v != nil {
		mode, err := render.ParseMode(*v)
		if err != nil {
			return Settings{}, err
		}
		s.Highlight = mode
	}
	if v := fc.Dictionary.Endpoint; v != nil {
		s.DictEndpoint = *v
	}
	if v := fc.Dictionary.Timeout; v != nil {
		d, err := time.ParseDuration(*v)
		if err != nil {
			return Settings{}, fmt.Errorf("invalid dictionary timeout %q: %w", *v, err)
		}
		s.DictTimeout = d
	}
	if v := fc.Dictionary.Workers; v != nil {
		s.DictWorkers = *v
	}
	if v := fc.Dictionary.File; v != nil && *v != "" {
		s.DictFile = *v
	}
	if v := fc.Dictionary.Source; v != nil {
		s.DictSource = *v
	}
	if v := fc.Dictionary.Offline; v != nil {
		s.Offline = *v
	}

	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate reports the first invalid setting.
func (s Settings) Validate() error {
	if s.Backend != BackendSQLite && s.Backend != BackendFile {
		return fmt.Errorf("storage backend must be %q or %q, got %q", BackendSQLite, BackendFile, s.Backend)
	}
	if s.WordsPerPage <= 0 {
		return fmt.Errorf("words-per-page must be > 0")
	}
	if s.Width < 0 {
		return fmt.Errorf("width must be >= 0")
	}
	if s.DictTimeout <= 0 {
		return fmt.Errorf("dictionary timeout must be > 0")
	}
	if s.DictWorkers <= 0 {
		return fmt.Errorf("dictionary workers must be > 0")
	}
	return nil
}

// Template returns a commented config file listing every key with its default.
func Template() string {
	d := Defaults()
	return fmt.Sprintf(`# vocabreader configuration
# Uncomment a value to enable it. CLI flags override config values.

[storage]
# backend = %q            # "sqlite" or "file"
# path = %q

[reading]
# words-per-page = %d
# lang = %q
# highlight = %q          # "discrete" or "continuous"
# width = 0                # wrap plain output at this width (0 = terminal width)

[dictionary]
# endpoint = %q
# timeout = %q
# workers = %d
# file = %q               # offline dictionary (JSON)
# source = ""              # URL to download the offline dictionary from
# offline = false          # never call the remote dictionary
`,
		d.Backend,
		d.StoragePath,
		d.WordsPerPage,
		string(d.Lang),
		string(d.Highlight),
		"https://api.dictionaryapi.dev/api/v2/entries/en/",
		d.DictTimeout.String(),
		d.DictWorkers,
		d.DictFile,
	)
}
