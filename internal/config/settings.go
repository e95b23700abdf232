package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Settings holds the runtime configuration that is not compiled in.
// It is read from an optional YAML file and then overridden by QUICKEVENT_*
// environment variables (a .env file is loaded into the environment by main).
type Settings struct {
	Language  string            `yaml:"language"`
	Server    ServerSettings    `yaml:"server"`
	Directory DirectorySettings `yaml:"directory"`
	CalDAV    CalDAVSettings    `yaml:"caldav"`
	NLP       NLPSettings       `yaml:"nlp"`
}

type ServerSettings struct {
	BindAddr string `yaml:"bind_addr"`
	Port     string `yaml:"port"`
}

// DirectorySettings locates the vCard address book used to turn names into attendees.
type DirectorySettings struct {
	Mode      string `yaml:"mode"` // SourceModeLocal, SourceModeWeb or empty (disabled)
	LocalPath string `yaml:"local_path"`
	URL       string `yaml:"url"`
	User      string `yaml:"user"`
	Password  string `yaml:"-"` // keyring or environment only
}

// CalDAVSettings configures optional publishing of resolved events.
type CalDAVSettings struct {
	Endpoint string `yaml:"endpoint"`
	User     string `yaml:"user"`
	Calendar string `yaml:"calendar"`
	Password string `yaml:"-"` // keyring or environment only
}

type NLPSettings struct {
	GrammarFile string `yaml:"grammar_file"`
}

// Environment variable names (without EnvPrefix).
const (
	EnvLanguage          = "LANGUAGE"
	EnvBindAddr          = "BIND_ADDR"
	EnvPort              = "PORT"
	EnvDirectoryMode     = "DIRECTORY_MODE"
	EnvDirectoryPath     = "DIRECTORY_PATH"
	EnvDirectoryURL      = "DIRECTORY_URL"
	EnvDirectoryUser     = "DIRECTORY_USER"
	EnvDirectoryPassword = "DIRECTORY_PASSWORD"
	EnvCalDAVEndpoint    = "CALDAV_URL"
	EnvCalDAVUser        = "CALDAV_USER"
	EnvCalDAVPassword    = "CALDAV_PASSWORD"
	EnvCalDAVCalendar    = "CALDAV_CALENDAR"
	EnvGrammarFile       = "GRAMMAR_FILE"
)

// Load reads the settings file at path (skipped when path is empty) and applies
// environment overrides.
func Load(path string) (*Settings, error) {
	return LoadWithEnv(path, os.LookupEnv)
}

// LoadWithEnv is Load with an injectable environment lookup.
func LoadWithEnv(path string, lookup func(string) (string, bool)) (*Settings, error) {
	var s Settings
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ErrConfigRead, err)
		}
		if err := yaml.Unmarshal(b, &s); err != nil {
			return nil, fmt.Errorf("%s: %w", ErrConfigParse, err)
		}
	}

	env := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok && v != "" {
			*dst = v
		}
	}
	env(EnvLanguage, &s.Language)
	env(EnvBindAddr, &s.Server.BindAddr)
	env(EnvPort, &s.Server.Port)
	env(EnvDirectoryMode, &s.Directory.Mode)
	env(EnvDirectoryPath, &s.Directory.LocalPath)
	env(EnvDirectoryURL, &s.Directory.URL)
	env(EnvDirectoryUser, &s.Directory.User)
	env(EnvDirectoryPassword, &s.Directory.Password)
	env(EnvCalDAVEndpoint, &s.CalDAV.Endpoint)
	env(EnvCalDAVUser, &s.CalDAV.User)
	env(EnvCalDAVPassword, &s.CalDAV.Password)
	env(EnvCalDAVCalendar, &s.CalDAV.Calendar)
	env(EnvGrammarFile, &s.NLP.GrammarFile)

	// Defaults
	if s.Language == "" {
		s.Language = DefaultLanguage
	}
	if s.Server.BindAddr == "" {
		s.Server.BindAddr = LocalhostBindAddr
	}
	if s.Server.Port == "" {
		s.Server.Port = DefaultPort
	}
	return &s, nil
}

// PublishingEnabled reports whether enough CalDAV settings are present to publish.
func (s *Settings) PublishingEnabled() bool {
	return s.CalDAV.Endpoint != "" && s.CalDAV.Calendar != ""
}
