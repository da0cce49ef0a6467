package core

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/viper"
)

const (
	configName      = "relmv"
	configType      = "yaml"
	envPrefix       = "RELMV"
	envKeySeparator = "_"
)

// Defaults.
const (
	DefaultGitignore      = true
	DefaultMaxFileSize    = "8MiB"
	DefaultOutgoing       = false
	DefaultMarkdownCode   = false
	DefaultJournalEnabled = true
	DefaultLogLevel       = "info"
)

// DefaultIgnoreDirs are directory names never descended into while scanning.
var DefaultIgnoreDirs = []string{".git", ".hg", ".svn", ".direnv", "node_modules", "result", "target"}

// Config represents the relmv.yaml configuration file.
type Config struct {
	Scan    ScanConfig    `mapstructure:"scan"`
	Rewrite RewriteConfig `mapstructure:"rewrite"`
	Journal JournalConfig `mapstructure:"journal"`
	Log     LogConfig     `mapstructure:"log"`
}

// ScanConfig controls which files are candidates for rewriting.
type ScanConfig struct {
	IgnoreDirs  []string `mapstructure:"ignore_dirs"`
	Exclude     []string `mapstructure:"exclude"`
	Extensions  []string `mapstructure:"extensions"`
	Gitignore   bool     `mapstructure:"gitignore"`
	MaxFileSize string   `mapstructure:"max_file_size"` // e.g. "8MiB"; empty or "0" disables the limit
}

// RewriteConfig controls reference rewriting.
type RewriteConfig struct {
	Outgoing bool `mapstructure:"outgoing"`
	// MarkdownCode also rewrites references inside markdown code blocks and
	// code spans. Off by default: code samples are left as written.
	MarkdownCode bool `mapstructure:"markdown_code"`
	// Languages maps a file extension (without the dot) to a parser name.
	Languages map[string]string `mapstructure:"languages"`
}

// JournalConfig controls the audit journal of applied edits.
type JournalConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// LogConfig controls diagnostic logging.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Scan: ScanConfig{
			IgnoreDirs:  append([]string(nil), DefaultIgnoreDirs...),
			Gitignore:   DefaultGitignore,
			MaxFileSize: DefaultMaxFileSize,
		},
		Rewrite: RewriteConfig{Outgoing: DefaultOutgoing, MarkdownCode: DefaultMarkdownCode, Languages: map[string]string{}},
		Journal: JournalConfig{Enabled: DefaultJournalEnabled},
		Log:     LogConfig{Level: DefaultLogLevel},
	}
}

// LoadConfig loads configuration from file, env vars and defaults.
// If configPath is non-empty it is used as the explicit config file path;
// otherwise relmv.yaml is looked up in the project root.
// A missing relmv.yaml is not an error.
func LoadConfig(root, configPath string) (*Config, error) {
	v := viper.New()

	applyDefaults(v)

	v.SetConfigType(configType)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", envKeySeparator))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName(configName)
		v.AddConfigPath(root)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

func applyDefaults(v *viper.Viper) {
	v.SetDefault("scan.ignore_dirs", DefaultIgnoreDirs)
	v.SetDefault("scan.exclude", []string{})
	v.SetDefault("scan.extensions", []string{})
	v.SetDefault("scan.gitignore", DefaultGitignore)
	v.SetDefault("scan.max_file_size", DefaultMaxFileSize)
	v.SetDefault("rewrite.outgoing", DefaultOutgoing)
	v.SetDefault("rewrite.markdown_code", DefaultMarkdownCode)
	v.SetDefault("rewrite.languages", map[string]string{})
	v.SetDefault("journal.enabled", DefaultJournalEnabled)
	v.SetDefault("log.level", DefaultLogLevel)
}

// Validate checks the configuration for unsupported values.
func (c *Config) Validate() error {
	if err := validateGlobPatterns(c.Scan.Exclude); err != nil {
		return err
	}
	if _, err := c.Scan.maxBytes(); err != nil {
		return err
	}
	for ext, lang := range c.Rewrite.Languages {
		if !isSupportedLanguage(lang) {
			return fmt.Errorf("rewrite.languages: unknown language %q for extension %q", lang, ext)
		}
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// maxBytes parses MaxFileSize. Zero means no limit.
func (c *ScanConfig) maxBytes() (int64, error) {
	raw := strings.TrimSpace(c.MaxFileSize)
	if raw == "" {
		return 0, nil
	}
	n, err := humanize.ParseBytes(raw)
	if err != nil {
		return 0, fmt.Errorf("scan.max_file_size: %w", err)
	}
	return int64(n), nil
}

// languageOverrides returns the extension overrides keyed by ".ext".
func (c *RewriteConfig) languageOverrides() map[string]string {
	out := make(map[string]string, len(c.Languages))
	for ext, lang := range c.Languages {
		ext = strings.ToLower(strings.TrimPrefix(ext, "."))
		out["."+ext] = lang
	}
	return out
}

// SlogLevel parses the configured level name.
func (c LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if c.Level == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}

// validateGlobPatterns checks that none of the patterns use unsupported character classes.
func validateGlobPatterns(patterns []string) error {
	for _, p := range patterns {
		if strings.Contains(p, "[") {
			return fmt.Errorf("unsupported glob pattern (character class): %s", p)
		}
	}
	return nil
}

// matchesAny reports whether path matches one of the glob patterns.
func matchesAny(patterns []string, path string) bool {
	for _, p := range patterns {
		if globMatch(p, path) {
			return true
		}
	}
	return false
}

// globMatch implements SQLite GLOB semantics in Go.
// '*' matches any sequence of characters (including '/').
// '?' matches exactly one character.
// '[' is treated as a literal character (character classes not supported).
func globMatch(pattern, s string) bool {
	return globMatchImpl([]rune(pattern), []rune(s))
}

func globMatchImpl(pattern, s []rune) bool {
	for len(pattern) > 0 {
		switch pattern[0] {
		case '*':
			for len(pattern) > 0 && pattern[0] == '*' {
				pattern = pattern[1:]
			}
			if len(pattern) == 0 {
				return true
			}
			for i := 0; i <= len(s); i++ {
				if globMatchImpl(pattern, s[i:]) {
					return true
				}
			}
			return false
		case '?':
			if len(s) == 0 {
				return false
			}
			pattern = pattern[1:]
			s = s[1:]
		default:
			if len(s) == 0 || pattern[0] != s[0] {
				return false
			}
			pattern = pattern[1:]
			s = s[1:]
		}
	}
	return len(s) == 0
}
