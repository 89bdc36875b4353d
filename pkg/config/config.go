// Package config loads the chat client settings from an INI file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/ini.v1"

	loggerpkg "github.com/minhyannv/delta-chat-go/pkg/logger"
)

const (
	// DefaultPath is the settings file read when no other path is given.
	DefaultPath = "config.ini"
	// DefaultModel is used when the API section has no model key.
	DefaultModel = "Qwen/Qwen2.5-VL-72B-Instruct"
	// DefaultCourseName is the project tag sent with every request.
	DefaultCourseName = "Delta-Documentation"

	sectionAPI = "API"
	keyAPIKey  = "api_key"
	keyModel   = "model"
	keyCourse  = "course_name"
)

// Environment variables that override file values.
const (
	EnvAPIKey     = "UIUC_API_KEY"
	EnvModel      = "UIUC_MODEL"
	EnvCourseName = "UIUC_COURSE_NAME"
)

// ErrMissingKey is wrapped by every MissingKeyError.
var ErrMissingKey = errors.New("missing key")

// MissingKeyError names the section and key that were required but absent.
type MissingKeyError struct {
	Path    string
	Section string
	Key     string
}

func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("config %s: missing key %q in section [%s]", e.Path, e.Key, e.Section)
}

func (e *MissingKeyError) Unwrap() error { return ErrMissingKey }

// Config is the resolved, immutable runtime configuration.
type Config struct {
	APIKey     string
	Model      string
	CourseName string
}

// LogFields returns the configuration with the API key masked.
func (c Config) LogFields() map[string]any {
	return map[string]any{
		"api_key":     loggerpkg.Redact(c.APIKey),
		"model":       c.Model,
		"course_name": c.CourseName,
	}
}

// File is a parsed settings file. Lookups of required keys fail at the point of use.
type File struct {
	path  string
	v     *viper.Viper
	found bool
}

// Option configures Load.
type Option func(*loadOptions)

type loadOptions struct {
	logger loggerpkg.Logger
	env    bool
}

// WithLogger injects a logger dependency.
func WithLogger(l loggerpkg.Logger) Option {
	return func(o *loadOptions) {
		o.logger = l
	}
}

// WithoutEnv disables the UIUC_* environment overrides.
func WithoutEnv() Option {
	return func(o *loadOptions) {
		o.env = false
	}
}

// Load parses the INI file at path. A missing file yields an empty configuration,
// not an error; any other read or parse failure is returned.
func Load(path string, opts ...Option) (*File, error) {
	o := loadOptions{logger: loggerpkg.NopLogger{}, env: true}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	o.logger = loggerpkg.OrNop(o.logger)

	if strings.TrimSpace(path) == "" {
		path = DefaultPath
	}

	v := viper.NewWithOptions(viper.IniLoadOptions(iniLoadOptions))
	v.SetConfigType("ini")
	if o.env {
		_ = v.BindEnv(viperKey(keyAPIKey), EnvAPIKey)
		_ = v.BindEnv(viperKey(keyModel), EnvModel)
		_ = v.BindEnv(viperKey(keyCourse), EnvCourseName)
	}

	f := &File{path: path, v: v, found: true}
	raw, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		f.found = false
		o.logger.Warn("config file not found, continuing with empty configuration", map[string]any{
			"path": path,
		})
	} else {
		hasSection, err := hasExactSection(raw, sectionAPI)
		if err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
		if !hasSection {
			// viper folds section names to lower case; [api] must not stand in for [API].
			o.logger.Warn("config section not found, ignoring file values", map[string]any{
				"path":    path,
				"section": sectionAPI,
			})
		} else if err := v.ReadConfig(bytes.NewReader(raw)); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	o.logger.Debug("config loaded", map[string]any{
		"path":  path,
		"found": f.found,
	})
	return f, nil
}

// Path returns the file path the configuration was read from.
func (f *File) Path() string { return f.path }

// Found reports whether the settings file existed.
func (f *File) Found() bool { return f.found }

// APIKey returns api_key from the API section or a *MissingKeyError.
func (f *File) APIKey() (string, error) {
	key := strings.TrimSpace(f.v.GetString(viperKey(keyAPIKey)))
	if key == "" {
		return "", &MissingKeyError{Path: f.path, Section: sectionAPI, Key: keyAPIKey}
	}
	return key, nil
}

// Model returns model from the API section, or DefaultModel.
func (f *File) Model() string {
	return f.stringOr(keyModel, DefaultModel)
}

// CourseName returns course_name from the API section, or DefaultCourseName.
func (f *File) CourseName() string {
	return f.stringOr(keyCourse, DefaultCourseName)
}

// Resolve validates required keys and returns the immutable Config.
func (f *File) Resolve() (Config, error) {
	apiKey, err := f.APIKey()
	if err != nil {
		return Config{}, err
	}
	return Config{
		APIKey:     apiKey,
		Model:      f.Model(),
		CourseName: f.CourseName(),
	}, nil
}

func (f *File) stringOr(key, fallback string) string {
	if value := strings.TrimSpace(f.v.GetString(viperKey(key))); value != "" {
		return value
	}
	return fallback
}

// iniLoadOptions keep values verbatim: "#" and ";" after a value are part of it,
// and surrounding quotes are not stripped.
var iniLoadOptions = ini.LoadOptions{
	IgnoreInlineComment:       true,
	UnescapeValueDoubleQuotes: false,
	PreserveSurroundedQuote:   true,
}

// hasExactSection reports whether raw declares section with exactly that case.
func hasExactSection(raw []byte, section string) (bool, error) {
	parsed, err := ini.LoadSources(iniLoadOptions, raw)
	if err != nil {
		return false, err
	}
	return slices.Contains(parsed.SectionStrings(), section), nil
}

// viperKey maps a key in the API section to viper's lower-cased dotted form.
func viperKey(key string) string {
	return strings.ToLower(sectionAPI) + "." + key
}
