package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// DefaultFile is read from the working directory when no file is given.
const DefaultFile = ".textlintls.toml"

// RunMode selects which document event triggers validation.
type RunMode string

const (
	RunOnType RunMode = "onType"
	RunOnSave RunMode = "onSave"
)

// Trace levels for $/logTrace notifications.
const (
	TraceOff      = "off"
	TraceMessages = "messages"
	TraceVerbose  = "verbose"
)

// CacheSettings controls the lint result cache.
type CacheSettings struct {
	Enabled bool          `toml:"enabled" json:"enabled"`
	Dir     string        `toml:"dir" json:"dir"`
	Size    int           `toml:"size" json:"size"`
	TTL     time.Duration `toml:"ttl" json:"ttl"`
}

// Settings drives the language server and the CLI.
type Settings struct {
	Run        RunMode       `toml:"run" json:"run"`
	ConfigPath string        `toml:"configPath" json:"configPath"`
	IgnorePath string        `toml:"ignorePath" json:"ignorePath"`
	NodePath   string        `toml:"nodePath" json:"nodePath"`
	TargetPath string        `toml:"targetPath" json:"targetPath"`
	Trace      string        `toml:"trace" json:"trace"`
	Extensions []string      `toml:"extensions" json:"extensions"`
	Cache      CacheSettings `toml:"cache" json:"cache"`
}

// Default returns the built-in settings.
func Default() Settings {
	return Settings{
		Run:   RunOnType,
		Trace: TraceOff,
		Cache: CacheSettings{
			Size: 256,
			TTL:  10 * time.Minute,
		},
	}
}

// envKeys maps setting keys to their flag names.
var envKeys = map[string]string{
	"run":        "run",
	"configPath": "textlint-config",
	"ignorePath": "ignore-path",
	"nodePath":   "node-path",
	"targetPath": "target-path",
	"trace":      "trace",
}

// Load reads settings from defaults, the TOML file at path (or DefaultFile
// when present), TEXTLINTLS_* environment variables and changed flags, in
// increasing precedence.
func Load(path string, flags *pflag.FlagSet) (Settings, error) {
	s := Default()
	if path == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			path = DefaultFile
		}
	}
	if path != "" {
		if _, err := toml.DecodeFile(path, &s); err != nil {
			return s, fmt.Errorf("read %s: %w", path, err)
		}
	}

	v := viper.New()
	for key, flag := range envKeys {
		if err := v.BindEnv(key, "TEXTLINTLS_"+envName(key)); err != nil {
			return s, err
		}
		if flags == nil {
			continue
		}
		if f := flags.Lookup(flag); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return s, err
			}
		}
	}
	override := func(key string, dst *string) {
		if v.IsSet(key) {
			*dst = v.GetString(key)
		}
	}
	var run string
	override("run", &run)
	if run != "" {
		s.Run = RunMode(run)
	}
	override("configPath", &s.ConfigPath)
	override("ignorePath", &s.IgnorePath)
	override("nodePath", &s.NodePath)
	override("targetPath", &s.TargetPath)
	override("trace", &s.Trace)

	return s, s.Validate()
}

func envName(key string) string {
	var b strings.Builder
	for i, r := range key {
		if r >= 'A' && r <= 'Z' && i > 0 {
			b.WriteByte('_')
		}
		b.WriteRune(r)
	}
	return strings.ToUpper(b.String())
}

// Validate reports settings the server cannot honour.
func (s Settings) Validate() error {
	var errs []error
	switch s.Run {
	case RunOnType, RunOnSave:
	default:
		errs = append(errs, fmt.Errorf("invalid run mode %q: must be %q or %q", s.Run, RunOnType, RunOnSave))
	}
	switch s.Trace {
	case TraceOff, TraceMessages, TraceVerbose:
	default:
		errs = append(errs, fmt.Errorf("invalid trace level %q", s.Trace))
	}
	if s.Cache.Size < 0 {
		errs = append(errs, errors.New("cache size must not be negative"))
	}
	return errors.Join(errs...)
}

// client is the shape of the "textlint" settings section sent by editors.
// Absent fields leave the current value untouched.
type client struct {
	Run        *string  `json:"run"`
	ConfigPath *string  `json:"configPath"`
	IgnorePath *string  `json:"ignorePath"`
	NodePath   *string  `json:"nodePath"`
	TargetPath *string  `json:"targetPath"`
	Trace      *string  `json:"trace"`
	Extensions []string `json:"extensions"`
}

// Merge overlays editor-provided JSON settings onto s. Invalid values are
// rejected as a whole and s is returned unchanged.
func (s Settings) Merge(raw json.RawMessage) (Settings, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return s, nil
	}
	var c client
	if err := json.Unmarshal(raw, &c); err != nil {
		return s, fmt.Errorf("decode settings: %w", err)
	}
	next := s
	set := func(src *string, dst *string) {
		if src != nil {
			*dst = *src
		}
	}
	if c.Run != nil {
		next.Run = RunMode(*c.Run)
	}
	set(c.ConfigPath, &next.ConfigPath)
	set(c.IgnorePath, &next.IgnorePath)
	set(c.NodePath, &next.NodePath)
	set(c.TargetPath, &next.TargetPath)
	set(c.Trace, &next.Trace)
	if c.Extensions != nil {
		next.Extensions = c.Extensions
	}
	if err := next.Validate(); err != nil {
		return s, err
	}
	return next, nil
}
