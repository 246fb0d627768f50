package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/kbukum/graphx/logger"
)

// EnvPrefix prefixes environment overrides, e.g. GRAPHX_ENGINE_VERBOSE.
const EnvPrefix = "GRAPHX"

// FileSystem abstracts file lookups for testing.
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
	Home() (string, error)
}

type osFileSystem struct{}

func (osFileSystem) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func (osFileSystem) LoadEnv(path string) error { return godotenv.Load(path) }

func (osFileSystem) Home() (string, error) { return os.UserHomeDir() }

type loader struct {
	fs         FileSystem
	configFile string
	envFile    string
}

// LoaderOption customizes LoadConfig.
type LoaderOption func(*loader)

func WithFileSystem(fs FileSystem) LoaderOption {
	return func(l *loader) { l.fs = fs }
}

// WithConfigFile skips the search and reads path if it exists.
func WithConfigFile(path string) LoaderOption {
	return func(l *loader) { l.configFile = path }
}

// WithEnvFile skips the search and loads path if it exists.
func WithEnvFile(path string) LoaderOption {
	return func(l *loader) { l.envFile = path }
}

// LoadConfig fills cfg, a pointer to a struct with mapstructure tags. The
// YAML file is read first, then the .env file is loaded into the process
// environment, then every tagged key can be overridden by its GRAPHX_*
// variable (engine.release_memo by GRAPHX_ENGINE_RELEASE_MEMO).
func LoadConfig(name string, cfg any, opts ...LoaderOption) error {
	l := loader{fs: osFileSystem{}}
	for _, opt := range opts {
		opt(&l)
	}
	configFile, envFile := l.locate(name)
	log := logger.Get("config")

	v := viper.New()
	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config file %s: %w", configFile, err)
		}
		log.Debug("config file loaded", logger.Fields("path", configFile))
	}
	if envFile != "" {
		if err := l.fs.LoadEnv(envFile); err != nil {
			log.Warn("env file not loaded", logger.Fields("path", envFile, logger.FieldError, err.Error()))
		}
	}
	for _, key := range keysOf(reflect.TypeOf(cfg), "") {
		if err := v.BindEnv(key, envName(key)); err != nil {
			return fmt.Errorf("binding %s: %w", key, err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("decoding %s config: %w", name, err)
	}
	return nil
}

// locate returns the config and env files to read, either of which may be
// empty. Explicit paths win; a missing explicit path reads nothing.
func (l *loader) locate(name string) (configFile, envFile string) {
	if l.configFile != "" {
		configFile = l.existing(l.configFile)
	} else {
		configFile = l.existing(configCandidates(name, l.fs)...)
	}
	if l.envFile != "" {
		envFile = l.existing(l.envFile)
	} else {
		envFile = l.existing(".env."+name, ".env", filepath.Join("config", ".env"))
	}
	return configFile, envFile
}

func (l *loader) existing(paths ...string) string {
	for _, p := range paths {
		if l.fs.Exists(p) {
			return p
		}
	}
	return ""
}

// configCandidates is the search order: ./<name>.yml, ./config/<name>.yml,
// the same for config.yml, then ~/.config/<name>/config.yml.
func configCandidates(name string, fs FileSystem) []string {
	var paths []string
	for _, base := range []string{name, "config"} {
		for _, ext := range []string{".yml", ".yaml"} {
			paths = append(paths, "./"+base+ext, filepath.Join("config", base+ext))
		}
	}
	if home, err := fs.Home(); err == nil && home != "" {
		paths = append(paths, filepath.Join(home, ".config", name, "config.yml"))
	}
	return paths
}

// keysOf lists the dotted mapstructure keys of the leaf fields of t.
func keysOf(t reflect.Type, prefix string) []string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}
	var keys []string
	for i := range t.NumField() {
		f := t.Field(i)
		tag, _, _ := strings.Cut(f.Tag.Get("mapstructure"), ",")
		if tag == "" || tag == "-" || !f.IsExported() {
			continue
		}
		if f.Type.Kind() == reflect.Struct {
			keys = append(keys, keysOf(f.Type, prefix+tag+".")...)
			continue
		}
		keys = append(keys, prefix+tag)
	}
	return keys
}

func envName(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}
