package cfg

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"disease-predictor/internal/common"
	"disease-predictor/internal/domain"
)

type Settings struct {
	ArtifactDir       string
	ArtifactBackend   string
	BoltPath          string
	ListenPort        int
	RequestTimeout    time.Duration
	ClassifierTimeout time.Duration
	Preload           []domain.ID
	LogLevel          string
	LogFormat         string
}

type ConfigFile struct {
	Artifacts struct {
		Dir      string `yaml:"dir"`
		Backend  string `yaml:"backend"`
		BoltPath string `yaml:"boltPath"`
	} `yaml:"artifacts"`

	Server struct {
		Port           int    `yaml:"port"`
		RequestTimeout string `yaml:"requestTimeout"`
	} `yaml:"server"`

	ML struct {
		ClassifierTimeout string   `yaml:"classifierTimeout"`
		Preload           []string `yaml:"preload"`
	} `yaml:"ml"`

	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

// Load reads a .env file when present, then settings from CONFIG_FILE (with
// environment overrides) or from the environment alone.
func Load() (Settings, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Settings{}, fmt.Errorf("failed to load .env: %w", err)
	}

	// Try to load from YAML file first
	if configPath := os.Getenv(common.EnvConfigFile); configPath != "" {
		return loadFromYAML(configPath)
	}

	// Fallback to environment variables
	return loadFromEnv()
}

func loadFromYAML(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var config ConfigFile
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Settings{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	requestTimeout, err := parseDurationOr(config.Server.RequestTimeout, common.DefaultRequestTimeout)
	if err != nil {
		return Settings{}, fmt.Errorf("server.requestTimeout: %w", err)
	}
	classifierTimeout, err := parseDurationOr(config.ML.ClassifierTimeout, common.DefaultClassifierTimeout)
	if err != nil {
		return Settings{}, fmt.Errorf("ml.classifierTimeout: %w", err)
	}

	preload := config.ML.Preload
	if env := os.Getenv(common.EnvPreload); env != "" {
		preload = splitList(env)
	}
	ids, err := parsePreload(preload)
	if err != nil {
		return Settings{}, err
	}

	// Override with environment variables if they exist
	settings := Settings{
		ArtifactDir:       getEnvOrDefault(common.EnvArtifactDir, orDefault(config.Artifacts.Dir, common.DefaultArtifactDir)),
		ArtifactBackend:   getEnvOrDefault(common.EnvArtifactBackend, orDefault(config.Artifacts.Backend, common.DefaultArtifactBackend)),
		BoltPath:          getEnvOrDefault(common.EnvBoltPath, orDefault(config.Artifacts.BoltPath, common.DefaultBoltPath)),
		ListenPort:        getIntFromEnvOrConfig(common.EnvListenPort, config.Server.Port, common.DefaultListenPort),
		RequestTimeout:    getDurationOrDefault(common.EnvRequestTimeout, requestTimeout),
		ClassifierTimeout: getDurationOrDefault(common.EnvClassifierTimeout, classifierTimeout),
		Preload:           ids,
		LogLevel:          getEnvOrDefault(common.EnvLogLevel, orDefault(config.Log.Level, common.DefaultLogLevel)),
		LogFormat:         getEnvOrDefault(common.EnvLogFormat, orDefault(config.Log.Format, common.DefaultLogFormat)),
	}

	// Validate configuration
	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}

	return settings, nil
}

func loadFromEnv() (Settings, error) {
	ids, err := parsePreload(splitList(os.Getenv(common.EnvPreload)))
	if err != nil {
		return Settings{}, err
	}

	settings := Settings{
		ArtifactDir:       getEnvOrDefault(common.EnvArtifactDir, common.DefaultArtifactDir),
		ArtifactBackend:   getEnvOrDefault(common.EnvArtifactBackend, common.DefaultArtifactBackend),
		BoltPath:          getEnvOrDefault(common.EnvBoltPath, common.DefaultBoltPath),
		ListenPort:        getIntOrDefault(common.EnvListenPort, common.DefaultListenPort),
		RequestTimeout:    getDurationOrDefault(common.EnvRequestTimeout, common.DefaultRequestTimeout),
		ClassifierTimeout: getDurationOrDefault(common.EnvClassifierTimeout, common.DefaultClassifierTimeout),
		Preload:           ids,
		LogLevel:          getEnvOrDefault(common.EnvLogLevel, common.DefaultLogLevel),
		LogFormat:         getEnvOrDefault(common.EnvLogFormat, common.DefaultLogFormat),
	}

	// Validate configuration
	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}

	return settings, nil
}

// Validate re-checks settings after callers override fields, e.g. from
// command line flags.
func (s *Settings) Validate() error {
	return validateSettings(s)
}

// parsePreload resolves domain names; "all" selects every domain.
func parsePreload(names []string) ([]domain.ID, error) {
	var ids []domain.ID
	for _, name := range names {
		if strings.EqualFold(name, common.PreloadAll) {
			ids = ids[:0]
			for _, d := range domain.All() {
				ids = append(ids, d.ID)
			}
			return ids, nil
		}
		id, err := domain.Parse(name)
		if err != nil {
			return nil, fmt.Errorf("preload: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func orDefault(v, defaultValue string) string {
	if v != "" {
		return v
	}
	return defaultValue
}

func parseDurationOr(v string, defaultValue time.Duration) (time.Duration, error) {
	if v == "" {
		return defaultValue, nil
	}
	return time.ParseDuration(v)
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultValue
}

func getIntFromEnvOrConfig(key string, configValue, defaultValue int) int {
	if env := os.Getenv(key); env != "" {
		if val, err := strconv.Atoi(env); err == nil {
			return val
		}
	}
	if configValue != 0 {
		return configValue
	}
	return defaultValue
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// validateSettings performs comprehensive validation of configuration values
func validateSettings(settings *Settings) error {
	// Validate artifact store
	switch settings.ArtifactBackend {
	case common.BackendFS:
		if settings.ArtifactDir == "" {
			return errors.New(common.ErrMsgArtifactDirRequired)
		}
	case common.BackendBolt:
		if settings.BoltPath == "" {
			return errors.New(common.ErrMsgBoltPathRequired)
		}
	default:
		return fmt.Errorf("artifact backend must be %q or %q, got %q", common.BackendFS, common.BackendBolt, settings.ArtifactBackend)
	}

	// Validate listen port
	if settings.ListenPort < common.MinListenPort || settings.ListenPort > common.MaxListenPort {
		return fmt.Errorf("listen port must be between %d and %d, got %d", common.MinListenPort, common.MaxListenPort, settings.ListenPort)
	}

	// Validate time durations
	if settings.RequestTimeout < common.MinRequestTimeout || settings.RequestTimeout > common.MaxRequestTimeout {
		return fmt.Errorf("request timeout must be between %v and %v, got %v", common.MinRequestTimeout, common.MaxRequestTimeout, settings.RequestTimeout)
	}
	if settings.ClassifierTimeout < common.MinClassifierTimeout || settings.ClassifierTimeout > settings.RequestTimeout {
		return fmt.Errorf("classifier timeout must be between %v and the request timeout %v, got %v",
			common.MinClassifierTimeout, settings.RequestTimeout, settings.ClassifierTimeout)
	}

	// Validate logging
	if _, err := zerolog.ParseLevel(settings.LogLevel); err != nil || settings.LogLevel == "" {
		return fmt.Errorf("invalid log level %q", settings.LogLevel)
	}
	if settings.LogFormat != common.LogFormatJSON && settings.LogFormat != common.LogFormatConsole {
		return fmt.Errorf("log format must be %q or %q, got %q", common.LogFormatJSON, common.LogFormatConsole, settings.LogFormat)
	}

	return nil
}
