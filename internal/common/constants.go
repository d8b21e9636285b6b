package common

import "time"

// Environment variable keys
const (
	EnvConfigFile        = "CONFIG_FILE"
	EnvArtifactDir       = "ARTIFACT_DIR"
	EnvArtifactBackend   = "ARTIFACT_BACKEND"
	EnvBoltPath          = "BOLT_PATH"
	EnvListenPort        = "LISTEN_PORT"
	EnvRequestTimeout    = "REQUEST_TIMEOUT"
	EnvClassifierTimeout = "CLASSIFIER_TIMEOUT"
	EnvPreload           = "PRELOAD"
	EnvLogLevel          = "LOG_LEVEL"
	EnvLogFormat         = "LOG_FORMAT"
)

// Artifact store backends
const (
	BackendFS   = "fs"
	BackendBolt = "bolt"
)

// Log formats
const (
	LogFormatJSON    = "json"
	LogFormatConsole = "console"
)

// PreloadAll in PRELOAD selects every domain.
const PreloadAll = "all"

// Configuration defaults
const (
	DefaultArtifactDir       = "models"
	DefaultArtifactBackend   = BackendFS
	DefaultBoltPath          = "data"
	DefaultListenPort        = 8080
	DefaultRequestTimeout    = 10 * time.Second
	DefaultClassifierTimeout = 5 * time.Second
	DefaultLogLevel          = "info"
	DefaultLogFormat         = LogFormatJSON
)

// Common error messages
const (
	ErrMsgArtifactDirRequired = "artifact directory is required for the fs backend"
	ErrMsgBoltPathRequired    = "bolt path is required for the bolt backend"
)

// Validation constants
const (
	MinListenPort        = 1024
	MaxListenPort        = 65535
	MinRequestTimeout    = time.Second
	MaxRequestTimeout    = 5 * time.Minute
	MinClassifierTimeout = 100 * time.Millisecond
)
