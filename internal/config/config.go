package config

import (
	_ "embed"
	"os"
	"strconv"

	"github.com/kozaktomas/facegate/internal/constants"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

type Config struct {
	AWS        AWSConfig        `yaml:"aws"`
	FaceSearch FaceSearchConfig `yaml:"face_search"`
	Identity   IdentityConfig   `yaml:"identity"`
	Messages   MessagesConfig   `yaml:"messages"`
	Serial     SerialConfig     `yaml:"serial"`
	Upload     UploadConfig     `yaml:"-"`
	Image      ImageConfig      `yaml:"-"`
	Log        LogConfig        `yaml:"-"`
	Web        WebConfig        `yaml:"-"`
}

type AWSConfig struct {
	Region   string `yaml:"region"`
	Endpoint string `yaml:"-"` // optional endpoint override (e.g. localstack)
}

type FaceSearchConfig struct {
	CollectionID   string  `yaml:"collection_id"`
	MatchThreshold float64 `yaml:"match_threshold"` // minimum similarity 0-100
	MaxMatches     int     `yaml:"max_matches"`
}

type IdentityConfig struct {
	Table string `yaml:"table"` // items keyed by RekognitionId, name in FullName
}

// MessagesConfig holds the result lines rendered on the form page.
// Found and FoundWithAccess are fmt format strings.
type MessagesConfig struct {
	Found           string `yaml:"found"`
	FoundWithAccess string `yaml:"found_with_access"`
	AccessNote      string `yaml:"access_note"`
	NotRecognized   string `yaml:"not_recognized"`
	FailedToLoad    string `yaml:"failed_to_load"`
}

type SerialConfig struct {
	Device   string `yaml:"device"`
	BaudRate int    `yaml:"baud_rate"`
}

type UploadConfig struct {
	Dir      string // created on startup if missing
	MaxBytes int64
}

type ImageConfig struct {
	MaxDimension int
	JPEGQuality  int
}

type LogConfig struct {
	Dir         string // empty disables file logging
	MaxAgeDays  int
	RotateHours int
}

type WebConfig struct {
	Host string
	Port int
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envFloat reads a non-negative float environment variable, falling back to defaultVal.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f >= 0 {
		return f
	}
	return defaultVal
}

// envString returns the environment variable or defaultVal when it is unset or empty.
func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

// Defaults returns the configuration embedded in defaults.yaml with no
// environment overrides applied.
func Defaults() *Config {
	var cfg Config
	if err := yaml.Unmarshal(defaultsYAML, &cfg); err != nil {
		// This is an embedded file so this error should never happen in practice
		panic("failed to unmarshal embedded defaults.yaml: " + err.Error())
	}
	cfg.Upload = UploadConfig{
		Dir:      constants.DefaultUploadDir,
		MaxBytes: constants.MaxUploadSize,
	}
	cfg.Image = ImageConfig{
		MaxDimension: constants.MaxImageDimension,
		JPEGQuality:  constants.DefaultJPEGQuality,
	}
	cfg.Log = LogConfig{
		MaxAgeDays:  14,
		RotateHours: 24,
	}
	cfg.Web = WebConfig{
		Host: "0.0.0.0",
		Port: 8080,
	}
	return &cfg
}

func Load() *Config {
	cfg := Defaults()

	cfg.AWS.Region = envString("AWS_REGION", cfg.AWS.Region)
	cfg.AWS.Endpoint = os.Getenv("AWS_ENDPOINT_URL")

	cfg.FaceSearch.CollectionID = envString("REKOGNITION_COLLECTION_ID", cfg.FaceSearch.CollectionID)
	cfg.FaceSearch.MatchThreshold = envFloat("FACE_MATCH_THRESHOLD", cfg.FaceSearch.MatchThreshold)
	cfg.FaceSearch.MaxMatches = envInt("FACE_MAX_MATCHES", cfg.FaceSearch.MaxMatches)

	cfg.Identity.Table = envString("IDENTITY_TABLE", cfg.Identity.Table)

	cfg.Serial.Device = envString("SERIAL_DEVICE", cfg.Serial.Device)
	cfg.Serial.BaudRate = envInt("SERIAL_BAUD_RATE", cfg.Serial.BaudRate)

	cfg.Upload.Dir = envString("UPLOAD_DIR", cfg.Upload.Dir)
	cfg.Upload.MaxBytes = int64(envInt("UPLOAD_MAX_BYTES", int(cfg.Upload.MaxBytes)))

	cfg.Image.MaxDimension = envInt("IMAGE_MAX_DIMENSION", cfg.Image.MaxDimension)
	cfg.Image.JPEGQuality = envInt("JPEG_QUALITY", cfg.Image.JPEGQuality)
	if cfg.Image.JPEGQuality > 100 {
		cfg.Image.JPEGQuality = 100
	}

	cfg.Log.Dir = os.Getenv("LOG_DIR")
	cfg.Log.MaxAgeDays = envInt("LOG_MAX_AGE_DAYS", cfg.Log.MaxAgeDays)

	cfg.Web.Host = envString("WEB_HOST", cfg.Web.Host)
	cfg.Web.Port = envInt("WEB_PORT", cfg.Web.Port)

	return cfg
}
