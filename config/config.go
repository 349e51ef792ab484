package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// Config holds runtime settings. Values come from defaults, then an optional TOML
// file, then the environment (a .env file is loaded first when present).
type Config struct {
	AssetsDir string `toml:"assets_dir"`
	InputDir  string `toml:"input_dir"`
	OutputDir string `toml:"output_dir"`

	// LegacyTimeFallback lets a reference to start_time/end_time fall back to the
	// voice_start_time/voice_end_time of the same segment when the former is missing.
	LegacyTimeFallback bool `toml:"legacy_time_fallback"`
	FetchConcurrency   int  `toml:"fetch_concurrency"`
	MaxConcurrentJobs  int  `toml:"max_concurrent_jobs"`

	OpenAI  OpenAI  `toml:"openai"`
	Images  Images  `toml:"images"`
	Redis   Redis   `toml:"redis"`
	S3      S3      `toml:"s3"`
	Kafka   Kafka   `toml:"kafka"`
	YouTube YouTube `toml:"youtube"`
	API     API     `toml:"api"`
}

// OpenAI configures narration synthesis
type OpenAI struct {
	APIKey  string `toml:"api_key"`
	BaseURL string `toml:"base_url"`
	Model   string `toml:"model"`
	Voice   string `toml:"voice"`
}

// Images configures stock image search providers
type Images struct {
	PexelsAPIKey  string `toml:"pexels_api_key"`
	PixabayAPIKey string `toml:"pixabay_api_key"`
}

// Redis configures the image search cache and job status store. Empty Addr disables both.
type Redis struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// S3 configures source downloads and output uploads. Empty Bucket disables uploads.
type S3 struct {
	Bucket       string `toml:"bucket"`
	Prefix       string `toml:"prefix"`
	Region       string `toml:"region"`
	Profile      string `toml:"profile"`
	UsePathStyle bool   `toml:"use_path_style"`
}

// Kafka configures the render request consumer
type Kafka struct {
	Brokers []string `toml:"brokers"`
	Topic   string   `toml:"topic"`
	GroupID string   `toml:"group_id"`
}

// YouTube configures the optional publish step. Empty ServiceAccountFile disables it.
type YouTube struct {
	ServiceAccountFile string `toml:"service_account_file"`
}

// API configures the HTTP server
type API struct {
	Port string `toml:"port"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		AssetsDir:         AssetsDir,
		InputDir:          InputDir,
		OutputDir:         OutputDir,
		FetchConcurrency:  FetchConcurrency,
		MaxConcurrentJobs: MaxConcurrentJobs,
		OpenAI: OpenAI{
			BaseURL: OpenAIBaseURL,
			Model:   DefaultTTSModel,
			Voice:   DefaultVoice,
		},
		Kafka: Kafka{
			Brokers: strings.Split(DefaultKafkaBrokers, ","),
			Topic:   DefaultKafkaTopic,
			GroupID: DefaultKafkaGroupID,
		},
		API: API{Port: DefaultAPIPort},
	}
}

// Load builds the configuration. path may be empty; a missing file at an explicit path is an error.
func Load(path string) (*Config, error) {
	// Load environment variables from .env if present (non-fatal if missing)
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("config file not found: %s", path)
			}
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the pipeline cannot run with
func (c *Config) Validate() error {
	if c.FetchConcurrency < 1 {
		return fmt.Errorf("fetch_concurrency must be at least 1, got %d", c.FetchConcurrency)
	}
	if c.MaxConcurrentJobs < 1 {
		return fmt.Errorf("max_concurrent_jobs must be at least 1, got %d", c.MaxConcurrentJobs)
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		return errors.New("output_dir must not be empty")
	}
	if strings.TrimSpace(c.AssetsDir) == "" {
		return errors.New("assets_dir must not be empty")
	}
	return nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.AssetsDir, "JSON2VIDEO_ASSETS_DIR")
	setString(&cfg.InputDir, "JSON2VIDEO_INPUT_DIR")
	setString(&cfg.OutputDir, "JSON2VIDEO_OUTPUT_DIR")
	setBool(&cfg.LegacyTimeFallback, "JSON2VIDEO_LEGACY_TIME_FALLBACK")
	setInt(&cfg.FetchConcurrency, "JSON2VIDEO_FETCH_CONCURRENCY")
	setInt(&cfg.MaxConcurrentJobs, "JSON2VIDEO_MAX_CONCURRENT_JOBS")

	setString(&cfg.OpenAI.APIKey, "OPENAI_API_KEY")
	setString(&cfg.OpenAI.BaseURL, "OPENAI_BASE_URL")
	setString(&cfg.OpenAI.Model, "OPENAI_TTS_MODEL")
	setString(&cfg.OpenAI.Voice, "OPENAI_TTS_VOICE")

	setString(&cfg.Images.PexelsAPIKey, "PEXELS_API_KEY")
	setString(&cfg.Images.PixabayAPIKey, "PIXABAY_API_KEY")

	setString(&cfg.Redis.Addr, "REDIS_ADDR")
	setString(&cfg.Redis.Password, "REDIS_PASS")
	setInt(&cfg.Redis.DB, "REDIS_DB")

	setString(&cfg.S3.Bucket, "S3_BUCKET")
	setString(&cfg.S3.Region, "S3_REGION")
	setString(&cfg.S3.Profile, "S3_PROFILE")
	setBool(&cfg.S3.UsePathStyle, "S3_USE_PATH_STYLE")
	if v, ok := lookup("S3_PREFIX"); ok {
		cfg.S3.Prefix = strings.Trim(v, "/") + "/"
	}

	if v, ok := lookup("KAFKA_BOOTSTRAP_SERVERS"); ok {
		cfg.Kafka.Brokers = strings.Split(v, ",")
	}
	setString(&cfg.Kafka.Topic, "KAFKA_TOPIC_RENDER_REQUESTS")
	setString(&cfg.Kafka.GroupID, "KAFKA_CONSUMER_GROUP_ID")

	setString(&cfg.YouTube.ServiceAccountFile, "YOUTUBE_SERVICE_ACCOUNT_FILE")

	if v, ok := lookup("PORT"); ok {
		cfg.API.Port = ":" + strings.TrimPrefix(v, ":")
	}
}

func lookup(key string) (string, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	return v, v != ""
}

func setString(dst *string, key string) {
	if v, ok := lookup(key); ok {
		*dst = v
	}
}

func setBool(dst *bool, key string) {
	if v, ok := lookup(key); ok {
		*dst = strings.EqualFold(v, "true") || v == "1"
	}
}

func setInt(dst *int, key string) {
	if v, ok := lookup(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
