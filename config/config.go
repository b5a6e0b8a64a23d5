package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const ENV_FILE = ".env"
const CONFIG_FILE = "config.yaml"

type AppConfig struct {
	Logging       LoggingConfig       `yaml:"logging"`
	Server        ServerConfig        `yaml:"server"`
	Mongo         MongoConfig         `yaml:"mongo"`
	Media         MediaConfig         `yaml:"media"`
	Transcription TranscriptionConfig `yaml:"transcription"`
	Summarization SummarizationConfig `yaml:"summarization"`
	Storage       StorageConfig       `yaml:"storage"`
	SummaryQuota  SummaryQuotaConfig  `yaml:"summary_quota"`
	RateLimit     RateLimitConfig     `yaml:"rate_limit"`
	EventBus      EventBusConfig      `yaml:"eventbus"`
}

type LoggingConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type MongoConfig struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

// MediaConfig controls video admission and the external binaries used to fetch audio.
type MediaConfig struct {
	MaxDurationSeconds int    `yaml:"max_duration_seconds"`
	TempDir            string `yaml:"temp_dir"`
	YtDlpBinary        string `yaml:"ytdlp_binary"`
	FfmpegBinary       string `yaml:"ffmpeg_binary"`
}

type TranscriptionConfig struct {
	Model string `yaml:"model"`
}

// SummarizationConfig describes how transcripts are split and which LLM summarizes them.
type SummarizationConfig struct {
	Provider     string `yaml:"provider"`
	ModelName    string `yaml:"model_name"`
	ChunkSize    int    `yaml:"chunk_size"`
	ChunkOverlap int    `yaml:"chunk_overlap"`
	// MaxChunks caps how many chunks are summarized. Text past the cap is not covered
	// by the summary. 0 means every chunk.
	MaxChunks int `yaml:"max_chunks"`
}

type StorageConfig struct {
	Bucket       string        `yaml:"bucket"`
	Region       string        `yaml:"region"`
	Endpoint     string        `yaml:"endpoint"`
	Prefix       string        `yaml:"prefix"`
	SignedURLTTL time.Duration `yaml:"signed_url_ttl"`
}

// SummaryQuotaConfig limits LLM calls per minute and per day. Values <= 0 disable a limit.
type SummaryQuotaConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute"`
	RequestsPerDay    int `yaml:"requests_per_day"`
}

// RateLimitConfig is the per-client inbound limit applied by the API.
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

type EventBusConfig struct {
	Enabled    bool `yaml:"enabled"`
	Partitions int  `yaml:"partitions"`
}

const openaiDefaultModel = "gpt-4o-mini"

var config *AppConfig

func InitApp() {
	basePath := GetBasePath()

	// load environment variables
	godotenv.Load(filepath.Join(basePath, ENV_FILE))

	c, err := Load(filepath.Join(basePath, CONFIG_FILE))
	if err != nil {
		panic(err)
	}
	config = c
}

// Load reads a YAML config file and fills in defaults for every unset value.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c AppConfig
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	c.applyDefaults()
	c.applyEnv()
	return &c, nil
}

func (c *AppConfig) applyDefaults() {
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Mongo.Database == "" {
		c.Mongo.Database = "ytsummary"
	}
	if c.Media.MaxDurationSeconds <= 0 {
		c.Media.MaxDurationSeconds = 1800
	}
	if c.Media.YtDlpBinary == "" {
		c.Media.YtDlpBinary = "yt-dlp"
	}
	if c.Media.FfmpegBinary == "" {
		c.Media.FfmpegBinary = "ffmpeg"
	}
	if c.Transcription.Model == "" {
		c.Transcription.Model = "whisper-1"
	}
	if c.Summarization.Provider == "" {
		c.Summarization.Provider = "google"
	}
	if c.Summarization.ModelName == "" {
		c.Summarization.ModelName = "gemini-2.5-flash"
		if c.Summarization.Provider == "openai" {
			c.Summarization.ModelName = openaiDefaultModel
		}
	}
	if c.Summarization.ChunkSize <= 0 {
		c.Summarization.ChunkSize = 1000
	}
	if c.Summarization.ChunkOverlap < 0 {
		c.Summarization.ChunkOverlap = 0
	}
	if c.Storage.SignedURLTTL <= 0 {
		c.Storage.SignedURLTTL = 168 * time.Hour
	}
	if c.EventBus.Partitions <= 0 {
		c.EventBus.Partitions = 3
	}
}

// applyEnv lets deployment secrets override the file.
func (c *AppConfig) applyEnv() {
	if v := os.Getenv("MONGO_URI"); v != "" {
		c.Mongo.URI = v
	}
	if v := os.Getenv("STORAGE_BUCKET"); v != "" {
		c.Storage.Bucket = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

func GetConfig() AppConfig {
	if config == nil {
		InitApp()
	}

	return *config
}

func GetBasePath() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	dir := cwd
	for {
		cfgPath := filepath.Join(dir, CONFIG_FILE)
		if info, err := os.Stat(cfgPath); err == nil && !info.IsDir() {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}
