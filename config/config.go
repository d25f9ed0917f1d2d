package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	LogLevel int `yaml:"log_level"`

	Server   ServerConfig   `yaml:"server"`
	Workshop WorkshopConfig `yaml:"workshop"`
	Layout   LayoutConfig   `yaml:"layout"`
	Sources  SourcesConfig  `yaml:"sources"`
	Refill   RefillConfig   `yaml:"refill"`
	Audio    AudioConfig    `yaml:"audio"`
	Storage  StorageConfig  `yaml:"storage"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
}

type WorkshopConfig struct {
	SlotCount       int `yaml:"slot_count"`
	AutosaveDelayMS int `yaml:"autosave_delay_ms"`
}

type LayoutConfig struct {
	MinBPM float64 `yaml:"min_bpm"`
	MaxBPM float64 `yaml:"max_bpm"`
	Height float64 `yaml:"height"`
}

type SourcesConfig struct {
	// Base URL of the catalog service that resolves playlists, tree
	// nodes and search into candidate lists.
	CatalogURL string `yaml:"catalog_url"`
}

type RefillConfig struct {
	// Endpoint of the chunked BPM recompute service.
	Endpoint string `yaml:"endpoint"`
}

type AudioConfig struct {
	// Base URL serving full-length audio per track id.
	BaseURL string `yaml:"base_url"`
	// Base URL serving short preview clips per (artist, title).
	PreviewBaseURL string `yaml:"preview_base_url"`
	// Assumed audio bitrate in bytes per second for duration estimates.
	BytesPerSecond int64 `yaml:"bytes_per_second"`
}

type StorageConfig struct {
	// Path of the sqlite database file.
	DatabasePath string `yaml:"database_path"`

	// GCS export options; export is disabled when the bucket is empty.
	GCSBucket          string `yaml:"gcs_bucket"`
	GCSObjectPrefix    string `yaml:"gcs_object_prefix"`
	GCSCredentialsFile string `yaml:"gcs_credentials_file"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config *Config
	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, err
	}

	// Set defaults if not provided
	if config.Server.Port == "" {
		config.Server.Port = "8080"
	}
	if config.Workshop.SlotCount == 0 {
		config.Workshop.SlotCount = 8
	}
	if config.Workshop.AutosaveDelayMS == 0 {
		config.Workshop.AutosaveDelayMS = 1000
	}
	if config.Layout.MinBPM == 0 && config.Layout.MaxBPM == 0 {
		config.Layout.MinBPM = 60
		config.Layout.MaxBPM = 200
	}
	if config.Layout.Height == 0 {
		config.Layout.Height = 640
	}
	if config.Audio.BytesPerSecond == 0 {
		config.Audio.BytesPerSecond = 24000
	}
	if config.Storage.DatabasePath == "" {
		config.Storage.DatabasePath = "workshop.db"
	}

	return config, nil
}
