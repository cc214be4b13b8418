package core

import (
	"time"
)

const (
	// DefaultConnectBaseURL is the Connect catalog API endpoint.
	DefaultConnectBaseURL = "https://connect.monstercat.com/api"
	// DefaultSearchLimit caps fuzzy search result sets.
	DefaultSearchLimit = 10
	// DefaultMediaWorkers bounds concurrent media lookup subprocesses.
	DefaultMediaWorkers = 4
	// DefaultMediaCacheSize bounds the media search cache.
	DefaultMediaCacheSize = 256
	// DefaultCacheFalsePositiveRate is the bloom filter false positive rate
	// for the media search cache.
	DefaultCacheFalsePositiveRate = 0.01
)

type Config struct {
	Connect ConnectConfig
	Media   MediaConfig
	Stream  StreamConfig
	Server  ServerConfig
	Store   StoreConfig
	Log     LogConfig
}

type StreamConfig struct {
	FFmpegPath string
}

type ConnectConfig struct {
	BaseURL     string
	SearchLimit int
	Timeout     time.Duration
}

type MediaConfig struct {
	YTDLPPath           string
	Workers             int
	CacheSize           int
	CacheFalsePositives float64
	Timeout             time.Duration
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type StoreConfig struct {
	HistoryPath string
}

type LogConfig struct {
	Level  string
	Format string
}

func DefaultConfig() *Config {
	return &Config{
		Connect: ConnectConfig{
			BaseURL:     DefaultConnectBaseURL,
			SearchLimit: DefaultSearchLimit,
			Timeout:     15 * time.Second,
		},
		Media: MediaConfig{
			YTDLPPath:           "yt-dlp",
			Workers:             DefaultMediaWorkers,
			CacheSize:           DefaultMediaCacheSize,
			CacheFalsePositives: DefaultCacheFalsePositiveRate,
			Timeout:             30 * time.Second,
		},
		Stream: StreamConfig{
			FFmpegPath: "ffmpeg",
		},
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Store: StoreConfig{
			HistoryPath: "./connectdj_history.db",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}
