package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendPostgres      = "postgres"
	BackendDatastore     = "datastore"
	BackendElasticsearch = "elasticsearch"
	BackendMemory        = "memory"

	AttachmentInline   = "inline"
	AttachmentExternal = "external"

	SinkFilesystem = "filesystem"
	SinkS3         = "s3"
)

var DefaultEnvConfig *EnvConfig

type EnvConfig struct {
	APP_PORT string
	// database config
	DB_HOST              string
	DB_PORT              int
	DB_USER              string
	DB_PASSWORD          string
	DB_NAME              string
	DB_SSL_MODE          string
	DB_CONN_MAX_LIFETIME time.Duration
	DB_MAX_IDLE_CONNS    int
	DB_MAX_OPEN_CONNS    int
	// logger config
	LOG_FILE_PATH string
	LOG_LEVEL     string
	// storage selection
	RECORD_BACKEND  string
	ATTACHMENT_MODE string
	CONTENT_SINK    string
	// filesystem sink
	UPLOAD_DIR        string
	UPLOAD_URL_PREFIX string
	MAX_UPLOAD_SIZE   string
	// s3 sink
	S3_REGION          string
	S3_ENDPOINT        string
	S3_ACCESS_KEY      string
	S3_SECRET_KEY      string
	S3_BUCKET          string
	S3_KEY_PREFIX      string
	S3_PUBLIC_BASE_URL string
	S3_PATH_STYLE      bool
	// other backends
	DATASTORE_PROJECT_ID string
	ELASTIC_URL          string
	ELASTIC_INDEX        string
}

// LoadEnvConfig reads .env when present, then the process environment.
func LoadEnvConfig() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	cfg := &EnvConfig{
		APP_PORT:             getEnvString("APP_PORT", "8080"),
		DB_HOST:              getEnvString("DB_HOST", "localhost"),
		DB_PORT:              getEnvInt("DB_PORT", 5432),
		DB_USER:              getEnvString("DB_USER", "postgres"),
		DB_PASSWORD:          getEnvString("DB_PASSWORD", "postgres"),
		DB_NAME:              getEnvString("DB_NAME", "postgres"),
		DB_SSL_MODE:          getEnvString("DB_SSL_MODE", "disable"),
		DB_CONN_MAX_LIFETIME: getEnvDuration("DB_CONN_MAX_LIFETIME", 20*time.Minute),
		DB_MAX_IDLE_CONNS:    getEnvInt("DB_MAX_IDLE_CONNS", 10),
		DB_MAX_OPEN_CONNS:    getEnvInt("DB_MAX_OPEN_CONNS", 100),
		LOG_FILE_PATH:        getEnvString("LOG_FILE_PATH", ""),
		LOG_LEVEL:            getEnvString("LOG_LEVEL", "info"),
		RECORD_BACKEND:       strings.ToLower(getEnvString("RECORD_BACKEND", BackendPostgres)),
		ATTACHMENT_MODE:      strings.ToLower(getEnvString("ATTACHMENT_MODE", AttachmentExternal)),
		CONTENT_SINK:         strings.ToLower(getEnvString("CONTENT_SINK", SinkFilesystem)),
		UPLOAD_DIR:           getEnvString("UPLOAD_DIR", "uploads"),
		UPLOAD_URL_PREFIX:    getEnvString("UPLOAD_URL_PREFIX", "/uploads"),
		MAX_UPLOAD_SIZE:      getEnvString("MAX_UPLOAD_SIZE", "10M"),
		S3_REGION:            getEnvString("S3_REGION", "us-east-1"),
		S3_ENDPOINT:          getEnvString("S3_ENDPOINT", ""),
		S3_ACCESS_KEY:        getEnvString("S3_ACCESS_KEY", ""),
		S3_SECRET_KEY:        getEnvString("S3_SECRET_KEY", ""),
		S3_BUCKET:            getEnvString("S3_BUCKET", ""),
		S3_KEY_PREFIX:        getEnvString("S3_KEY_PREFIX", "employees"),
		S3_PUBLIC_BASE_URL:   getEnvString("S3_PUBLIC_BASE_URL", ""),
		S3_PATH_STYLE:        getEnvBool("S3_PATH_STYLE", false),
		DATASTORE_PROJECT_ID: getEnvString("DATASTORE_PROJECT_ID", ""),
		ELASTIC_URL:          getEnvString("ELASTIC_URL", "http://localhost:9200"),
		ELASTIC_INDEX:        getEnvString("ELASTIC_INDEX", "employees"),
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	DefaultEnvConfig = cfg
	return nil
}

// Validate rejects unknown modes and missing settings they depend on.
func (c *EnvConfig) Validate() error {
	switch c.RECORD_BACKEND {
	case BackendPostgres, BackendMemory, BackendElasticsearch:
	case BackendDatastore:
		if c.DATASTORE_PROJECT_ID == "" {
			return fmt.Errorf("DATASTORE_PROJECT_ID is required for the %s backend", BackendDatastore)
		}
	default:
		return fmt.Errorf("unknown RECORD_BACKEND %q", c.RECORD_BACKEND)
	}

	switch c.ATTACHMENT_MODE {
	case AttachmentInline:
		return nil
	case AttachmentExternal:
	default:
		return fmt.Errorf("unknown ATTACHMENT_MODE %q", c.ATTACHMENT_MODE)
	}

	switch c.CONTENT_SINK {
	case SinkFilesystem:
		if c.UPLOAD_DIR == "" {
			return fmt.Errorf("UPLOAD_DIR is required for the %s sink", SinkFilesystem)
		}
	case SinkS3:
		if c.S3_BUCKET == "" || c.S3_PUBLIC_BASE_URL == "" {
			return fmt.Errorf("S3_BUCKET and S3_PUBLIC_BASE_URL are required for the %s sink", SinkS3)
		}
	default:
		return fmt.Errorf("unknown CONTENT_SINK %q", c.CONTENT_SINK)
	}
	return nil
}

func getEnvString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
		if i, err := strconv.Atoi(val); err == nil {
			return time.Duration(i) * time.Second
		}
	}
	return fallback
}
