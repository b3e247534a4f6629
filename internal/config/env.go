package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/docker/go-units"
	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	CorsOrigins []string
	JWTSecret   string

	DBDriver    string // postgres | sqlite | memory
	DatabaseURL string
	SslCertPath string

	StorageDriver string // local | s3
	StorageRoot   string
	UploadDir     string
	MaxUploadSize int64
	AwsAccessKey  string
	AwsSecretKey  string
	AwsRegion     string
	BucketName    string
	S3Endpoint    string

	LLMProvider      string // ollama | gemini
	OllamaBaseURL    string
	OllamaModel      string
	OllamaTimeout    time.Duration
	OllamaMaxRetries int
	OllamaRetryDelay time.Duration
	AIAPIKey         string
	GenModel         string

	ChunkWindowSize int
	QueueDriver     string // memory | redis
	QueueSize       int
	QueueKey        string
	ChunkWorkers    int
	RedisAddr       string
	RedisPassword   string
	RedisDB         int

	RateLimitRPS   float64
	RateLimitBurst int

	LogLevel  string
	LogFormat string

	// Warnings lists values that did not parse and fell back to defaults.
	// They are logged once the logger exists.
	Warnings []string
}

// envReader collects parse warnings while the config is being read.
type envReader struct {
	warnings []string
}

func (r *envReader) warn(format string, args ...any) {
	r.warnings = append(r.warnings, fmt.Sprintf(format, args...))
}

// LoadConfig loads the environment variables and return config
func LoadConfig() (*Config, error) {

	_ = godotenv.Load()

	r := &envReader{}
	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		CorsOrigins: getEnvList("CORS_ORIGINS", []string{"http://localhost:5173", "http://localhost:8888"}),
		JWTSecret:   getEnv("JWT_SECRET", ""),

		DBDriver:    getEnv("DB_DRIVER", "postgres"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		SslCertPath: getEnv("SSL_CERT_PATH", ""),

		StorageDriver: getEnv("STORAGE_DRIVER", "local"),
		StorageRoot:   getEnv("STORAGE_ROOT", "."),
		UploadDir:     getEnv("UPLOAD_DIR", "uploads"),
		MaxUploadSize: r.getEnvSize("MAX_UPLOAD_SIZE", 32<<20),
		AwsAccessKey:  getEnv("AWS_ACCESS_KEY", ""),
		AwsSecretKey:  getEnv("AWS_SECRET_KEY", ""),
		AwsRegion:     getEnv("AWS_REGION", "us-east-2"),
		BucketName:    getEnv("BUCKET_NAME", "docqa-uploads"),
		S3Endpoint:    getEnv("S3_ENDPOINT", ""),

		LLMProvider:      getEnv("LLM_PROVIDER", "ollama"),
		OllamaBaseURL:    getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
		OllamaModel:      getEnv("OLLAMA_MODEL", "llama2"),
		OllamaTimeout:    r.getEnvSeconds("OLLAMA_TIMEOUT", 30),
		OllamaMaxRetries: r.getEnvInt("OLLAMA_MAX_RETRIES", 3),
		OllamaRetryDelay: r.getEnvSeconds("OLLAMA_RETRY_DELAY", 1),
		AIAPIKey:         getEnv("GEMINI_API_KEY", ""),
		GenModel:         getEnv("GEN_MODEL", "gemini-1.5-flash"),

		ChunkWindowSize: r.getEnvInt("CHUNK_WINDOW_SIZE", 1000),
		QueueDriver:     getEnv("QUEUE_DRIVER", "memory"),
		QueueSize:       r.getEnvInt("QUEUE_SIZE", 64),
		QueueKey:        getEnv("QUEUE_KEY", "docqa:chunk-jobs"),
		ChunkWorkers:    r.getEnvInt("CHUNK_WORKERS", 2),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RedisDB:         r.getEnvInt("REDIS_DB", 0),

		RateLimitRPS:   r.getEnvFloat("RATE_LIMIT_RPS", 5),
		RateLimitBurst: r.getEnvInt("RATE_LIMIT_BURST", 10),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}
	cfg.Warnings = r.warnings

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports the first inconsistent setting.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case "postgres", "sqlite":
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL not set")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown DB_DRIVER %q", c.DBDriver)
	}

	switch c.StorageDriver {
	case "local":
	case "s3":
		if c.BucketName == "" {
			return errors.New("BUCKET_NAME not set")
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}
	if strings.TrimSpace(c.UploadDir) == "" {
		return errors.New("UPLOAD_DIR is empty")
	}

	switch c.LLMProvider {
	case "ollama", "gemini":
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q", c.LLMProvider)
	}
	if c.OllamaMaxRetries < 0 {
		return errors.New("OLLAMA_MAX_RETRIES must not be negative")
	}
	if c.OllamaTimeout <= 0 {
		return errors.New("OLLAMA_TIMEOUT must be positive")
	}

	switch c.QueueDriver {
	case "memory", "redis":
	default:
		return fmt.Errorf("unknown QUEUE_DRIVER %q", c.QueueDriver)
	}
	if c.ChunkWindowSize <= 0 {
		return errors.New("CHUNK_WINDOW_SIZE must be positive")
	}
	if c.QueueSize <= 0 || c.ChunkWorkers <= 0 {
		return errors.New("QUEUE_SIZE and CHUNK_WORKERS must be positive")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET not set")
	}
	return nil
}

// Helper to read environment variables with a default fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func (r *envReader) getEnvInt(key string, def int) int {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.warn("%s=%q not an int, using default %d", key, v, def)
		return def
	}
	return n
}

func (r *envReader) getEnvFloat(key string, def float64) float64 {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		r.warn("%s=%q not a number, using default %g", key, v, def)
		return def
	}
	return f
}

// getEnvSeconds reads a whole number of seconds.
func (r *envReader) getEnvSeconds(key string, def int) time.Duration {
	return time.Duration(r.getEnvInt(key, def)) * time.Second
}

// getEnvSize accepts human sizes such as "32MB" or "1.5GiB".
func (r *envReader) getEnvSize(key string, def int64) int64 {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := units.RAMInBytes(v)
	if err != nil {
		r.warn("%s=%q not a size, using default %d", key, v, def)
		return def
	}
	return n
}

func getEnvList(key string, def []string) []string {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
