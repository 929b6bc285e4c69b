package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"resume-insights/internal/shared/telemetry"
)

// Provider holds the credentials and model for one LLM vendor.
type Provider struct {
	Name    string
	APIKey  string
	Model   string
	BaseURL string
}

// Config holds application configuration.
type Config struct {
	Port            string
	Env             string
	CORSAllowOrigin []string
	DatabaseURL     string
	RedisURL        string
	LogLevel        string
	LogFormat       string

	ProviderOrder []string
	Providers     map[string]Provider

	LLMMaxAttempts int
	LLMBaseDelay   time.Duration
	LLMTimeout     time.Duration
	LLMMinTimeout  time.Duration
	LLMTemperature float64
	LLMMaxTokens   int

	CourseMaxResults     int
	CourseMinResults     int
	ExtractMaxConcurrent int
	UploadMaxBytes       int64

	RateLimitAnalyzePerMinute int
	RateLimitAnalyzeBurst     int
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	cfg := Config{
		Port:            getEnv("PORT", "8080"),
		Env:             env,
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),
		DatabaseURL:     strings.TrimSpace(os.Getenv("DATABASE_URL")),
		RedisURL:        strings.TrimSpace(os.Getenv("REDIS_URL")),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "json"),

		ProviderOrder: lowerAll(splitAndTrim(getEnv("LLM_PROVIDERS", "openai,anthropic,gemini,groq"))),
		Providers: map[string]Provider{
			"openai": {
				Name:    "openai",
				APIKey:  os.Getenv("OPENAI_API_KEY"),
				Model:   os.Getenv("OPENAI_MODEL"),
				BaseURL: os.Getenv("OPENAI_BASE_URL"),
			},
			"anthropic": {
				Name:   "anthropic",
				APIKey: os.Getenv("ANTHROPIC_API_KEY"),
				Model:  os.Getenv("ANTHROPIC_MODEL"),
			},
			"gemini": {
				Name:   "gemini",
				APIKey: os.Getenv("GEMINI_API_KEY"),
				Model:  os.Getenv("GEMINI_MODEL"),
			},
			"groq": {
				Name:    "groq",
				APIKey:  os.Getenv("GROQ_API_KEY"),
				Model:   os.Getenv("GROQ_MODEL"),
				BaseURL: os.Getenv("GROQ_BASE_URL"),
			},
		},

		LLMMaxAttempts: getInt("LLM_MAX_ATTEMPTS", 3),
		LLMBaseDelay:   getDuration("LLM_BASE_DELAY", 500*time.Millisecond),
		LLMTimeout:     getDuration("LLM_TIMEOUT", 60*time.Second),
		LLMMinTimeout:  getDuration("LLM_MIN_TIMEOUT", 10*time.Second),
		LLMTemperature: getFloat("LLM_TEMPERATURE", 0.2),
		LLMMaxTokens:   getInt("LLM_MAX_TOKENS", 4096),

		CourseMaxResults:     getInt("COURSE_MAX_RESULTS", 6),
		CourseMinResults:     getInt("COURSE_MIN_RESULTS", 3),
		ExtractMaxConcurrent: getInt("EXTRACT_MAX_CONCURRENT", 4),
		UploadMaxBytes:       int64(getInt("UPLOAD_MAX_BYTES", 10<<20)),

		RateLimitAnalyzePerMinute: getInt("RATE_LIMIT_ANALYZE_PER_MINUTE", 6),
		RateLimitAnalyzeBurst:     getInt("RATE_LIMIT_ANALYZE_BURST", 3),
	}

	// Other OpenAI-compatible vendors are configured by name, e.g. DEEPSEEK_API_KEY.
	for _, name := range cfg.ProviderOrder {
		if _, ok := cfg.Providers[name]; ok {
			continue
		}
		prefix := strings.ToUpper(strings.ReplaceAll(name, "-", "_")) + "_"
		cfg.Providers[name] = Provider{
			Name:    name,
			APIKey:  os.Getenv(prefix + "API_KEY"),
			Model:   os.Getenv(prefix + "MODEL"),
			BaseURL: os.Getenv(prefix + "BASE_URL"),
		}
	}
	return cfg
}

// IsDevLike reports whether in-memory fallbacks are acceptable.
func (c Config) IsDevLike() bool {
	return c.Env == "dev" || c.Env == "local"
}

func getEnv(key, def string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return def
}

func getInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		warnInvalid(key, raw, err)
		return def
	}
	return v
}

func getFloat(key string, def float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		warnInvalid(key, raw, err)
		return def
	}
	return v
}

func getDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		warnInvalid(key, raw, err)
		return def
	}
	return v
}

func warnInvalid(key, raw string, err error) {
	telemetry.Warn("config.invalid_value", map[string]any{
		"key":   key,
		"value": raw,
		"error": err.Error(),
	})
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func lowerAll(in []string) []string {
	for i := range in {
		in[i] = strings.ToLower(in[i])
	}
	return in
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}
