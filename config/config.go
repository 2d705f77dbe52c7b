package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App        AppConfig
	DB         DBConfig
	Redis      RedisConfig
	JWT        JWTConfig
	CORS       CORSConfig
	RateLimit  RateLimitConfig
	Video      VideoConfig
	Classifier ClassifierConfig
	Storage    StorageConfig
}

type AppConfig struct {
	Port     string
	Env      string
	LogLevel string
	Timezone string
}

type DBConfig struct {
	Host        string
	Port        string
	User        string
	Password    string
	Name        string
	SSLMode     string
	AutoMigrate bool
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret        string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

// VideoConfig selects the default video provider and carries the credentials
// of every supported vendor. API keys are server-side only.
type VideoConfig struct {
	Provider          string
	RequestTimeout    time.Duration
	RoomTTL           time.Duration
	EnforceJoinWindow bool
	Whereby           WherebyConfig
	Daily             DailyConfig
	EightByEight      EightByEightConfig
	Jitsi             JitsiConfig
}

type WherebyConfig struct {
	APIKey  string
	Domain  string
	BaseURL string
}

type DailyConfig struct {
	APIKey  string
	Domain  string
	BaseURL string
}

type EightByEightConfig struct {
	AppID  string
	APIKey string
	KeyID  string
	Domain string
}

type JitsiConfig struct {
	Domain string
}

type ClassifierConfig struct {
	BaseURL        string
	Token          string
	Timeout        time.Duration
	MaxUploadBytes int64
}

type StorageConfig struct {
	Bucket       string
	Region       string
	Endpoint     string
	UsePathStyle bool
	PublicURL    string
	URLExpiry    time.Duration
}

// IsProduction reports whether the app runs with APP_ENV=production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.App.Env, "production")
}

func LoadConfig() (*Config, error) {
	return LoadConfigFrom(".env")
}

// LoadConfigFrom reads an optional env file at path; process environment
// variables always take precedence.
func LoadConfigFrom(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetConfigType("env")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	config := &Config{
		App: AppConfig{
			Port:     v.GetString("APP_PORT"),
			Env:      v.GetString("APP_ENV"),
			LogLevel: v.GetString("LOG_LEVEL"),
			Timezone: v.GetString("APP_TIMEZONE"),
		},
		DB: DBConfig{
			Host:        v.GetString("DB_HOST"),
			Port:        v.GetString("DB_PORT"),
			User:        v.GetString("DB_USER"),
			Password:    v.GetString("DB_PASSWORD"),
			Name:        v.GetString("DB_NAME"),
			SSLMode:     v.GetString("DB_SSLMODE"),
			AutoMigrate: v.GetBool("DB_AUTO_MIGRATE"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:        v.GetString("JWT_SECRET"),
			AccessExpiry:  durationOr(v, "JWT_ACCESS_EXPIRY", 15*time.Minute),
			RefreshExpiry: durationOr(v, "JWT_REFRESH_EXPIRY", 7*24*time.Hour),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		RateLimit: RateLimitConfig{
			Requests: v.GetInt("RATE_LIMIT_REQUESTS"),
			Window:   durationOr(v, "RATE_LIMIT_WINDOW", time.Minute),
		},
		Video: VideoConfig{
			Provider:          strings.ToLower(v.GetString("VIDEO_PROVIDER")),
			RequestTimeout:    durationOr(v, "VIDEO_REQUEST_TIMEOUT", 10*time.Second),
			RoomTTL:           durationOr(v, "VIDEO_ROOM_TTL", 7*24*time.Hour),
			EnforceJoinWindow: v.GetBool("VIDEO_ENFORCE_JOIN_WINDOW"),
			Whereby: WherebyConfig{
				APIKey:  v.GetString("WHEREBY_API_KEY"),
				Domain:  v.GetString("WHEREBY_DOMAIN"),
				BaseURL: v.GetString("WHEREBY_API_URL"),
			},
			Daily: DailyConfig{
				APIKey:  v.GetString("DAILY_API_KEY"),
				Domain:  v.GetString("DAILY_DOMAIN"),
				BaseURL: v.GetString("DAILY_API_URL"),
			},
			EightByEight: EightByEightConfig{
				AppID:  v.GetString("EIGHTEIGHT_APP_ID"),
				APIKey: v.GetString("EIGHTEIGHT_API_KEY"),
				KeyID:  v.GetString("EIGHTEIGHT_KEY_ID"),
				Domain: v.GetString("EIGHTEIGHT_DOMAIN"),
			},
			Jitsi: JitsiConfig{
				Domain: v.GetString("JITSI_DOMAIN"),
			},
		},
		Classifier: ClassifierConfig{
			BaseURL:        strings.TrimRight(v.GetString("CLASSIFIER_URL"), "/"),
			Token:          v.GetString("HF_TOKEN"),
			Timeout:        durationOr(v, "CLASSIFIER_TIMEOUT", 60*time.Second),
			MaxUploadBytes: v.GetInt64("UPLOAD_MAX_BYTES"),
		},
		Storage: StorageConfig{
			Bucket:       v.GetString("S3_BUCKET"),
			Region:       v.GetString("S3_REGION"),
			Endpoint:     v.GetString("S3_ENDPOINT"),
			UsePathStyle: v.GetBool("S3_USE_PATH_STYLE"),
			PublicURL:    strings.TrimRight(v.GetString("S3_PUBLIC_URL"), "/"),
			URLExpiry:    durationOr(v, "S3_URL_EXPIRY", time.Hour),
		},
	}

	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("APP_TIMEZONE", "Europe/Istanbul")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("RATE_LIMIT_REQUESTS", 60)
	v.SetDefault("VIDEO_PROVIDER", "whereby")
	v.SetDefault("WHEREBY_API_URL", "https://api.whereby.dev/v1")
	v.SetDefault("WHEREBY_DOMAIN", "medianalytica.whereby.com")
	v.SetDefault("DAILY_API_URL", "https://api.daily.co/v1")
	v.SetDefault("DAILY_DOMAIN", "medianalytica.daily.co")
	v.SetDefault("EIGHTEIGHT_DOMAIN", "8x8.vc")
	v.SetDefault("JITSI_DOMAIN", "meet.jit.si")
	v.SetDefault("CLASSIFIER_URL", "https://melihkzmz-medianalytica.hf.space")
	v.SetDefault("UPLOAD_MAX_BYTES", 10*1024*1024)
	v.SetDefault("S3_REGION", "eu-central-1")
}

func durationOr(v *viper.Viper, key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(v.GetString(key))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
