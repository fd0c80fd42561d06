package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config centraliza a configuração carregada do ambiente.
type Config struct {
	Port            int
	DBDSN           string
	RedisURL        string
	JWTSecret       string
	JWTAccessTTL    time.Duration
	JWTRefreshTTL   time.Duration
	InviteTTL       time.Duration
	AllowOrigins    []string
	RateLimitPublic RateLimitConfig
	RateLimitAuth   RateLimitConfig
	Storage         StorageConfig
	Geocoding       GeocodingConfig
}

// RateLimitConfig representa limites simples para throttling.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// StorageConfig descreve o provedor de blobs.
type StorageConfig struct {
	Provider    string
	S3Endpoint  string
	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
	S3PublicURL string
}

// GeocodingConfig descreve o serviço externo de geocodificação.
type GeocodingConfig struct {
	BaseURL    string
	UserAgent  string
	DefaultLat float64
	DefaultLng float64
	CacheTTL   time.Duration
}

// Load carrega variáveis de ambiente e aplica defaults seguros.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	portStr := getEnv("PORT", "8080")
	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 {
		return nil, errors.New("PORT inválida")
	}
	cfg.Port = port

	cfg.DBDSN = getEnv("DB_DSN", "")
	if cfg.DBDSN == "" {
		return nil, errors.New("DB_DSN obrigatório")
	}

	cfg.RedisURL = getEnv("REDIS_URL", "")
	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL obrigatório")
	}

	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", ""))
	if len(cfg.JWTSecret) < 32 {
		return nil, errors.New("JWT_SECRET deve ter pelo menos 32 caracteres")
	}

	accessTTL, err := parseDurationEnv("JWT_ACCESS_TTL", 15*time.Minute)
	if err != nil {
		return nil, err
	}
	cfg.JWTAccessTTL = accessTTL

	refreshTTL, err := parseDurationEnv("JWT_REFRESH_TTL", 30*24*time.Hour)
	if err != nil {
		return nil, err
	}
	cfg.JWTRefreshTTL = refreshTTL

	inviteTTL, err := parseDurationEnv("INVITE_TTL", 7*24*time.Hour)
	if err != nil {
		return nil, err
	}
	cfg.InviteTTL = inviteTTL

	allowOrigins := strings.Split(getEnv("ALLOW_ORIGINS", ""), ",")
	cfg.AllowOrigins = nil
	for _, origin := range allowOrigins {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			cfg.AllowOrigins = append(cfg.AllowOrigins, origin)
		}
	}

	cfg.RateLimitPublic = RateLimitConfig{RequestsPerSecond: 10, Burst: 20}
	cfg.RateLimitAuth = RateLimitConfig{RequestsPerSecond: 10, Burst: 40}

	cfg.Storage = StorageConfig{
		Provider:    strings.TrimSpace(getEnv("STORAGE_PROVIDER", "noop")),
		S3Endpoint:  getEnv("S3_ENDPOINT", ""),
		S3Region:    getEnv("S3_REGION", "auto"),
		S3Bucket:    getEnv("S3_BUCKET", ""),
		S3AccessKey: getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey: getEnv("S3_SECRET_KEY", ""),
		S3PublicURL: getEnv("S3_PUBLIC_URL", ""),
	}

	defaultLat, err := parseFloatEnv("GEOCODING_DEFAULT_LAT", -7.1586)
	if err != nil {
		return nil, err
	}
	defaultLng, err := parseFloatEnv("GEOCODING_DEFAULT_LNG", -34.7911)
	if err != nil {
		return nil, err
	}
	cacheTTL, err := parseDurationEnv("GEOCODING_CACHE_TTL", 24*time.Hour)
	if err != nil {
		return nil, err
	}
	cfg.Geocoding = GeocodingConfig{
		BaseURL:    strings.TrimSpace(getEnv("GEOCODING_BASE_URL", "https://nominatim.openstreetmap.org")),
		UserAgent:  strings.TrimSpace(getEnv("GEOCODING_USER_AGENT", "eleitorado-api")),
		DefaultLat: defaultLat,
		DefaultLng: defaultLng,
		CacheTTL:   cacheTTL,
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return def
}

func parseDurationEnv(key string, def time.Duration) (time.Duration, error) {
	val := getEnv(key, "")
	if val == "" {
		return def, nil
	}
	dur, err := time.ParseDuration(val)
	if err != nil {
		return 0, errors.New(key + " inválido")
	}
	return dur, nil
}

func parseFloatEnv(key string, def float64) (float64, error) {
	val := getEnv(key, "")
	if val == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, errors.New(key + " inválido")
	}
	return f, nil
}
