package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Env            string        `mapstructure:"ENV"`
	Port           string        `mapstructure:"PORT"`
	DatabaseURL    string        `mapstructure:"DATABASE_URL"`
	RedisURL       string        `mapstructure:"REDIS_URL"`
	AdminKey       string        `mapstructure:"ADMIN_KEY"`
	CORSAllowed    string        `mapstructure:"CORS_ALLOWED_ORIGINS"`
	RequestTimeout time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	LogLevel       string        `mapstructure:"LOG_LEVEL"`
	Timezone       string        `mapstructure:"TIMEZONE"`

	MapsService       string        `mapstructure:"MAPS_SERVICE"`
	GoogleMapsAPIKey  string        `mapstructure:"GOOGLE_MAPS_API_KEY"`
	NaverClientID     string        `mapstructure:"NAVER_CLIENT_ID"`
	NaverClientSecret string        `mapstructure:"NAVER_CLIENT_SECRET"`
	TmapAPIKey        string        `mapstructure:"TMAP_API_KEY"`
	TravelTimeout     time.Duration `mapstructure:"TRAVEL_TIMEOUT"`
	TravelCacheSize   int           `mapstructure:"TRAVEL_CACHE_SIZE"`
	TravelCacheTTL    time.Duration `mapstructure:"TRAVEL_CACHE_TTL"`
	TravelRatePerSec  float64       `mapstructure:"TRAVEL_RATE_PER_SEC"`
	TransportMode     string        `mapstructure:"TRANSPORT_MODE"`

	CatalogFile     string `mapstructure:"CATALOG_FILE"`
	NominatimURL    string `mapstructure:"NOMINATIM_URL"`
	CountryDefault  string `mapstructure:"COUNTRY_DEFAULT"`
	MaxUploadSizeMB int64  `mapstructure:"MAX_UPLOAD_MB"`
}

var keys = []string{
	"ENV", "PORT", "DATABASE_URL", "REDIS_URL", "ADMIN_KEY", "CORS_ALLOWED_ORIGINS", "REQUEST_TIMEOUT", "LOG_LEVEL", "TIMEZONE",
	"MAPS_SERVICE", "GOOGLE_MAPS_API_KEY", "NAVER_CLIENT_ID", "NAVER_CLIENT_SECRET", "TMAP_API_KEY",
	"TRAVEL_TIMEOUT", "TRAVEL_CACHE_SIZE", "TRAVEL_CACHE_TTL", "TRAVEL_RATE_PER_SEC", "TRANSPORT_MODE",
	"CATALOG_FILE", "NOMINATIM_URL", "COUNTRY_DEFAULT", "MAX_UPLOAD_MB",
}

// New returns a viper instance with defaults, the optional .env file and the
// environment applied. Callers may bind extra sources (flags) before Decode.
func New() *viper.Viper {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	_ = v.ReadInConfig()

	v.SetDefault("ENV", "dev")
	v.SetDefault("PORT", "8080")
	v.SetDefault("REQUEST_TIMEOUT", "30s")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("TIMEZONE", "Asia/Seoul")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("MAPS_SERVICE", "google")
	v.SetDefault("TRAVEL_TIMEOUT", "10s")
	v.SetDefault("TRAVEL_CACHE_SIZE", 1000)
	v.SetDefault("TRAVEL_CACHE_TTL", "24h")
	v.SetDefault("TRAVEL_RATE_PER_SEC", 5)
	v.SetDefault("TRANSPORT_MODE", "transit")
	v.SetDefault("CATALOG_FILE", "data/catalog.yaml")
	v.SetDefault("NOMINATIM_URL", "https://nominatim.openstreetmap.org")
	v.SetDefault("COUNTRY_DEFAULT", "South Korea")
	v.SetDefault("MAX_UPLOAD_MB", 20)
	// AutomaticEnv only covers keys viper already knows about.
	for _, k := range keys {
		_ = v.BindEnv(k)
	}
	return v
}

func Decode(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	cfg.MapsService = strings.ToLower(strings.TrimSpace(cfg.MapsService))
	switch cfg.MapsService {
	case "google", "naver", "tmap", "haversine", "mock":
	default:
		return Config{}, fmt.Errorf("MAPS_SERVICE must be one of google, naver, tmap, haversine, mock (got %q)", cfg.MapsService)
	}
	return cfg, nil
}

func Load() (Config, error) {
	return Decode(New())
}
