package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application level configuration aggregated from env/config files.
type Config struct {
	Server struct {
		Addr string
	}
	Database struct {
		Path string
	}
	Uploads struct {
		Dir      string
		MaxBytes int64
	}
	Auth struct {
		JWTSecret       string
		TokenTTLMinutes int
		BcryptCost      int
	}
	Geocoding struct {
		BaseURL        string
		APIKey         string
		Language       string
		TimeoutSeconds int
		RPS            float64
	}
	Storage struct {
		Bucket        string
		KeyPrefix     string
		Region        string
		Endpoint      string
		PublicBaseURL string
	}
	AWS struct {
		Profile string
	}
	Log struct {
		Level string
	}
}

// Load reads configuration from environment variables and optional config files.
func Load() (Config, error) {
	loadDotEnv(".env")

	v := viper.New()
	v.SetEnvPrefix("PLACES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.addr", "0.0.0.0:5000")
	v.SetDefault("database.path", "data/places.db")
	v.SetDefault("uploads.dir", "uploads/images")
	v.SetDefault("uploads.maxbytes", 4000000)
	v.SetDefault("auth.jwtsecret", "")
	v.SetDefault("auth.tokenttlminutes", 60)
	v.SetDefault("auth.bcryptcost", 12)
	v.SetDefault("geocoding.baseurl", "https://api.olamaps.io")
	v.SetDefault("geocoding.apikey", "")
	v.SetDefault("geocoding.language", "English")
	v.SetDefault("geocoding.timeoutseconds", 10)
	v.SetDefault("geocoding.rps", 5)
	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.keyprefix", "users")
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.publicbaseurl", "")
	v.SetDefault("aws.profile", "")
	v.SetDefault("log.level", "info")

	v.SetConfigName("config")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // optional file

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// Validate reports the first missing required setting.
func (c Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Auth.JWTSecret) == "":
		return fmt.Errorf("auth jwt secret is required")
	case strings.TrimSpace(c.Geocoding.APIKey) == "":
		return fmt.Errorf("geocoding api key is required")
	case strings.TrimSpace(c.Storage.Bucket) == "":
		return fmt.Errorf("storage bucket is required")
	}
	return nil
}

func loadDotEnv(path string) {
	file, err := os.Open(path)
	if err != nil {
		return
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		partsIndex := strings.Index(line, "=")
		if partsIndex <= 0 {
			continue
		}

		key := strings.TrimSpace(line[:partsIndex])
		value := strings.TrimSpace(line[partsIndex+1:])
		value = strings.Trim(value, `"'`)
		if key == "" {
			continue
		}

		if _, exists := os.LookupEnv(key); !exists {
			_ = os.Setenv(key, value)
		}
	}
}
