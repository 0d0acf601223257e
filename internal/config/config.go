package config

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	envPath  = ".env"
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

type Config struct {
	Env      string
	DB       db
	Server   server
	Logger   logger
	Crypto   crypto
	Codef    codef
	Classify classify
}

type db struct {
	DatabaseURI string `env:"DATABASE_URI"`
	Migrations  string `env:"MIGRATIONS_PATH"`
}

type server struct {
	RunAddress string `env:"RUN_ADDRESS"`
}

type logger struct {
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

type crypto struct {
	// Base64-encoded 32-byte AES key. When empty, AESPassphrase is used to
	// derive one.
	AESSecretKey  string `env:"AES_SECRET_KEY"`
	AESPassphrase string `env:"AES_PASSPHRASE"`
}

type codef struct {
	ClientID     string `env:"CODEF_CLIENT_ID"`
	ClientSecret string `env:"CODEF_CLIENT_SECRET"`
	PublicKey    string `env:"CODEF_PUBLIC_KEY"`
	BaseURL      string `env:"CODEF_BASE_URL"`
	OAuthURL     string `env:"CODEF_OAUTH_URL"`
}

type classify struct {
	URL string `env:"CLASSIFY_URL"`
}

func MustLoad() *Config {
	if err := godotenv.Load(envPath); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	viper.AutomaticEnv()

	config := Config{
		Env: viper.GetString("app_env"),
		DB: db{
			DatabaseURI: viper.GetString("database_uri"),
			Migrations:  viper.GetString("migrations_path"),
		},
		Server: server{RunAddress: viper.GetString("run_address")},
		Logger: logger{LogLevel: viper.GetString("log_level")},
		Crypto: crypto{
			AESSecretKey:  viper.GetString("aes_secret_key"),
			AESPassphrase: viper.GetString("aes_passphrase"),
		},
		Codef: codef{
			ClientID:     viper.GetString("codef_client_id"),
			ClientSecret: viper.GetString("codef_client_secret"),
			PublicKey:    viper.GetString("codef_public_key"),
			BaseURL:      viper.GetString("codef_base_url"),
			OAuthURL:     viper.GetString("codef_oauth_url"),
		},
		Classify: classify{URL: viper.GetString("classify_url")},
	}

	if config.Codef.BaseURL == "" {
		config.Codef.BaseURL = "https://development.codef.io"
	}
	if config.Codef.OAuthURL == "" {
		config.Codef.OAuthURL = "https://oauth.codef.io/oauth/token"
	}
	if config.Server.RunAddress == "" {
		config.Server.RunAddress = ":8080"
	}

	return &config
}
