package core

import (
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		Env          string
		Debug        bool
		TestMode     bool
		AppName      string
		Build        string
		DataFile     string
		RollbarToken string

		Storage struct {
			Engine string // json, sqlite3, postgres
			DSN    string
		}

		Weather struct {
			APIKey  string
			BaseURL string
			Units   string
			Lang    string
			Timeout time.Duration
		}

		Server struct {
			Address         string
			ShutdownTimeout time.Duration
		}

		Mail struct {
			SendgridApiKey   string
			DefaultFromName  string
			DefaultFromEmail string
		}
	}
)

const (
	StorageJSON     = "json"
	StorageSQLite   = "sqlite3"
	StoragePostgres = "postgres"
)

func (c *Config) DefaultFromEmail() mail.Address {
	return mail.Address{Name: c.Mail.DefaultFromName, Address: c.Mail.DefaultFromEmail}
}

// NewConfig reads the configuration from defaults, an optional `config/.env.<env>` file and the environment.
// Environment variables are prefixed with the upper-cased env name (e.g. DEV_DATAFILE).
func NewConfig() *Config {
	conf := viper.New()

	// defaults
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("debug", true)
	conf.SetDefault("appName", "Attendly")
	conf.SetDefault("build", "dev")
	conf.SetDefault("dataFile", "course_data.json")
	conf.SetDefault("rollbarToken", "")
	conf.SetDefault("storage.engine", StorageJSON)
	conf.SetDefault("storage.dsn", "")
	conf.SetDefault("weather.apiKey", "")
	conf.SetDefault("weather.baseURL", "http://api.openweathermap.org")
	conf.SetDefault("weather.units", "metric")
	conf.SetDefault("weather.lang", "pl")
	conf.SetDefault("weather.timeout", 5*time.Second)
	conf.SetDefault("server.address", ":8000")
	conf.SetDefault("server.shutdownTimeout", 5*time.Second)
	conf.SetDefault("mail.sendgridApiKey", "")
	conf.SetDefault("mail.defaultFromName", "Attendly")
	conf.SetDefault("mail.defaultFromEmail", "noreply@localhost")

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		conf.SetDefault("testMode", true)
	}
	conf.SetEnvPrefix(env)
	conf.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join("config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.AutomaticEnv()

	c := &Config{
		Env:          env,
		Debug:        conf.GetBool("debug"),
		TestMode:     conf.GetBool("testMode"),
		AppName:      conf.GetString("appName"),
		Build:        conf.GetString("build"),
		DataFile:     conf.GetString("dataFile"),
		RollbarToken: conf.GetString("rollbarToken"),
	}
	c.Storage.Engine = strings.ToLower(conf.GetString("storage.engine"))
	c.Storage.DSN = conf.GetString("storage.dsn")
	c.Weather.APIKey = conf.GetString("weather.apiKey")
	if c.Weather.APIKey == "" {
		// the key historically lives in an unprefixed variable
		c.Weather.APIKey = os.Getenv("OPENWEATHERMAP_API_KEY")
	}
	c.Weather.BaseURL = strings.TrimRight(conf.GetString("weather.baseURL"), "/")
	c.Weather.Units = conf.GetString("weather.units")
	c.Weather.Lang = conf.GetString("weather.lang")
	c.Weather.Timeout = conf.GetDuration("weather.timeout")
	c.Server.Address = conf.GetString("server.address")
	c.Server.ShutdownTimeout = conf.GetDuration("server.shutdownTimeout")
	c.Mail.SendgridApiKey = conf.GetString("mail.sendgridApiKey")
	c.Mail.DefaultFromName = conf.GetString("mail.defaultFromName")
	c.Mail.DefaultFromEmail = conf.GetString("mail.defaultFromEmail")
	return c
}
