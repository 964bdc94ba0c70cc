package internal

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/Netflix/go-env"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

var validate = validator.New()

type Config struct {
	LogLevel           string        `env:"LOG_LEVEL,default=INFO" validate:"oneof=DEBUG INFO WARN ERROR"`
	Host               string        `env:"HOST,default=localhost" validate:"required"`
	Port               int           `env:"PORT,default=8080" validate:"min=1,max=65535"`
	BadgerFilepath     string        `env:"BADGER_FILEPATH,required=true" validate:"required"`
	IncidentLimit      *int          `env:"INCIDENT_LIMIT" validate:"omitempty,min=1"`
	MuteTickInterval   time.Duration `env:"MUTE_TICK_INTERVAL,default=1s" validate:"gt=0"`
	HealthSyncInterval time.Duration `env:"HEALTH_SYNC_INTERVAL,default=5s" validate:"gt=0"`
	StatusColours      bool          `env:"STATUS_COLOURS,default=true"`
}

// LoadConfig reads an optional .env file, then the environment.
// Variables already set in the environment win over the file.
func LoadConfig(files ...string) (Config, error) {
	// Without explicit files only a missing default .env is tolerated.
	err := godotenv.Load(files...)
	if err != nil && (len(files) > 0 || !errors.Is(err, os.ErrNotExist)) {
		return Config{}, fmt.Errorf("loading env files: %w", err)
	}

	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return Config{}, fmt.Errorf("config error: %w", err)
	}
	if err := validate.Struct(config); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return config, nil
}

func (c Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
