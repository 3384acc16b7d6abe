package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// EnergyDefaults is the server-side baseline parameter set for the
// cost/emissions comparison. Prices are EUR, consumptions L/100km,
// CO2 factors g/km.
type EnergyDefaults struct {
	ElectricityPrice    float64 `yaml:"electricity_price"`
	GasolinePrice       float64 `yaml:"gasoline_price"`
	DieselPrice         float64 `yaml:"diesel_price"`
	GasolineConsumption float64 `yaml:"gasoline_consumption"`
	DieselConsumption   float64 `yaml:"diesel_consumption"`
	CO2Gasoline         float64 `yaml:"co2_gasoline"`
	CO2Diesel           float64 `yaml:"co2_diesel"`
}

// Config holds application configuration
type Config struct {
	Port       string         `yaml:"port"`
	DBPath     string         `yaml:"db_path"`
	UploadDir  string         `yaml:"upload_dir"`
	AuthSecret string         `yaml:"auth_secret"`
	Timezone   string         `yaml:"timezone"`
	Energy     EnergyDefaults `yaml:"energy"`
}

// Load builds the configuration from defaults, an optional YAML file
// (CONFIG_PATH) and environment variable overrides, in that order.
func Load() (*Config, error) {
	cfg := &Config{
		Port:      ":8080",
		DBPath:    "./data/historical.db",
		UploadDir: "./uploads",
		Timezone:  "Europe/Madrid",
		Energy: EnergyDefaults{
			ElectricityPrice:    0.15,
			GasolinePrice:       1.50,
			DieselPrice:         1.40,
			GasolineConsumption: 7.0,
			DieselConsumption:   5.5,
			CO2Gasoline:         120,
			CO2Diesel:           95,
		},
	}

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnv(cfg)

	if cfg.Port != "" && cfg.Port[0] != ':' {
		cfg.Port = ":" + cfg.Port
	}

	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Port = v
	}
	if v := os.Getenv("DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("UPLOAD_DIR"); v != "" {
		cfg.UploadDir = v
	}
	if v := os.Getenv("AUTH_SECRET"); v != "" {
		cfg.AuthSecret = v
	}
	if v := os.Getenv("TIMEZONE"); v != "" {
		cfg.Timezone = v
	}

	envFloat("ELECTRICITY_PRICE", &cfg.Energy.ElectricityPrice)
	envFloat("GASOLINE_PRICE", &cfg.Energy.GasolinePrice)
	envFloat("DIESEL_PRICE", &cfg.Energy.DieselPrice)
	envFloat("GASOLINE_CONSUMPTION", &cfg.Energy.GasolineConsumption)
	envFloat("DIESEL_CONSUMPTION", &cfg.Energy.DieselConsumption)
	envFloat("CO2_GASOLINE", &cfg.Energy.CO2Gasoline)
	envFloat("CO2_DIESEL", &cfg.Energy.CO2Diesel)
}

func envFloat(key string, dst *float64) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return
	}
	*dst = f
}
