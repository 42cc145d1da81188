package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config carries the CLI's environment-sourced defaults. Flags take
// precedence over all of these.
type Config struct {
	DB_URI        string `mapstructure:"DB_URI"`
	REGISTRY_ROOT string `mapstructure:"REGISTRY_ROOT"`
	TABLE_NAME    string `mapstructure:"TABLE_NAME"`
	LOG_LEVEL     string `mapstructure:"LOG_LEVEL"`
	SQL_LOG_LEVEL string `mapstructure:"SQL_LOG_LEVEL"`
}

// Get reads configuration from an optional config.env file and the process
// environment.
func Get() *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("env")
	viper.AddConfigPath("/etc/mlflow-deploy")
	viper.AddConfigPath(".")

	viper.SetEnvPrefix("MLFLOW_DEPLOY")
	viper.AutomaticEnv()

	// Register keys so AutomaticEnv finds them without a config file.
	for _, key := range []string{"DB_URI", "REGISTRY_ROOT", "TABLE_NAME", "LOG_LEVEL", "SQL_LOG_LEVEL"} {
		viper.SetDefault(key, "")
	}

	if err := viper.ReadInConfig(); err != nil {
		// A config file is optional for the CLI; flags and env cover it.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Fatalf("Error reading config: %v", err)
		}
	}

	config := Config{}
	if err := viper.Unmarshal(&config); err != nil {
		log.Fatal("Cannot load config:", err)
	}
	return &config
}
