package config

import (
	"os"

	"github.com/spf13/viper"
)

const dotEnvFile = ".env"

type Config struct {
	ProjectDir  string
	RunsDBPath  string
	LogLevel    string
	BindAddr    string
	DefaultMode string
	BatchSize   int
}

// Load reads DATACRAFT_* variables, falling back to a .env file in the
// working directory and then to defaults. Real environment wins over .env.
func Load() *Config {
	v := viper.New()
	v.SetDefault("datacraft_project_dir", ".")
	v.SetDefault("datacraft_runs_db", "./.datacraft/runs.sqlite")
	v.SetDefault("datacraft_log_level", "info")
	v.SetDefault("datacraft_bind_addr", ":8080")
	v.SetDefault("datacraft_default_mode", "create")
	v.SetDefault("datacraft_batch_size", 1000)

	// keys are the full variable names, so env lookup needs no prefix
	v.AutomaticEnv()

	if _, err := os.Stat(dotEnvFile); err == nil {
		v.SetConfigFile(dotEnvFile)
		v.SetConfigType("env")
		// a malformed .env is ignored like a missing one
		_ = v.ReadInConfig()
	}

	batch := v.GetInt("datacraft_batch_size")
	if batch <= 0 {
		batch = 1000
	}

	return &Config{
		ProjectDir:  v.GetString("datacraft_project_dir"),
		RunsDBPath:  v.GetString("datacraft_runs_db"),
		LogLevel:    v.GetString("datacraft_log_level"),
		BindAddr:    v.GetString("datacraft_bind_addr"),
		DefaultMode: v.GetString("datacraft_default_mode"),
		BatchSize:   batch,
	}
}
