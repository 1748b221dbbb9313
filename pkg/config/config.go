package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/limaJavier/classcsp/pkg/csp"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Environment variables read by Load start with this prefix (e.g. TIMETABLE_SOLVER_MAX_NODES)
const EnvPrefix = "TIMETABLE"

type Config struct {
	Env         string
	Log         LogConfig
	Solver      SolverConfig
	MetricsFile string // Prometheus text file written after every run, none if empty
}

type LogConfig struct {
	Level  string
	Format string
}

type SolverConfig struct {
	RoomPolicy           string
	Propagation          string
	MaxNodes             uint64
	Timeout              time.Duration
	HoursPerSlot         uint64
	DefaultMaxDailyHours uint64
	Precheck             bool
}

// Options converts the solver section into solver options. They are validated by the solver
func (cfg SolverConfig) Options() csp.Options {
	return csp.Options{
		RoomPolicy:           csp.RoomPolicy(cfg.RoomPolicy),
		Propagation:          csp.PropagationMode(cfg.Propagation),
		MaxNodes:             cfg.MaxNodes,
		Timeout:              cfg.Timeout,
		HoursPerSlot:         cfg.HoursPerSlot,
		DefaultMaxDailyHours: cfg.DefaultMaxDailyHours,
		Precheck:             cfg.Precheck,
	}
}

// Load resolves the configuration from, by increasing priority, defaults, the optional config file,
// the environment (a .env file included) and whatever flags were bound to v
func Load(v *viper.Viper, configFile string) (*Config, error) {
	_ = godotenv.Load()

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("cannot read config file %v: %w", configFile, err)
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("env")
	cfg.MetricsFile = v.GetString("metrics_file")

	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}

	timeout, err := parseDuration(v.GetString("solver.timeout"))
	if err != nil {
		return nil, fmt.Errorf("invalid solver.timeout: %w", err)
	}

	cfg.Solver = SolverConfig{
		RoomPolicy:           v.GetString("solver.room_policy"),
		Propagation:          v.GetString("solver.propagation"),
		MaxNodes:             v.GetUint64("solver.max_nodes"),
		Timeout:              timeout,
		HoursPerSlot:         v.GetUint64("solver.hours_per_slot"),
		DefaultMaxDailyHours: v.GetUint64("solver.default_max_daily_hours"),
		Precheck:             v.GetBool("solver.precheck"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	defaults := csp.DefaultOptions()

	v.SetDefault("env", EnvDevelopment)
	v.SetDefault("metrics_file", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("solver.room_policy", string(defaults.RoomPolicy))
	v.SetDefault("solver.propagation", string(defaults.Propagation))
	v.SetDefault("solver.max_nodes", defaults.MaxNodes)
	v.SetDefault("solver.timeout", "0s")
	v.SetDefault("solver.hours_per_slot", defaults.HoursPerSlot)
	v.SetDefault("solver.default_max_daily_hours", defaults.DefaultMaxDailyHours)
	v.SetDefault("solver.precheck", defaults.Precheck)
}

// An empty value means no timeout
func parseDuration(value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	return time.ParseDuration(value)
}
