package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"Erosion/internal/calc/engine"
	"Erosion/internal/calc/risk"
	"Erosion/internal/calc/system"

	"github.com/joho/godotenv"
	"gopkg.in/ini.v1"
)

// DefaultPath is the settings file read when none is given.
const DefaultPath = "conf/erosion.ini"

type Server struct {
	Addr            string
	TLSCert         string
	TLSKey          string
	ShutdownTimeout time.Duration
	RateLimit       float64 // requests per second per client address
	RateBurst       int
	MaxBatch        int
	AllowedOrigin   string
	InsecureCookies bool
}

type Log struct {
	Level  string
	Format string
}

type Storage struct {
	Driver      string // postgres or memory
	DatabaseURL string
}

type Config struct {
	Server     Server
	Log        Log
	Storage    Storage
	Engine     engine.Config
	TablesPath string // empty selects the embedded curve tables
	TokenKey   string
}

// Load reads .env into the environment, then the ini file at path. Missing files leave the
// defaults in place. Environment variables override the file.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	file := ini.Empty()
	if _, err := os.Stat(path); path != "" && err == nil {
		f, err := ini.Load(path)
		if err != nil {
			return Config{}, fmt.Errorf("load %s: %w", path, err)
		}
		file = f
	}
	cfg, err := parse(file)
	if err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	overrideFromEnv(&cfg)
	return cfg, cfg.Validate()
}

func floats(key *ini.Key, def []float64) ([]float64, error) {
	if key.String() == "" {
		return def, nil
	}
	v, err := key.StrictFloat64s(",")
	if err != nil {
		return nil, fmt.Errorf("%s = %q: %w", key.Name(), key.String(), err)
	}
	return v, nil
}

func parse(file *ini.File) (Config, error) {
	def := engine.DefaultConfig()
	srv := file.Section("server")
	lg := file.Section("log")
	st := file.Section("storage")
	eng := file.Section("engine")
	rk := file.Section("risk")
	insp := file.Section("inspection")
	cls := file.Section("erosion_class")

	velocity, err := floats(cls.Key("velocity"), def.Policy.Classes.Velocity)
	if err != nil {
		return Config{}, err
	}
	concentration, err := floats(cls.Key("concentration"), def.Policy.Classes.Concentration)
	if err != nil {
		return Config{}, err
	}

	return Config{
		Server: Server{
			Addr:            srv.Key("addr").MustString(":8080"),
			TLSCert:         srv.Key("tls_cert").String(),
			TLSKey:          srv.Key("tls_key").String(),
			ShutdownTimeout: srv.Key("shutdown_timeout").MustDuration(5 * time.Second),
			RateLimit:       srv.Key("rate_limit").MustFloat64(5),
			RateBurst:       srv.Key("rate_burst").MustInt(10),
			MaxBatch:        srv.Key("max_batch").MustInt(50),
			AllowedOrigin:   srv.Key("allowed_origin").MustString("*"),
			InsecureCookies: srv.Key("insecure_cookies").MustBool(false),
		},
		Log: Log{
			Level:  lg.Key("level").MustString("info"),
			Format: lg.Key("format").MustString("text"),
		},
		Storage: Storage{
			Driver: st.Key("driver").MustString("postgres"),
		},
		Engine: engine.Config{
			Workers:          eng.Key("workers").MustInt(0),
			Digits:           eng.Key("significant_digits").MustInt(def.Digits),
			ProbeMinVelocity: eng.Key("probe_min_velocity").MustFloat64(def.ProbeMinVelocity),
			Thresholds: risk.Thresholds{
				Negligible: rk.Key("negligible").MustFloat64(def.Thresholds.Negligible),
				Low:        rk.Key("low").MustFloat64(def.Thresholds.Low),
				Medium:     rk.Key("medium").MustFloat64(def.Thresholds.Medium),
			},
			Policy: system.Policy{
				Inspection: system.Inspection{
					Fraction: insp.Key("fraction").MustFloat64(def.Policy.Inspection.Fraction),
					Min:      insp.Key("min_years").MustFloat64(def.Policy.Inspection.Min),
					Max:      insp.Key("max_years").MustFloat64(def.Policy.Inspection.Max),
				},
				Classes: system.ClassBounds{
					Velocity:      velocity,
					Concentration: concentration,
				},
			},
		},
		TablesPath: eng.Key("tables").String(),
	}, nil
}

func overrideFromEnv(c *Config) {
	set := func(dst *string, name string) {
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}
	set(&c.Server.Addr, "EROSION_ADDR")
	set(&c.Log.Level, "EROSION_LOG_LEVEL")
	set(&c.Log.Format, "EROSION_LOG_FORMAT")
	set(&c.Storage.Driver, "EROSION_STORAGE")
	set(&c.TablesPath, "EROSION_TABLES")
	set(&c.Storage.DatabaseURL, "DATABASE_URL")
	set(&c.TokenKey, "TOKEN_KEY")
}

func (c Config) Validate() error {
	switch c.Storage.Driver {
	case "postgres", "memory":
	default:
		return fmt.Errorf("storage driver must be postgres or memory, got %q", c.Storage.Driver)
	}
	if (c.Server.TLSCert == "") != (c.Server.TLSKey == "") {
		return errors.New("server tls_cert and tls_key must be set together")
	}
	if c.Server.RateBurst < 1 || c.Server.RateLimit <= 0 {
		return errors.New("server rate_limit and rate_burst must be positive")
	}
	if err := c.Engine.Thresholds.Validate(); err != nil {
		return err
	}
	return c.Engine.Policy.Validate()
}
