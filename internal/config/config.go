package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type TelemetryConfig struct {
	LogLevel       string `yaml:"log_level"`
	OTLPEndpoint   string `yaml:"otlp_endpoint"`
	OTLPInsecure   bool   `yaml:"otlp_insecure"`
	PrometheusBind string `yaml:"prometheus_bind"`
}

type HTTPConfig struct {
	Bind string `yaml:"bind"`
	Port int    `yaml:"port"`
}

type BusConfig struct {
	Embedded       bool     `yaml:"embedded"`
	Port           int      `yaml:"port"`
	StoreDir       string   `yaml:"store_dir"`
	Servers        []string `yaml:"servers"`
	Username       string   `yaml:"username"`
	Password       string   `yaml:"password"`
	Token          string   `yaml:"token"`
	TLSInsecure    bool     `yaml:"tls_insecure"`
	ConnectTimeout int      `yaml:"connect_timeout_ms"`
}

type EventStoreConfig struct {
	Path          string `yaml:"path"`
	RetentionMode string `yaml:"retention_mode"`
	RetentionDays int    `yaml:"retention_days"`
	MaxAlignments int    `yaml:"max_alignments"`
	VacuumOnStart bool   `yaml:"vacuum_on_start"`
}

// AlignerConfig controls the external forced-alignment tool subprocess.
type AlignerConfig struct {
	Command        string `yaml:"command"`
	FFmpegCommand  string `yaml:"ffmpeg_command"`
	TimeoutMS      int    `yaml:"timeout_ms"`
	ExtendedShapes string `yaml:"extended_shapes"`
	WorkDir        string `yaml:"work_dir"`
}

// AudioConfig controls the independent audio feature analysis.
type AudioConfig struct {
	HopMS int `yaml:"hop_ms"`
}

// RefineConfig carries the tunable cue refinement thresholds. The defaults
// were chosen against real recordings; they are starting points, not
// contracts.
type RefineConfig struct {
	SilencePercentile float64 `yaml:"silence_percentile"`
	SnapToleranceMS   int     `yaml:"snap_tolerance_ms"`
	MinCueMS          int     `yaml:"min_cue_ms"`
}

// EngineConfig controls strategy routing behavior.
type EngineConfig struct {
	DefaultLanguage      string `yaml:"default_language"`
	AllowPhonemeFallback bool   `yaml:"allow_phoneme_fallback"`
}

type Config struct {
	RuntimeName string           `yaml:"runtime_name"`
	Environment string           `yaml:"environment"`
	HTTP        HTTPConfig       `yaml:"http"`
	Telemetry   TelemetryConfig  `yaml:"telemetry"`
	Bus         BusConfig        `yaml:"bus"`
	EventStore  EventStoreConfig `yaml:"event_store"`
	Aligner     AlignerConfig    `yaml:"aligner"`
	Audio       AudioConfig      `yaml:"audio"`
	Refine      RefineConfig     `yaml:"refine"`
	Engine      EngineConfig     `yaml:"engine"`
}

func Default() Config {
	return Config{
		RuntimeName: "vaani-runtime",
		Environment: "development",
		HTTP: HTTPConfig{
			Bind: "0.0.0.0",
			Port: 8080,
		},
		Telemetry: TelemetryConfig{
			LogLevel:       "info",
			OTLPEndpoint:   "",
			OTLPInsecure:   true,
			PrometheusBind: ":9091",
		},
		Bus: BusConfig{
			Embedded:       true,
			Port:           4222,
			StoreDir:       "./data/nats",
			Servers:        []string{"nats://localhost:4222"},
			ConnectTimeout: 2000,
		},
		EventStore: EventStoreConfig{
			Path:          "./data/vaani-alignments.db",
			RetentionMode: "session",
			RetentionDays: 30,
			MaxAlignments: 10000,
		},
		Aligner: AlignerConfig{
			Command:        "rhubarb",
			FFmpegCommand:  "ffmpeg",
			TimeoutMS:      90000,
			ExtendedShapes: "GHX",
		},
		Audio: AudioConfig{
			HopMS: 10,
		},
		Refine: RefineConfig{
			SilencePercentile: 0.18,
			SnapToleranceMS:   60,
			MinCueMS:          40,
		},
		Engine: EngineConfig{
			DefaultLanguage:      "en",
			AllowPhonemeFallback: false,
		},
	}
}

func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return cfg, fmt.Errorf("config file not found: %w", err)
			}
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	if err := validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	overrideString(&cfg.RuntimeName, "VAANI_RUNTIME_NAME")
	overrideString(&cfg.Environment, "VAANI_RUNTIME_ENVIRONMENT")
	overrideString(&cfg.HTTP.Bind, "VAANI_HTTP_BIND")
	overrideInt(&cfg.HTTP.Port, "VAANI_HTTP_PORT")
	overrideString(&cfg.Telemetry.LogLevel, "VAANI_TELEMETRY_LOG_LEVEL")
	overrideString(&cfg.Telemetry.OTLPEndpoint, "VAANI_TELEMETRY_OTLP_ENDPOINT")
	overrideBool(&cfg.Telemetry.OTLPInsecure, "VAANI_TELEMETRY_OTLP_INSECURE")
	overrideString(&cfg.Telemetry.PrometheusBind, "VAANI_TELEMETRY_PROMETHEUS_BIND")
	overrideBool(&cfg.Bus.Embedded, "VAANI_BUS_EMBEDDED")
	overrideInt(&cfg.Bus.Port, "VAANI_BUS_PORT")
	overrideString(&cfg.Bus.StoreDir, "VAANI_BUS_STORE_DIR")
	overrideStringSlice(&cfg.Bus.Servers, "VAANI_BUS_SERVERS")
	overrideString(&cfg.Bus.Username, "VAANI_BUS_USERNAME")
	overrideString(&cfg.Bus.Password, "VAANI_BUS_PASSWORD")
	overrideString(&cfg.Bus.Token, "VAANI_BUS_TOKEN")
	overrideBool(&cfg.Bus.TLSInsecure, "VAANI_BUS_TLS_INSECURE")
	overrideInt(&cfg.Bus.ConnectTimeout, "VAANI_BUS_CONNECT_TIMEOUT_MS")
	overrideString(&cfg.EventStore.Path, "VAANI_EVENT_STORE_PATH")
	overrideString(&cfg.EventStore.RetentionMode, "VAANI_EVENT_STORE_RETENTION_MODE")
	overrideInt(&cfg.EventStore.RetentionDays, "VAANI_EVENT_STORE_RETENTION_DAYS")
	overrideInt(&cfg.EventStore.MaxAlignments, "VAANI_EVENT_STORE_MAX_ALIGNMENTS")
	overrideBool(&cfg.EventStore.VacuumOnStart, "VAANI_EVENT_STORE_VACUUM_ON_START")
	overrideString(&cfg.Aligner.Command, "VAANI_ALIGNER_COMMAND")
	overrideString(&cfg.Aligner.FFmpegCommand, "VAANI_ALIGNER_FFMPEG_COMMAND")
	overrideInt(&cfg.Aligner.TimeoutMS, "VAANI_ALIGNER_TIMEOUT_MS")
	overrideString(&cfg.Aligner.ExtendedShapes, "VAANI_ALIGNER_EXTENDED_SHAPES")
	overrideString(&cfg.Aligner.WorkDir, "VAANI_ALIGNER_WORK_DIR")
	overrideInt(&cfg.Audio.HopMS, "VAANI_AUDIO_HOP_MS")
	overrideFloat(&cfg.Refine.SilencePercentile, "VAANI_REFINE_SILENCE_PERCENTILE")
	overrideInt(&cfg.Refine.SnapToleranceMS, "VAANI_REFINE_SNAP_TOLERANCE_MS")
	overrideInt(&cfg.Refine.MinCueMS, "VAANI_REFINE_MIN_CUE_MS")
	overrideString(&cfg.Engine.DefaultLanguage, "VAANI_ENGINE_DEFAULT_LANGUAGE")
	overrideBool(&cfg.Engine.AllowPhonemeFallback, "VAANI_ENGINE_ALLOW_PHONEME_FALLBACK")
}

func overrideString(target *string, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok && strings.TrimSpace(value) != "" {
		*target = value
	}
}

func overrideInt(target *int, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			*target = parsed
		}
	}
}

func overrideBool(target *bool, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		if parsed, err := strconv.ParseBool(value); err == nil {
			*target = parsed
		}
	}
}

func overrideFloat(target *float64, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			*target = parsed
		}
	}
}

func overrideStringSlice(target *[]string, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		parts := strings.Split(value, ",")
		var trimmed []string
		for _, p := range parts {
			if s := strings.TrimSpace(p); s != "" {
				trimmed = append(trimmed, s)
			}
		}
		if len(trimmed) > 0 {
			*target = trimmed
		}
	}
}

func validate(cfg Config) error {
	if cfg.RuntimeName == "" {
		return errors.New("runtime_name must not be empty")
	}
	if cfg.HTTP.Port <= 0 || cfg.HTTP.Port > 65535 {
		return errors.New("http.port must be between 1 and 65535")
	}
	if cfg.Bus.Embedded {
		if cfg.Bus.Port <= 0 || cfg.Bus.Port > 65535 {
			return errors.New("bus.port must be between 1 and 65535 when embedded mode is enabled")
		}
	} else if len(cfg.Bus.Servers) == 0 {
		return errors.New("bus.servers must not be empty when embedded mode is disabled")
	}
	if cfg.EventStore.Path == "" {
		return errors.New("event_store.path must not be empty")
	}
	switch cfg.EventStore.RetentionMode {
	case "ephemeral", "session", "persistent":
	default:
		return errors.New("event_store.retention_mode must be one of ephemeral, session, persistent")
	}
	if cfg.EventStore.RetentionDays < 0 {
		return errors.New("event_store.retention_days must be >= 0")
	}
	if cfg.Telemetry.PrometheusBind == "" {
		return errors.New("telemetry.prometheus_bind must not be empty")
	}
	if strings.TrimSpace(cfg.Aligner.Command) == "" {
		return errors.New("aligner.command must not be empty")
	}
	if cfg.Aligner.TimeoutMS <= 0 {
		return errors.New("aligner.timeout_ms must be positive")
	}
	if cfg.Audio.HopMS <= 0 || cfg.Audio.HopMS > 12 {
		return errors.New("audio.hop_ms must be between 1 and 12")
	}
	if cfg.Refine.SilencePercentile < 0 || cfg.Refine.SilencePercentile > 1 {
		return errors.New("refine.silence_percentile must be between 0 and 1")
	}
	if cfg.Refine.SnapToleranceMS < 0 {
		return errors.New("refine.snap_tolerance_ms must be >= 0")
	}
	if cfg.Refine.MinCueMS < 0 {
		return errors.New("refine.min_cue_ms must be >= 0")
	}
	if cfg.Engine.DefaultLanguage == "" {
		return errors.New("engine.default_language must not be empty")
	}
	return nil
}
