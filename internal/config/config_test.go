package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Bus.Servers[0] != "nats://localhost:4222" {
		t.Fatalf("expected default server, got %v", cfg.Bus.Servers)
	}
	if cfg.Aligner.Command != "rhubarb" {
		t.Fatalf("expected default aligner command, got %q", cfg.Aligner.Command)
	}
	if cfg.Aligner.ExtendedShapes != "GHX" {
		t.Fatalf("expected default extended shapes, got %q", cfg.Aligner.ExtendedShapes)
	}
	if cfg.Refine.SilencePercentile != 0.18 {
		t.Fatalf("expected default silence percentile, got %v", cfg.Refine.SilencePercentile)
	}
	if cfg.Audio.HopMS != 10 {
		t.Fatalf("expected default hop, got %d", cfg.Audio.HopMS)
	}
	if cfg.Engine.AllowPhonemeFallback {
		t.Fatal("phoneme fallback should be off by default")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vaani.yaml")
	body := `
aligner:
  command: /opt/rhubarb/rhubarb
  timeout_ms: 30000
refine:
  snap_tolerance_ms: 80
engine:
  default_language: hi
  allow_phoneme_fallback: true
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Aligner.Command != "/opt/rhubarb/rhubarb" {
		t.Fatalf("expected aligner command from file, got %q", cfg.Aligner.Command)
	}
	if cfg.Aligner.TimeoutMS != 30000 {
		t.Fatalf("expected timeout from file, got %d", cfg.Aligner.TimeoutMS)
	}
	if cfg.Refine.SnapToleranceMS != 80 {
		t.Fatalf("expected snap tolerance from file, got %d", cfg.Refine.SnapToleranceMS)
	}
	if cfg.Engine.DefaultLanguage != "hi" {
		t.Fatalf("expected default language from file, got %q", cfg.Engine.DefaultLanguage)
	}
	if !cfg.Engine.AllowPhonemeFallback {
		t.Fatal("expected phoneme fallback enabled from file")
	}
	// untouched sections keep defaults
	if cfg.Refine.MinCueMS != 40 {
		t.Fatalf("expected default min cue, got %d", cfg.Refine.MinCueMS)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("VAANI_BUS_SERVERS", "nats://one:4222, nats://two:4222")
	t.Setenv("VAANI_BUS_USERNAME", "alice")
	t.Setenv("VAANI_BUS_PASSWORD", "secret")
	t.Setenv("VAANI_BUS_TLS_INSECURE", "true")
	t.Setenv("VAANI_BUS_CONNECT_TIMEOUT_MS", "5000")
	t.Setenv("VAANI_EVENT_STORE_PATH", "./tmp.db")
	t.Setenv("VAANI_EVENT_STORE_RETENTION_MODE", "persistent")
	t.Setenv("VAANI_EVENT_STORE_RETENTION_DAYS", "7")
	t.Setenv("VAANI_EVENT_STORE_MAX_ALIGNMENTS", "123")
	t.Setenv("VAANI_EVENT_STORE_VACUUM_ON_START", "true")
	t.Setenv("VAANI_ALIGNER_COMMAND", "/usr/local/bin/rhubarb")
	t.Setenv("VAANI_ALIGNER_TIMEOUT_MS", "45000")
	t.Setenv("VAANI_AUDIO_HOP_MS", "8")
	t.Setenv("VAANI_REFINE_SILENCE_PERCENTILE", "0.2")
	t.Setenv("VAANI_REFINE_MIN_CUE_MS", "30")
	t.Setenv("VAANI_ENGINE_DEFAULT_LANGUAGE", "kn")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(cfg.Bus.Servers) != 2 {
		t.Fatalf("expected 2 servers, got %v", cfg.Bus.Servers)
	}
	if cfg.Bus.Username != "alice" || cfg.Bus.Password != "secret" {
		t.Fatalf("expected credentials override")
	}
	if !cfg.Bus.TLSInsecure {
		t.Fatal("expected tls insecure override true")
	}
	if cfg.Bus.ConnectTimeout != 5000 {
		t.Fatalf("expected timeout 5000, got %d", cfg.Bus.ConnectTimeout)
	}
	if cfg.EventStore.Path != "./tmp.db" {
		t.Fatalf("expected event store path override")
	}
	if cfg.EventStore.RetentionMode != "persistent" {
		t.Fatalf("expected event store retention mode override")
	}
	if cfg.EventStore.RetentionDays != 7 {
		t.Fatalf("expected event store retention days override")
	}
	if cfg.EventStore.MaxAlignments != 123 {
		t.Fatalf("expected event store max alignments override")
	}
	if !cfg.EventStore.VacuumOnStart {
		t.Fatalf("expected event store vacuum flag override")
	}
	if cfg.Aligner.Command != "/usr/local/bin/rhubarb" {
		t.Fatalf("expected aligner command override, got %q", cfg.Aligner.Command)
	}
	if cfg.Aligner.TimeoutMS != 45000 {
		t.Fatalf("expected aligner timeout override, got %d", cfg.Aligner.TimeoutMS)
	}
	if cfg.Audio.HopMS != 8 {
		t.Fatalf("expected hop override, got %d", cfg.Audio.HopMS)
	}
	if cfg.Refine.SilencePercentile != 0.2 {
		t.Fatalf("expected silence percentile override, got %v", cfg.Refine.SilencePercentile)
	}
	if cfg.Refine.MinCueMS != 30 {
		t.Fatalf("expected min cue override, got %d", cfg.Refine.MinCueMS)
	}
	if cfg.Engine.DefaultLanguage != "kn" {
		t.Fatalf("expected default language override, got %q", cfg.Engine.DefaultLanguage)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := map[string]func(*Config){
		"empty aligner command": func(c *Config) { c.Aligner.Command = " " },
		"zero aligner timeout":  func(c *Config) { c.Aligner.TimeoutMS = 0 },
		"oversized hop":         func(c *Config) { c.Audio.HopMS = 25 },
		"percentile above one":  func(c *Config) { c.Refine.SilencePercentile = 1.5 },
		"bad retention mode":    func(c *Config) { c.EventStore.RetentionMode = "forever" },
		"empty language":        func(c *Config) { c.Engine.DefaultLanguage = "" },
	}
	for name, mutate := range cases {
		cfg := Default()
		mutate(&cfg)
		if err := validate(cfg); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}
