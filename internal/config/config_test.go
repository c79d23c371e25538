package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestStripLineComments(t *testing.T) {
	in := []byte("// top\n{\n  // inner\n  \"a\": 1 // kept\n}\n")
	got := string(stripLineComments(in))
	if strings.Contains(got, "top") || strings.Contains(got, "inner") {
		t.Errorf("full-line comments not stripped: %q", got)
	}
	if !strings.Contains(got, "// kept") {
		t.Errorf("inline comment should be left alone: %q", got)
	}
}

func TestLoadFileFirstRunWritesTemplate(t *testing.T) {
	home := t.TempDir()
	cfg, err := LoadFile(home)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.BreakMinutes() != DefaultBreakMinutes {
		t.Errorf("BreakMinutes = %d, want %d", cfg.BreakMinutes(), DefaultBreakMinutes)
	}
	if cfg.Storage.Driver != DriverFile {
		t.Errorf("Driver = %q, want %q", cfg.Storage.Driver, DriverFile)
	}

	// The written template must parse back to the same defaults.
	if _, err := os.Stat(filepath.Join(home, "config.json")); err != nil {
		t.Fatalf("template not written: %v", err)
	}
	again, err := LoadFile(home)
	if err != nil {
		t.Fatalf("LoadFile on template: %v", err)
	}
	if again.BreakMinutes() != 60 || again.Server.Addr != DefaultServerAddr || again.Storage.Driver != DriverFile {
		t.Errorf("template config = %+v", again)
	}
}

func TestLoadFilePartialFillsDefaults(t *testing.T) {
	home := t.TempDir()
	data := "{\n  // only the break\n  \"default_break_minutes\": 0\n}\n"
	if err := os.WriteFile(filepath.Join(home, "config.json"), []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFile(home)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.BreakMinutes() != 0 {
		t.Errorf("explicit zero break = %d, want 0", cfg.BreakMinutes())
	}
	if cfg.Server.Addr != DefaultServerAddr {
		t.Errorf("Addr = %q", cfg.Server.Addr)
	}
	if got, want := cfg.StorePath(), filepath.Join(home, "store.json"); got != want {
		t.Errorf("StorePath = %q, want %q", got, want)
	}
}

func TestLoadFileRejectsBadValues(t *testing.T) {
	tests := map[string]string{
		"negative break": `{"default_break_minutes": -5}`,
		"unknown driver": `{"storage": {"driver": "redis"}}`,
		"bad json":       `{"default_break_minutes": }`,
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			home := t.TempDir()
			if err := os.WriteFile(filepath.Join(home, "config.json"), []byte(data), 0o600); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadFile(home); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	home := t.TempDir()
	t.Setenv(EnvHome, home)
	t.Setenv(EnvDefaultBreak, "45")
	t.Setenv(EnvStorage, DriverSQLite)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Home != home {
		t.Errorf("Home = %q, want %q", cfg.Home, home)
	}
	if cfg.BreakMinutes() != 45 {
		t.Errorf("BreakMinutes = %d, want 45", cfg.BreakMinutes())
	}
	if got, want := cfg.StorePath(), filepath.Join(home, "kintai.db"); got != want {
		t.Errorf("StorePath = %q, want %q", got, want)
	}
}

func TestLoadEnvBadBreak(t *testing.T) {
	t.Setenv(EnvHome, t.TempDir())
	t.Setenv(EnvDefaultBreak, "lunch")
	t.Setenv(EnvStorage, "")
	if _, err := Load(); err == nil {
		t.Error("expected error for non-numeric KINTAI_DEFAULT_BREAK")
	}
}
