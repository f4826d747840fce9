package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Storage.Driver != "sqlite" || cfg.Server.Addr != "127.0.0.1:8080" || cfg.Report.Preset != "QBR" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.ShareTTL() != 168*time.Hour {
		t.Fatalf("share ttl %s", cfg.ShareTTL())
	}
}

func TestFromYAMLKeepsDefaults(t *testing.T) {
	cfg, err := FromYAML([]byte("storage:\n  driver: redis\n  redis:\n    addr: localhost:6379\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Storage.Redis.Addr != "localhost:6379" || cfg.Server.BasePath != "/v0" {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]string{
		"driver":   "storage:\n  driver: mongo\n",
		"postgres": "storage:\n  driver: postgres\n",
		"s3":       "storage:\n  driver: s3\n",
		"ttl":      "share:\n  ttl: soon\n",
		"preset":   "report:\n  preset: MBR\n",
		"log":      "log:\n  mode: loud\n",
	}
	for name, body := range cases {
		if _, err := FromYAML([]byte(body)); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}

func TestLoadOptional(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadOptional(dir)
	if err != nil || cfg.Storage.Driver != "sqlite" {
		t.Fatalf("missing file should give defaults: %v %+v", err, cfg)
	}
	if _, err := Load(dir); err == nil {
		t.Fatalf("Load should fail without a file")
	}
	if err := os.WriteFile(filepath.Join(dir, "successplan.yml"), []byte(GenerateDefault("memory")), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err = Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Storage.Driver != "memory" {
		t.Fatalf("driver %s", cfg.Storage.Driver)
	}
}
