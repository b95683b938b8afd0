package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/verte-zerg/studydash/internal/config"
	"github.com/verte-zerg/studydash/internal/model"
)

func TestDefaultConfigTemplateDecodes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("template should decode: %v", err)
	}
	if cfg.API.BaseURL != nil || cfg.Dashboard.Mode != nil || cfg.Server.Addr != nil {
		t.Fatalf("template values should be commented out: %+v", cfg)
	}
}

func TestValidateConfig(t *testing.T) {
	valid := model.Config{BaseURL: "https://cafe.example.com", Mode: model.ModeWeek, Rate: 1}
	if err := validateConfig(valid); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
	cases := []model.Config{
		{BaseURL: "https://x", Mode: "year"},
		{BaseURL: "https://x", Mode: model.ModeWeek, Rate: -1},
		{BaseURL: "https://x", Mode: model.ModeWeek, MemberID: -2},
		{Mode: model.ModeMonth},
	}
	for _, cfg := range cases {
		if err := validateConfig(cfg); err == nil {
			t.Fatalf("expected error for %+v", cfg)
		}
	}
	offline := model.Config{Mode: model.ModeMonth, Offline: true}
	if err := validateConfig(offline); err != nil {
		t.Fatalf("offline config needs no base url, got %v", err)
	}
}
