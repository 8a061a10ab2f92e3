package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/yndnr/tracklog-go/internal/core/domain"
	"github.com/yndnr/tracklog-go/internal/core/service"
	"github.com/yndnr/tracklog-go/internal/storage/snapshot"
	"github.com/yndnr/tracklog-go/internal/telemetry/logger"
)

func writeConfig(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

const baseConfig = `
storage:
  location_dir: %s
  data_dir: %s
security:
  password: first
log:
  level: info
users:
  u1: { first_name: Ada, last_name: Lovelace, avatar: ada.png }
places:
  home: { lat: 10, long: 20, radius: 100 }
`

func TestLoadConfigAndBuildDirectory(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "config.yaml")
	writeConfig(t, path, sprintfConfig(root, baseConfig))

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	dir, err := buildDirectory(cfg)
	if err != nil {
		t.Fatalf("buildDirectory: %v", err)
	}

	if !dir.Verifier.Verify("first") {
		t.Error("configured password rejected")
	}
	if _, ok := dir.Users["u1"]; !ok {
		t.Error("user u1 missing")
	}
	place, err := dir.Places.Resolve(10, 20)
	if err != nil || place == nil || place.Name != "home" {
		t.Fatalf("Resolve = %v, %v; want home", place, err)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeConfig(t, path, "storage:\n  location_window: -1s\n")

	if _, err := loadConfig(path); err == nil {
		t.Fatal("loadConfig accepted an invalid configuration")
	}
}

func TestConfigReloader_ReloadConfig(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "config.yaml")
	writeConfig(t, path, sprintfConfig(root, baseConfig))

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	dir, err := buildDirectory(cfg)
	if err != nil {
		t.Fatalf("buildDirectory: %v", err)
	}
	locations, err := snapshot.New[domain.LocationSnapshot](snapshot.Config{Dir: cfg.Storage.LocationDir, Window: time.Hour})
	if err != nil {
		t.Fatalf("snapshot.New: %v", err)
	}
	data, err := snapshot.New[domain.UserDataSnapshot](snapshot.Config{Dir: cfg.Storage.DataDir, Window: time.Hour})
	if err != nil {
		t.Fatalf("snapshot.New: %v", err)
	}
	tracking := service.NewTrackingService(locations, data, dir, nil)

	r := &configReloader{path: path, tracking: tracking, logger: slog.New(slog.DiscardHandler)}
	t.Cleanup(func() { logger.SetLevel("info") })

	updated := sprintfConfig(root, baseConfig)
	updated = replaceOnce(updated, "password: first", "password: second")
	updated = replaceOnce(updated, "level: info", "level: debug")
	writeConfig(t, path, updated)
	r.reloadConfig()

	got := tracking.Directory()
	if got.Verifier.Verify("first") || !got.Verifier.Verify("second") {
		t.Error("password not reloaded")
	}
	if lvl := logger.GetLevel(); lvl != "debug" {
		t.Errorf("log level = %q, want debug", lvl)
	}

	writeConfig(t, path, "security: [broken")
	r.reloadConfig()
	if tracking.Directory() != got {
		t.Error("broken config replaced the running directory")
	}
}

func sprintfConfig(root, tmpl string) string {
	return fmt.Sprintf(tmpl, filepath.Join(root, "location"), filepath.Join(root, "data"))
}

func replaceOnce(s, from, to string) string {
	return strings.Replace(s, from, to, 1)
}
