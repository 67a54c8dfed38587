package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"downmix/internal/history"
)

func writeTestConfig(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	dbPath := filepath.Join(dir, "history.db")
	content := fmt.Sprintf(`
[paths]
log_dir = %q

[history]
enabled = true
path = %q
`, filepath.Join(dir, "logs"), dbPath)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path, dbPath
}

func runCommand(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRootRequiresTwoArguments(t *testing.T) {
	cfgPath, _ := writeTestConfig(t)
	_, _, err := runCommand(t, "--config", cfgPath)
	if err == nil {
		t.Fatal("expected error without input and output paths")
	}
}

func TestRootFailsFastOnMissingTools(t *testing.T) {
	cfgPath, _ := writeTestConfig(t)
	dir := t.TempDir()
	input := filepath.Join(dir, "in.mkv")
	if err := os.WriteFile(input, []byte("data"), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	t.Setenv("PATH", "")

	_, _, err := runCommand(t, "--config", cfgPath, input, filepath.Join(dir, "out.mkv"))
	if err == nil {
		t.Fatal("expected failure when ffprobe/ffmpeg are unavailable")
	}
	if !strings.Contains(err.Error(), "unavailable") {
		t.Fatalf("expected missing-tool error, got %v", err)
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	stdout, _, err := runCommand(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(stdout, target) {
		t.Fatalf("expected init output to name %q, got %q", target, stdout)
	}

	if _, _, err := runCommand(t, "config", "init", "--path", target); err == nil {
		t.Fatal("expected second init without --overwrite to fail")
	}
	if _, _, err := runCommand(t, "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}

	stdout, _, err = runCommand(t, "config", "validate", "--path", target)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	if !strings.Contains(stdout, "Configuration OK") {
		t.Fatalf("expected validation success message, got %q", stdout)
	}
}

func TestConfigShow(t *testing.T) {
	cfgPath, _ := writeTestConfig(t)
	stdout, _, err := runCommand(t, "--config", cfgPath, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(stdout, "[tools]") || !strings.Contains(stdout, "ffprobe") {
		t.Fatalf("expected effective config in output, got %q", stdout)
	}
}

func TestHistoryCommandEmpty(t *testing.T) {
	cfgPath, _ := writeTestConfig(t)
	stdout, _, err := runCommand(t, "--config", cfgPath, "history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(stdout, "No runs recorded.") {
		t.Fatalf("expected empty-history message, got %q", stdout)
	}
}

func TestHistoryCommandListsRuns(t *testing.T) {
	cfgPath, dbPath := writeTestConfig(t)

	// Seed a run directly through the journal.
	store, err := history.Open(dbPath)
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	id, err := store.Begin(t.Context(), "/media/in.mkv", "/media/out.mkv")
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := store.Finish(t.Context(), id, history.Outcome{Channels: []int{6}, Status: history.StatusDownmixed}); err != nil {
		t.Fatalf("finish: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close journal: %v", err)
	}

	stdout, _, err := runCommand(t, "--config", cfgPath, "history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(stdout, "/media/in.mkv") || !strings.Contains(stdout, "downmixed") {
		t.Fatalf("expected seeded run in output, got %q", stdout)
	}
}

func TestDepsCommandReportsMissingTools(t *testing.T) {
	cfgPath, _ := writeTestConfig(t)
	t.Setenv("PATH", "")

	stdout, _, err := runCommand(t, "--config", cfgPath, "deps")
	if err == nil {
		t.Fatal("expected deps to fail when tools are missing")
	}
	if !strings.Contains(stdout, "no") {
		t.Fatalf("expected unavailable rows in table, got %q", stdout)
	}
}

func TestProbeRejectsMissingFile(t *testing.T) {
	cfgPath, _ := writeTestConfig(t)
	_, _, err := runCommand(t, "--config", cfgPath, "probe", filepath.Join(t.TempDir(), "missing.mkv"))
	if err == nil {
		t.Fatal("expected probe to fail for a missing file")
	}
}

func TestYesNo(t *testing.T) {
	if yesNo(true) != "yes" || yesNo(false) != "no" {
		t.Fatal("unexpected yesNo rendering")
	}
}
