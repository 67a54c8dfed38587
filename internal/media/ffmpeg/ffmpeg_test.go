package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewCLIWithBinary(t *testing.T) {
	cli := NewCLI(WithBinary("/opt/ffmpeg"))
	if cli.binary != "/opt/ffmpeg" {
		t.Fatalf("expected binary override to be applied, got %q", cli.binary)
	}
	if cli := NewCLI(WithBinary("  ")); cli.binary != "ffmpeg" {
		t.Fatalf("blank override must keep the default, got %q", cli.binary)
	}
}

func TestDownmixRequiresPaths(t *testing.T) {
	cli := NewCLI()
	if _, err := cli.Downmix(context.Background(), "", "/tmp/out.mkv"); err == nil {
		t.Fatal("expected error when input path is empty")
	}
	if _, err := cli.Downmix(context.Background(), "/media/movie.mkv", ""); err == nil {
		t.Fatal("expected error when output path is empty")
	}
}

func TestDownmixArguments(t *testing.T) {
	var capturedArgs []string
	setHelperCommand(t, "success", &capturedArgs)

	cli := NewCLI()
	dir := t.TempDir()
	input := filepath.Join(dir, "movie.mkv")
	output := filepath.Join(dir, "movie.stereo.mkv")

	if _, err := cli.Downmix(context.Background(), input, output); err != nil {
		t.Fatalf("Downmix returned error: %v", err)
	}

	if len(capturedArgs) != 11 {
		t.Fatalf("unexpected argument count %d: %v", len(capturedArgs), capturedArgs)
	}
	wantPrefix := []string{"-i", input, "-hide_banner", "-loglevel", "error", "-y", "-c:v", "copy", "-ac", "2"}
	for i, want := range wantPrefix {
		if capturedArgs[i] != want {
			t.Fatalf("arg %d: expected %q, got %q (args %v)", i, want, capturedArgs[i], capturedArgs)
		}
	}

	scratch := capturedArgs[len(capturedArgs)-1]
	if filepath.Dir(scratch) != dir {
		t.Fatalf("scratch file must live next to the destination, got %q", scratch)
	}
	if !strings.HasPrefix(filepath.Base(scratch), ".downmix-") {
		t.Fatalf("unexpected scratch name %q", scratch)
	}
	if !strings.HasSuffix(scratch, ".mkv") {
		t.Fatalf("scratch name must keep the container extension, got %q", scratch)
	}
}

func TestDownmixRenamesOnSuccess(t *testing.T) {
	var capturedArgs []string
	setHelperCommand(t, "success", &capturedArgs)

	cli := NewCLI()
	dir := t.TempDir()
	output := filepath.Join(dir, "out.mkv")

	warning, err := cli.Downmix(context.Background(), filepath.Join(dir, "in.mkv"), output)
	if err != nil {
		t.Fatalf("Downmix returned error: %v", err)
	}
	if warning != "" {
		t.Fatalf("expected no warning, got %q", warning)
	}

	if _, err := os.Stat(output); err != nil {
		t.Fatalf("expected output file at %q: %v", output, err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".downmix-") {
			t.Fatalf("scratch file %q left behind", entry.Name())
		}
	}
}

func TestDownmixSurfacesWarnings(t *testing.T) {
	var capturedArgs []string
	setHelperCommand(t, "warning", &capturedArgs)

	cli := NewCLI()
	dir := t.TempDir()

	warning, err := cli.Downmix(context.Background(), filepath.Join(dir, "in.mkv"), filepath.Join(dir, "out.mkv"))
	if err != nil {
		t.Fatalf("zero-exit run with stderr noise must succeed, got %v", err)
	}
	if !strings.Contains(warning, "timestamp discontinuity") {
		t.Fatalf("expected stderr surfaced as warning, got %q", warning)
	}
}

func TestDownmixFailureRemovesScratch(t *testing.T) {
	var capturedArgs []string
	setHelperCommand(t, "failure", &capturedArgs)

	cli := NewCLI()
	dir := t.TempDir()
	output := filepath.Join(dir, "out.mkv")

	_, err := cli.Downmix(context.Background(), filepath.Join(dir, "in.mkv"), output)
	if err == nil {
		t.Fatal("expected downmix failure")
	}
	if !strings.Contains(err.Error(), "Invalid data found") {
		t.Fatalf("expected captured stderr in error, got %v", err)
	}

	if _, statErr := os.Stat(output); !os.IsNotExist(statErr) {
		t.Fatalf("destination must not exist after failure, stat err: %v", statErr)
	}
	entries, readErr := os.ReadDir(dir)
	if readErr != nil {
		t.Fatalf("read dir: %v", readErr)
	}
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".downmix-") {
			t.Fatalf("scratch file %q left behind after failure", entry.Name())
		}
	}
}

func setHelperCommand(t *testing.T, mode string, captured *[]string) {
	t.Helper()
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		*captured = append([]string(nil), args...)
		cmd := exec.CommandContext(ctx, os.Args[0], "-test.run=TestHelperProcess")
		cmd.Env = append(os.Environ(),
			"GO_WANT_HELPER_PROCESS=1",
			fmt.Sprintf("FFMPEG_HELPER_MODE=%s", mode),
			fmt.Sprintf("FFMPEG_HELPER_OUT=%s", args[len(args)-1]),
		)
		return cmd
	}
	t.Cleanup(func() {
		commandContext = original
	})
}

func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}

	switch os.Getenv("FFMPEG_HELPER_MODE") {
	case "success":
		_ = os.WriteFile(os.Getenv("FFMPEG_HELPER_OUT"), []byte("stereo"), 0o644)
		os.Exit(0)
	case "warning":
		_ = os.WriteFile(os.Getenv("FFMPEG_HELPER_OUT"), []byte("stereo"), 0o644)
		fmt.Fprintln(os.Stderr, "timestamp discontinuity detected")
		os.Exit(0)
	case "failure":
		fmt.Fprintln(os.Stderr, "Invalid data found when processing input")
		os.Exit(1)
	default:
		os.Exit(0)
	}
}
