package downmixer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/gofrs/flock"

	"downmix/internal/config"
	"downmix/internal/fileutil"
	"downmix/internal/history"
	"downmix/internal/media/ffmpeg"
	"downmix/internal/media/ffprobe"
)

// Request describes a single downmix invocation.
type Request struct {
	InputPath  string
	OutputPath string
	Force      bool
}

// Result reports what a run found and did.
type Result struct {
	RunID     string
	Channels  []int
	Downmixed bool
}

// ProbeFunc matches ffprobe.Inspect and exists so tests can stub the prober.
type ProbeFunc func(ctx context.Context, binary, path string) (ffprobe.Report, error)

// Downmixer runs the probe, decision, and conditional transcode flow.
type Downmixer struct {
	cfg        *config.Config
	logger     *slog.Logger
	probe      ProbeFunc
	transcoder ffmpeg.Client
	journal    *history.Store
}

// Option configures a Downmixer.
type Option func(*Downmixer)

// WithProbe overrides the prober.
func WithProbe(fn ProbeFunc) Option {
	return func(d *Downmixer) {
		if fn != nil {
			d.probe = fn
		}
	}
}

// WithTranscoder overrides the transcoder client.
func WithTranscoder(client ffmpeg.Client) Option {
	return func(d *Downmixer) {
		if client != nil {
			d.transcoder = client
		}
	}
}

// WithJournal attaches a run journal. Journal failures are logged, never
// allowed to fail a run.
func WithJournal(store *history.Store) Option {
	return func(d *Downmixer) {
		d.journal = store
	}
}

// New constructs a Downmixer wired to the real external tools.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) *Downmixer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	d := &Downmixer{
		cfg:        cfg,
		logger:     logger,
		probe:      ffprobe.Inspect,
		transcoder: ffmpeg.NewCLI(ffmpeg.WithBinary(cfg.FFmpegBinary())),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run validates the request, probes the input, and downmixes when any
// stream carries more than two audio channels. Every error is terminal.
func (d *Downmixer) Run(ctx context.Context, req Request) (Result, error) {
	if err := d.validate(req); err != nil {
		return Result{}, err
	}

	if timeout := d.cfg.ToolTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	// Guard the output path so two concurrent runs cannot interleave
	// writes to the same destination. The lock file stays behind after
	// release; unlinking it would let a later run lock a freshly created
	// file while a straggler still holds the old inode.
	lockPath := req.OutputPath + ".lock"
	lock := flock.New(lockPath)
	locked, err := lock.TryLock()
	if err != nil {
		return Result{}, Wrap(ErrPathValidation, "lock output", lockPath, err)
	}
	if !locked {
		return Result{}, Wrap(ErrPathValidation, "lock output", fmt.Sprintf("another downmix is already writing %q", req.OutputPath), nil)
	}
	defer func() {
		_ = lock.Unlock()
	}()

	result := Result{RunID: d.beginJournal(ctx, req)}

	report, err := d.probe(ctx, d.cfg.FFprobeBinary(), req.InputPath)
	if err != nil {
		marker := ErrToolInvocation
		if errors.Is(err, ffprobe.ErrMalformed) {
			marker = ErrMetadataParse
		}
		wrapped := Wrap(marker, "probe", req.InputPath, err)
		d.finishJournal(ctx, result.RunID, history.Outcome{Status: history.StatusFailed, Detail: wrapped.Error()})
		return Result{}, wrapped
	}
	if report.Warnings != "" {
		d.logger.Warn("ffprobe diagnostics", "file", req.InputPath, "detail", report.Warnings)
	}

	result.Channels = report.AudioChannelCounts()
	for _, count := range result.Channels {
		d.logger.Info("found audio channels", "file", req.InputPath, "channels", count)
	}

	if !ffprobe.NeedsDownmix(result.Channels) {
		d.finishJournal(ctx, result.RunID, history.Outcome{Channels: result.Channels, Status: history.StatusSkipped})
		return result, nil
	}

	d.logger.Info("downmixing", "input", req.InputPath, "output", req.OutputPath)
	warning, err := d.transcoder.Downmix(ctx, req.InputPath, req.OutputPath)
	if err != nil {
		wrapped := Wrap(ErrToolInvocation, "transcode", req.InputPath, err)
		d.finishJournal(ctx, result.RunID, history.Outcome{Channels: result.Channels, Status: history.StatusFailed, Detail: wrapped.Error()})
		return Result{}, wrapped
	}
	if warning != "" {
		d.logger.Warn("ffmpeg diagnostics", "file", req.InputPath, "detail", warning)
	}
	d.logger.Info("downmixed", "output", req.OutputPath)

	result.Downmixed = true
	d.finishJournal(ctx, result.RunID, history.Outcome{Channels: result.Channels, Status: history.StatusDownmixed})
	return result, nil
}

func (d *Downmixer) validate(req Request) error {
	if err := fileutil.CheckRegularFile(req.InputPath); err != nil {
		return Wrap(ErrPathValidation, "input", "", err)
	}
	if !req.Force {
		exists, err := fileutil.Exists(req.OutputPath)
		if err != nil {
			return Wrap(ErrPathValidation, "output", "", err)
		}
		if exists {
			return Wrap(ErrPathValidation, "output", fmt.Sprintf("%q already exists (use --force to overwrite)", req.OutputPath), nil)
		}
	}
	if err := fileutil.CheckDirWritable(filepath.Dir(req.OutputPath)); err != nil {
		return Wrap(ErrPathValidation, "output", "", err)
	}
	return nil
}

func (d *Downmixer) beginJournal(ctx context.Context, req Request) string {
	if d.journal == nil {
		return ""
	}
	id, err := d.journal.Begin(ctx, req.InputPath, req.OutputPath)
	if err != nil {
		d.logger.Warn("record run start", "error", err)
		return ""
	}
	return id
}

func (d *Downmixer) finishJournal(ctx context.Context, id string, outcome history.Outcome) {
	if d.journal == nil || id == "" {
		return
	}
	if err := d.journal.Finish(ctx, id, outcome); err != nil {
		d.logger.Warn("record run outcome", "error", err)
		return
	}
	if keep := d.cfg.History.KeepLast; keep > 0 {
		if err := d.journal.Prune(ctx, keep); err != nil {
			d.logger.Warn("prune history", "error", err)
		}
	}
}
