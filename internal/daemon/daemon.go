package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"lyricsync/internal/config"
	"lyricsync/internal/deps"
	"lyricsync/internal/logging"
	"lyricsync/internal/player"
	"lyricsync/internal/transcription"
)

// Daemon owns the player session and the HTTP API and enforces
// single-instance execution.
type Daemon struct {
	cfg      *config.Config
	base     *slog.Logger
	logger   *slog.Logger
	provider transcription.Provider
	session  *player.Session
	api      *apiServer

	lockPath string
	lock     *flock.Flock

	running   atomic.Bool
	startedAt time.Time
	cancel    context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	PID          int
	Provider     string
	LockFilePath string
	StartedAt    time.Time
	Player       player.Status
	Dependencies []deps.Status
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, provider transcription.Provider, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || provider == nil {
		return nil, errors.New("daemon requires config and transcription provider")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}

	session := player.New(provider, player.Config{
		Policy:   cfg.Player.Policy,
		Timeout:  cfg.TranscriptionTimeout(),
		Language: cfg.Transcription.Language,
	}, logger)

	lockPath := cfg.LockPath()
	d := &Daemon{
		cfg:      cfg,
		base:     logger,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		provider: provider,
		session:  session,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}
	return d, nil
}

// Start acquires the daemon lock and starts serving the API.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another lyricsync daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.api = newAPIServer(d.cfg, d, d.base)
	if err := d.api.start(runCtx); err != nil {
		cancel()
		_ = d.lock.Unlock()
		return err
	}

	d.cancel = cancel
	d.startedAt = time.Now()
	d.running.Store(true)
	d.logger.Info("lyricsync daemon started",
		logging.String("lock", d.lockPath),
		logging.String("provider", d.provider.Name()),
		logging.String("policy", d.cfg.Player.Policy),
	)
	return nil
}

// Stop stops serving, cancels any transcription in flight, and releases
// the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.api.stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("lyricsync daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	d.session.Close()
	return nil
}

// Session exposes the player session.
func (d *Daemon) Session() *player.Session {
	return d.session
}

// Addr returns the API listen address once started.
func (d *Daemon) Addr() string {
	if d.api == nil {
		return ""
	}
	return d.api.addr()
}

// Status returns the current daemon status.
func (d *Daemon) Status(context.Context) Status {
	return Status{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		Provider:     d.provider.Name(),
		LockFilePath: d.lockPath,
		StartedAt:    d.startedAt,
		Player:       d.session.Status(),
		Dependencies: deps.CheckBinaries(deps.Requirements(d.cfg)),
	}
}
