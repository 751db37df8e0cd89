/*
reloader.go - Scheduled adjudication config reload

PURPOSE:
  Re-reads the config file on a cron schedule and publishes it to the
  leave.ConfigStore, so thresholds and rules change without a redeploy.

DESIGN:
  - robfig/cron drives the schedule (default "@every 30s")
  - Unchanged file contents are skipped
  - An invalid file is logged and the previous config stays live
  - Evaluations in flight keep the snapshot they started with

USAGE:
  reloader := NewConfigReloader("rules.yaml", configs, logger)
  if err := reloader.Start(); err != nil { ... }
  defer reloader.Stop()

SEE ALSO:
  - factory/config.go: File format
  - handlers.go: PUT /api/config (manual update)
*/
package api

import (
	"bytes"
	"fmt"
	"os"
	"sync"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/warp/leave-engine/factory"
	"github.com/warp/leave-engine/leave"
)

const DefaultReloadSchedule = "@every 30s"

// ConfigReloader polls a config file and swaps the live config.
type ConfigReloader struct {
	Path     string
	Schedule string
	Configs  *leave.ConfigStore
	Logger   *zap.Logger

	cron *cron.Cron
	mu   sync.Mutex
	last []byte
}

func NewConfigReloader(path string, configs *leave.ConfigStore, logger *zap.Logger) *ConfigReloader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConfigReloader{
		Path:     path,
		Schedule: DefaultReloadSchedule,
		Configs:  configs,
		Logger:   logger,
	}
}

// Start schedules the reload job. It does not reload immediately; callers
// load the file once at startup.
func (cr *ConfigReloader) Start() error {
	cr.mu.Lock()
	defer cr.mu.Unlock()

	if cr.cron != nil {
		return nil
	}
	c := cron.New()
	if _, err := c.AddFunc(cr.Schedule, cr.run); err != nil {
		return fmt.Errorf("invalid reload schedule %q: %w", cr.Schedule, err)
	}
	c.Start()
	cr.cron = c
	cr.Logger.Info("config reloader started", zap.String("path", cr.Path), zap.String("schedule", cr.Schedule))
	return nil
}

// Stop waits for a running reload to finish.
func (cr *ConfigReloader) Stop() {
	cr.mu.Lock()
	c := cr.cron
	cr.cron = nil
	cr.mu.Unlock()

	if c != nil {
		<-c.Stop().Done()
		cr.Logger.Info("config reloader stopped")
	}
}

func (cr *ConfigReloader) run() {
	changed, err := cr.Reload()
	if err != nil {
		cr.Logger.Warn("config reload failed, keeping current config", zap.String("path", cr.Path), zap.Error(err))
		return
	}
	if changed {
		cfg := cr.Configs.Load()
		cr.Logger.Info("config reloaded",
			zap.String("path", cr.Path),
			zap.Float64("auto_approve", cfg.AutoApproveThreshold),
			zap.Float64("escalate", cfg.EscalateThreshold),
		)
	}
}

// Reload reads the file and publishes it if its contents changed.
func (cr *ConfigReloader) Reload() (bool, error) {
	data, err := os.ReadFile(cr.Path)
	if err != nil {
		return false, err
	}

	cr.mu.Lock()
	defer cr.mu.Unlock()

	if cr.last != nil && bytes.Equal(cr.last, data) {
		return false, nil
	}
	cfg, err := factory.ParseConfig(data)
	if err != nil {
		return false, err
	}
	if err := cr.Configs.Store(cfg); err != nil {
		return false, err
	}
	cr.last = data
	return true, nil
}
