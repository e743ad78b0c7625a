package monitor

import (
	"sync"

	"github.com/rs/zerolog"
)

// MemoStore persists the single "was watching when suspended" flag across a
// background/foreground cycle.
type MemoStore interface {
	Load() (bool, error)
	Save(wasWatching bool) error
	Clear() error
}

// SuspensionPolicy pauses the monitor's watch while the host is in the background
// and resumes it on return. It never changes the alarm state.
type SuspensionPolicy struct {
	monitor *Monitor
	memo    MemoStore
	logger  zerolog.Logger

	mu sync.Mutex
}

// NewSuspensionPolicy creates a policy for m backed by memo.
func NewSuspensionPolicy(m *Monitor, memo MemoStore, logger zerolog.Logger) *SuspensionPolicy {
	p := &SuspensionPolicy{
		monitor: m,
		memo:    memo,
		logger:  logger,
	}
	// An alarm started while backgrounded owes a watch on return.
	m.setDeferWatch(func() error { return memo.Save(true) })
	return p
}

// OnVisibilityChange handles a host visibility transition.
func (p *SuspensionPolicy) OnVisibilityChange(hidden bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if hidden {
		p.onBackground()
		return
	}
	p.onForeground()
}

func (p *SuspensionPolicy) onBackground() {
	if !p.monitor.suspendWatch() {
		return
	}
	if err := p.memo.Save(true); err != nil {
		// Without the memo the watch would never come back, so keep it running.
		p.logger.Error().Err(err).Msg("Failed to persist suspended watch memo, keeping watch active")
		p.monitor.setSuspended(false)
		p.monitor.resumeWatch()
		return
	}
	p.logger.Info().Msg("Host moved to background, watch suspended")
}

func (p *SuspensionPolicy) onForeground() {
	// Cleared before the memo is read so a concurrent Start either saved the
	// memo already or subscribes directly.
	p.monitor.setSuspended(false)

	wasWatching, err := p.memo.Load()
	if err != nil {
		p.logger.Error().Err(err).Msg("Failed to read suspended watch memo")
		return
	}
	if !wasWatching {
		return
	}

	if p.monitor.resumeWatch() {
		p.logger.Info().Msg("Host moved to foreground, watch resumed")
	}
	if err := p.memo.Clear(); err != nil {
		p.logger.Error().Err(err).Msg("Failed to clear suspended watch memo")
	}
}
