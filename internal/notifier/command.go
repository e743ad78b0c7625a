package notifier

import (
	"context"
	"errors"
	"os/exec"
	"sync"
	"time"

	"github.com/benmeehan/geo-alarm/internal/monitor"
	"github.com/rs/zerolog"
)

// CommandNotifier runs an external command (sound player, desktop notifier)
// when the target is reached. The command keeps running until the alarm is
// stopped, the device leaves the radius, or the timeout expires.
type CommandNotifier struct {
	command []string
	timeout time.Duration
	logger  zerolog.Logger

	mu      sync.Mutex
	running *commandRun
	wg      sync.WaitGroup
}

type commandRun struct {
	cancel context.CancelFunc
}

// NewCommandNotifier creates a CommandNotifier for the given argv.
func NewCommandNotifier(command []string, timeout time.Duration, logger zerolog.Logger) *CommandNotifier {
	return &CommandNotifier{
		command: command,
		timeout: timeout,
		logger:  logger,
	}
}

// Notify starts or silences the command depending on the event.
func (n *CommandNotifier) Notify(evt monitor.Event) {
	switch evt.Kind {
	case monitor.EventReached:
		n.start()
	case monitor.EventAlarmStopped, monitor.EventLeft:
		n.Silence()
	}
}

// Silence stops a running command, if any.
func (n *CommandNotifier) Silence() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.running != nil {
		n.running.cancel()
		n.running = nil
	}
}

// Sounding reports whether the command is currently running.
func (n *CommandNotifier) Sounding() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.running != nil
}

// Wait blocks until the running command has exited.
func (n *CommandNotifier) Wait() {
	n.wg.Wait()
}

func (n *CommandNotifier) start() {
	if len(n.command) == 0 {
		return
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if n.running != nil {
		// Already sounding.
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
	cmd := exec.CommandContext(ctx, n.command[0], n.command[1:]...)
	if err := cmd.Start(); err != nil {
		n.logger.Error().Err(err).Str("command", n.command[0]).Msg("Failed to start alarm command")
		cancel()
		return
	}

	run := &commandRun{cancel: cancel}
	n.running = run

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		err := cmd.Wait()
		silenced := errors.Is(ctx.Err(), context.Canceled)

		n.mu.Lock()
		if n.running == run {
			n.running = nil
		}
		n.mu.Unlock()
		cancel()

		switch {
		case silenced:
			n.logger.Debug().Msg("Alarm command silenced")
		case err != nil:
			n.logger.Warn().Err(err).Msg("Alarm command exited with error")
		default:
			n.logger.Debug().Msg("Alarm command finished")
		}
	}()
}
