package player

import (
	"context"
	"fmt"
	"os/exec"
	"slices"
	"sync"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/postify/postify/internal/shared"
)

// ExecSink plays a bound source by running an external player process
// (mpv, ffplay or anything that takes the source path as its last argument).
//
// Each Load supersedes the previous process: the old one is killed and its
// exit is silently discarded, so a stale load can never clobber a newer bind.
// Process exit with status zero reports ended; a nonzero exit reports a
// fault. Pause and resume use SIGSTOP/SIGCONT.
type ExecSink struct {
	command string
	args    []string
	events  Events
	logger  *log.Logger

	mu         sync.Mutex
	cmd        *exec.Cmd
	generation uint64
}

// NewExecSink creates an ExecSink reporting into the given events receiver.
func NewExecSink(command string, args []string, events Events, logger *log.Logger) *ExecSink {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &ExecSink{
		command: command,
		args:    args,
		events:  events,
		logger:  logger,
	}
}

// Load starts a player process for the source, replacing any prior process.
func (s *ExecSink) Load(ctx context.Context, src *Source) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation++
	gen := s.generation
	s.killLocked()

	args := append(slices.Clone(s.args), src.Path())
	cmd := exec.Command(s.command, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start player %q: %w", s.command, err)
	}
	s.cmd = cmd
	s.logger.Debug("player process started", "command", s.command, "pid", cmd.Process.Pid)

	go s.monitor(cmd, gen)

	select {
	case <-ctx.Done():
		s.killLocked()
		return ctx.Err()
	default:
	}

	return nil
}

// Pause suspends the player process.
func (s *ExecSink) Pause() error {
	return s.signal(syscall.SIGSTOP)
}

// Resume continues a suspended player process.
func (s *ExecSink) Resume() error {
	return s.signal(syscall.SIGCONT)
}

// Stop terminates the player process, discarding its exit event.
func (s *ExecSink) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.killLocked()
	return nil
}

func (s *ExecSink) signal(sig syscall.Signal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cmd == nil || s.cmd.Process == nil {
		return fmt.Errorf("%w", shared.ErrSinkNotReady)
	}
	if err := s.cmd.Process.Signal(sig); err != nil {
		return fmt.Errorf("failed to signal player: %w", err)
	}
	return nil
}

// killLocked terminates the current process without waiting. The monitor
// goroutine collects the exit and sees itself superseded.
func (s *ExecSink) killLocked() {
	if s.cmd != nil && s.cmd.Process != nil {
		s.cmd.Process.Kill()
	}
	s.cmd = nil
}

// monitor waits for a player process and forwards its outcome, unless a
// newer Load or Stop superseded this generation in the meantime.
func (s *ExecSink) monitor(cmd *exec.Cmd, gen uint64) {
	err := cmd.Wait()

	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		return
	}
	s.cmd = nil
	s.mu.Unlock()

	if s.events == nil {
		return
	}
	if err != nil {
		s.events.HandleFault(fmt.Errorf("player exited: %v", err))
		return
	}
	s.events.HandleEnded()
}
