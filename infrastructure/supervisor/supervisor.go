package supervisor

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/MasegoMashiane/Second-Sales-Automation-bot/domains/health"
	pkgError "github.com/MasegoMashiane/Second-Sales-Automation-bot/pkg/error"
	"github.com/MasegoMashiane/Second-Sales-Automation-bot/pkg/procmonitor"
	"github.com/sirupsen/logrus"
)

type State string

const (
	StateNotStarted     State = "not_started"
	StateLaunching      State = "launching"
	StateAwaitingHealth State = "awaiting_health"
	StateHealthy        State = "healthy"
	StateTerminated     State = "terminated"
	StateFailed         State = "failed"
)

var DefaultReadyMarkers = []string{"FLASK_API_READY", "Running on"}

const (
	DefaultLaunchTimeout  = 10 * time.Second
	DefaultHealthInterval = time.Second
	DefaultHealthAttempts = 30
	DefaultShutdownGrace  = 5 * time.Second
	DefaultOutputBuffer   = 200

	outputDrainTimeout = 500 * time.Millisecond
)

type Config struct {
	Command string
	Args    []string
	Dir     string
	// Env is appended to the shell's own environment.
	Env []string
	// Address is the base URL the backend serves on once healthy.
	Address string

	ReadyMarkers   []string
	LaunchTimeout  time.Duration
	HealthInterval time.Duration
	HealthAttempts int
	ShutdownGrace  time.Duration
	OutputBuffer   int
}

func (c Config) withDefaults() Config {
	if len(c.ReadyMarkers) == 0 {
		c.ReadyMarkers = DefaultReadyMarkers
	}
	if c.LaunchTimeout <= 0 {
		c.LaunchTimeout = DefaultLaunchTimeout
	}
	if c.HealthInterval <= 0 {
		c.HealthInterval = DefaultHealthInterval
	}
	if c.HealthAttempts <= 0 {
		c.HealthAttempts = DefaultHealthAttempts
	}
	if c.ShutdownGrace <= 0 {
		c.ShutdownGrace = DefaultShutdownGrace
	}
	if c.OutputBuffer <= 0 {
		c.OutputBuffer = DefaultOutputBuffer
	}
	return c
}

// HealthChecker is satisfied by the backend client.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Supervisor owns the backend process. Nothing outside it can signal the process.
type Supervisor struct {
	cfg     Config
	checker HealthChecker
	ledger  health.IHealthUsecase
	output  *procmonitor.Monitor

	mu      sync.Mutex
	state   State
	cmd     *exec.Cmd
	exited  chan struct{}
	exitErr error
	// drained is closed once both output streams reached EOF. Processes the
	// backend spawned may hold them open after it exits.
	drained chan struct{}

	stopOnce sync.Once
	stopErr  error
}

type Option func(*Supervisor)

// WithHealthLedger records every probe outcome and the launch result.
func WithHealthLedger(ledger health.IHealthUsecase) Option {
	return func(s *Supervisor) { s.ledger = ledger }
}

func New(cfg Config, checker HealthChecker, opts ...Option) *Supervisor {
	cfg = cfg.withDefaults()
	s := &Supervisor{
		cfg:     cfg,
		checker: checker,
		output:  procmonitor.New(cfg.OutputBuffer),
		state:   StateNotStarted,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Supervisor) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Supervisor) Address() string {
	return s.cfg.Address
}

// RecentOutput returns up to n of the newest backend output lines.
func (s *Supervisor) RecentOutput(n int) []procmonitor.Line {
	return s.output.Recent(n)
}

// OutputTotals returns how many lines each stream produced since launch.
func (s *Supervisor) OutputTotals() (stdout, stderr int64) {
	return s.output.Totals()
}

// WaitOutput blocks until all captured output has been read or timeout
// passes, and reports whether the output was fully read.
func (s *Supervisor) WaitOutput(timeout time.Duration) bool {
	s.mu.Lock()
	drained := s.drained
	s.mu.Unlock()
	if drained == nil {
		return true
	}
	select {
	case <-drained:
		return true
	case <-time.After(timeout):
		return false
	}
}

// Done is closed once the backend process has exited. It is nil before Launch.
func (s *Supervisor) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exited
}

// ExitErr is the process's exit error, valid after Done is closed.
func (s *Supervisor) ExitErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exitErr
}

func (s *Supervisor) transition(from, to State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != from {
		return fmt.Errorf("supervisor: cannot move to %s from %s", to, s.state)
	}
	s.state = to
	return nil
}

// fail moves to Failed unless a shutdown already terminated the supervisor.
func (s *Supervisor) fail() {
	s.mu.Lock()
	if s.state != StateTerminated {
		s.state = StateFailed
	}
	s.mu.Unlock()
}

func (s *Supervisor) isReadyLine(line string) bool {
	for _, marker := range s.cfg.ReadyMarkers {
		if marker != "" && strings.Contains(line, marker) {
			return true
		}
	}
	return false
}

func (s *Supervisor) capture(r io.ReadCloser, stream procmonitor.Stream, ready func()) {
	defer r.Close()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		s.output.Record(stream, line)
		logrus.WithField("stream", stream).Debugf("[BACKEND] %s", line)
		if s.isReadyLine(line) {
			ready()
		}
	}
	if err := scanner.Err(); err != nil {
		logrus.WithError(err).WithField("stream", stream).Debug("[SUPERVISOR] output capture stopped")
	}
}

// Launch starts the backend and returns once it prints a readiness marker.
// It fails with *pkgError.LaunchTimeoutError if the marker does not appear
// within the launch timeout or the process exits first.
func (s *Supervisor) Launch(ctx context.Context) error {
	if err := s.transition(StateNotStarted, StateLaunching); err != nil {
		return err
	}

	cmd := exec.Command(s.cfg.Command, s.cfg.Args...)
	cmd.Dir = s.cfg.Dir
	cmd.Env = append(os.Environ(), s.cfg.Env...)
	configureProcess(cmd)

	// The backend writes straight into OS pipes, so cmd.Wait returns as soon
	// as the backend exits even if something it spawned still holds them.
	stdoutR, stdoutW, err := os.Pipe()
	if err != nil {
		s.fail()
		return &pkgError.LaunchTimeoutError{Timeout: s.cfg.LaunchTimeout, Cause: err}
	}
	stderrR, stderrW, err := os.Pipe()
	if err != nil {
		closeAll(stdoutR, stdoutW)
		s.fail()
		return &pkgError.LaunchTimeoutError{Timeout: s.cfg.LaunchTimeout, Cause: err}
	}
	cmd.Stdout = stdoutW
	cmd.Stderr = stderrW

	logrus.Infof("[SUPERVISOR] starting backend: %s %s", s.cfg.Command, strings.Join(s.cfg.Args, " "))
	err = cmd.Start()
	closeAll(stdoutW, stderrW)
	if err != nil {
		closeAll(stdoutR, stderrR)
		s.fail()
		s.reportFailure(ctx, err.Error())
		return &pkgError.LaunchTimeoutError{Timeout: s.cfg.LaunchTimeout, Cause: err}
	}

	exited := make(chan struct{})
	drained := make(chan struct{})
	s.mu.Lock()
	s.cmd = cmd
	s.exited = exited
	s.drained = drained
	s.mu.Unlock()

	ready := make(chan struct{})
	var readyOnce sync.Once
	markReady := func() { readyOnce.Do(func() { close(ready) }) }

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		s.capture(stdoutR, procmonitor.StreamStdout, markReady)
	}()
	go func() {
		defer wg.Done()
		s.capture(stderrR, procmonitor.StreamStderr, markReady)
	}()
	go func() {
		wg.Wait()
		close(drained)
	}()
	go func() {
		waitErr := cmd.Wait()
		s.mu.Lock()
		s.exitErr = waitErr
		s.mu.Unlock()
		if waitErr != nil {
			logrus.WithError(waitErr).Warnf("[SUPERVISOR] backend exited (pid %d)", cmd.Process.Pid)
		} else {
			logrus.Infof("[SUPERVISOR] backend exited (pid %d)", cmd.Process.Pid)
		}
		close(exited)
	}()

	timer := time.NewTimer(s.cfg.LaunchTimeout)
	defer timer.Stop()

	select {
	case <-ready:
		logrus.Infof("[SUPERVISOR] backend started (pid %d)", cmd.Process.Pid)
		return s.transition(StateLaunching, StateAwaitingHealth)
	case <-exited:
		// Output written just before exit may still be in the pipes.
		s.WaitOutput(outputDrainTimeout)
		select {
		case <-ready:
			// Marker and exit raced; the health probe decides.
			return s.transition(StateLaunching, StateAwaitingHealth)
		default:
		}
		s.fail()
		cause := fmt.Errorf("backend exited before reporting readiness: %v", s.ExitErr())
		s.reportFailure(ctx, cause.Error())
		return &pkgError.LaunchTimeoutError{Timeout: s.cfg.LaunchTimeout, Cause: cause}
	case <-timer.C:
		s.fail()
		s.kill()
		s.reportFailure(ctx, "no readiness marker")
		return &pkgError.LaunchTimeoutError{Timeout: s.cfg.LaunchTimeout}
	case <-ctx.Done():
		s.fail()
		s.kill()
		return &pkgError.LaunchTimeoutError{Timeout: s.cfg.LaunchTimeout, Cause: ctx.Err()}
	}
}

// WaitUntilHealthy polls the health endpoint until it answers or the attempt
// budget runs out. The first probe is immediate.
func (s *Supervisor) WaitUntilHealthy(ctx context.Context) error {
	s.mu.Lock()
	state, exited := s.state, s.exited
	s.mu.Unlock()
	if state != StateAwaitingHealth {
		return fmt.Errorf("supervisor: cannot wait for health from %s", state)
	}

	attempts := s.cfg.HealthAttempts
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = s.checker.Health(ctx)
		if lastErr == nil {
			s.reportSuccess(ctx)
			logrus.Infof("[SUPERVISOR] backend healthy after %d attempt(s)", attempt)
			return s.transition(StateAwaitingHealth, StateHealthy)
		}
		s.reportFailure(ctx, lastErr.Error())
		logrus.WithError(lastErr).Debugf("[SUPERVISOR] health attempt %d/%d failed", attempt, attempts)

		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			s.fail()
			return ctx.Err()
		case <-exited:
			s.fail()
			return &pkgError.NotHealthyError{Attempts: attempt, LastErr: fmt.Errorf("backend exited: %v", s.ExitErr())}
		case <-time.After(s.cfg.HealthInterval):
		}
	}

	s.fail()
	return &pkgError.NotHealthyError{Attempts: attempts, LastErr: lastErr}
}

// Shutdown terminates the backend and everything it spawned. It is safe to
// call more than once and before Launch.
func (s *Supervisor) Shutdown(ctx context.Context) error {
	s.stopOnce.Do(func() {
		s.stopErr = s.stop(ctx)
	})
	return s.stopErr
}

// stop signals the backend's whole process group, even when the backend
// itself already exited, so nothing it spawned outlives the shell.
func (s *Supervisor) stop(ctx context.Context) error {
	s.mu.Lock()
	cmd, exited := s.cmd, s.exited
	if s.state != StateFailed {
		s.state = StateTerminated
	}
	s.mu.Unlock()

	if cmd == nil || cmd.Process == nil {
		return nil
	}
	if !groupAlive(cmd, exited) {
		<-exited
		return nil
	}

	logrus.Infof("[SUPERVISOR] stopping backend (pid %d)", cmd.Process.Pid)
	if err := terminateProcess(cmd); err != nil {
		logrus.WithError(err).Warn("[SUPERVISOR] graceful stop failed")
	}

	grace := time.NewTimer(s.cfg.ShutdownGrace)
	defer grace.Stop()
	poll := time.NewTicker(50 * time.Millisecond)
	defer poll.Stop()
wait:
	for {
		select {
		case <-poll.C:
			if isClosed(exited) && !groupAlive(cmd, exited) {
				return nil
			}
		case <-grace.C:
			logrus.Warnf("[SUPERVISOR] backend ignored stop for %s, killing", s.cfg.ShutdownGrace)
			break wait
		case <-ctx.Done():
			break wait
		}
	}

	s.kill()
	select {
	case <-exited:
		return nil
	case <-time.After(s.cfg.ShutdownGrace):
		return fmt.Errorf("backend (pid %d) did not exit after kill", cmd.Process.Pid)
	}
}

func isClosed(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}

func closeAll(files ...*os.File) {
	for _, f := range files {
		_ = f.Close()
	}
}

func (s *Supervisor) kill() {
	s.mu.Lock()
	cmd := s.cmd
	s.mu.Unlock()
	if cmd == nil || cmd.Process == nil {
		return
	}
	if err := killProcess(cmd); err != nil {
		logrus.WithError(err).Debug("[SUPERVISOR] kill failed")
	}
}

func (s *Supervisor) reportSuccess(ctx context.Context) {
	if s.ledger != nil {
		s.ledger.ReportSuccess(ctx, health.EntityBackend, s.cfg.Address)
	}
}

func (s *Supervisor) reportFailure(ctx context.Context, message string) {
	if s.ledger != nil {
		s.ledger.ReportFailure(ctx, health.EntityBackend, s.cfg.Address, message)
	}
}
