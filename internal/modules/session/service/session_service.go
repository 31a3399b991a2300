package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"runtime"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/hashicorp/go-hclog"

	patterndomain "hapkit/internal/modules/pattern/domain"
	"hapkit/internal/modules/session/domain"
	sessionout "hapkit/internal/modules/session/port/out"
	"hapkit/internal/platform/clock"
	apperrors "hapkit/internal/platform/errors"
)

// restartTimeout bounds the silent engine restart attempted after the
// platform reports an asynchronous stop.
const restartTimeout = 5 * time.Second

// SessionService owns the engine session state machine. All state
// transitions happen under mu; playback RPCs run outside the lock so a
// long pattern does not block status queries.
type SessionService struct {
	clock      clock.Clock
	registry   sessionout.RegistryStore
	opener     sessionout.DriverOpener
	logger     hclog.Logger
	driverName string
	decodeOpts patterndomain.DecodeOptions

	mu         sync.Mutex
	driver     sessionout.Driver
	state      domain.EngineState
	startedAt  time.Time
	restarts   int
	lastSignal domain.SignalKind
	signalAt   time.Time
}

func NewSessionService(clock clock.Clock, registry sessionout.RegistryStore, opener sessionout.DriverOpener, logger hclog.Logger, driverName string, decodeOpts patterndomain.DecodeOptions) *SessionService {
	return &SessionService{
		clock:      clock,
		registry:   registry,
		opener:     opener,
		logger:     logger,
		driverName: driverName,
		decodeOpts: decodeOpts,
		state:      domain.StateUninitialized,
	}
}

func (s *SessionService) DriverName() string {
	return s.driverName
}

func (s *SessionService) SupportsHaptics(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureDriverLocked(ctx); err != nil {
		return false, err
	}
	caps, err := s.driver.Capabilities(ctx)
	if err != nil {
		return false, fmt.Errorf("query capabilities: %w", err)
	}
	return caps.SupportsHaptics, nil
}

func (s *SessionService) PlatformVersion(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureDriverLocked(ctx); err != nil {
		return "", err
	}
	meta, err := s.driver.Metadata(ctx)
	if err != nil {
		return "", fmt.Errorf("query metadata: %w", err)
	}
	return fmt.Sprintf("%s %s (%s)", meta.Name, meta.Version, meta.Platform), nil
}

func (s *SessionService) StartEngine(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startEngineLocked(ctx)
}

func (s *SessionService) startEngineLocked(ctx context.Context) error {
	if err := s.ensureDriverLocked(ctx); err != nil {
		return err
	}
	if s.state == domain.StateStarted {
		return nil
	}
	caps, err := s.driver.Capabilities(ctx)
	if err != nil {
		return fmt.Errorf("query capabilities: %w", err)
	}
	if !caps.SupportsHaptics {
		return domain.ErrUnsupported
	}
	if err := s.driver.StartEngine(ctx); err != nil {
		s.state = domain.StateErrored
		return fmt.Errorf("%w: %v", domain.ErrEngineStart, err)
	}
	s.state = domain.StateStarted
	s.startedAt = s.clock.Now()
	return nil
}

func (s *SessionService) StopEngine(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.driver == nil || s.state != domain.StateStarted {
		return nil
	}
	if err := s.driver.StopEngine(ctx); err != nil {
		s.state = domain.StateErrored
		return fmt.Errorf("%w: %v", domain.ErrEngineStop, err)
	}
	s.state = domain.StateStopped
	return nil
}

// CurrentTime reports the engine clock. It never fails: outside a
// started session, or when the driver cannot answer, it reports zero.
func (s *SessionService) CurrentTime(ctx context.Context) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.driver == nil || s.state != domain.StateStarted {
		return 0
	}
	t, err := s.driver.CurrentTime(ctx)
	if err != nil {
		s.logger.Debug("driver clock query failed", "error", err)
		return 0
	}
	return t
}

// Play sends an already validated pattern to the hardware, starting the
// engine first when needed. An empty pattern succeeds without touching
// the driver.
func (s *SessionService) Play(ctx context.Context, p patterndomain.Pattern) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if p.Empty() {
		return nil
	}
	data, err := patterndomain.Encode(p)
	if err != nil {
		return err
	}
	return s.playEncoded(ctx, data)
}

// PlayJSON decodes wire JSON and plays the result. The skipped slice
// names events dropped by lenient decoding.
func (s *SessionService) PlayJSON(ctx context.Context, data []byte) (patterndomain.Pattern, []string, error) {
	if !utf8.Valid(data) {
		return patterndomain.Pattern{}, nil, fmt.Errorf("%w: pattern data is not valid UTF-8", apperrors.ErrInvalidInput)
	}
	p, skipped, err := patterndomain.Decode(data, s.decodeOpts)
	if err != nil {
		return patterndomain.Pattern{}, nil, err
	}
	if p.Empty() {
		return p, skipped, nil
	}
	canonical, err := patterndomain.Encode(p)
	if err != nil {
		return patterndomain.Pattern{}, nil, err
	}
	if err := s.playEncoded(ctx, canonical); err != nil {
		return patterndomain.Pattern{}, nil, err
	}
	return p, skipped, nil
}

func (s *SessionService) playEncoded(ctx context.Context, data []byte) error {
	s.mu.Lock()
	if err := s.ensureDriverLocked(ctx); err != nil {
		s.mu.Unlock()
		return err
	}
	if s.state != domain.StateStarted {
		if err := s.startEngineLocked(ctx); err != nil {
			s.mu.Unlock()
			return err
		}
	}
	driver := s.driver
	s.mu.Unlock()

	if err := driver.PlayPattern(ctx, data); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrPlayback, err)
	}
	return nil
}

func (s *SessionService) Status(_ context.Context) domain.EngineStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.EngineStatus{
		State:      s.state,
		Driver:     s.driverName,
		StartedAt:  s.startedAt,
		Restarts:   s.restarts,
		LastSignal: s.lastSignal,
		SignalAt:   s.signalAt,
	}
}

func (s *SessionService) ListDrivers(ctx context.Context) ([]domain.DriverManifest, error) {
	return s.registry.Load(ctx)
}

// Doctor probes every registered driver without disturbing the session:
// each reachable driver is launched, queried, and shut down again.
func (s *SessionService) Doctor(ctx context.Context) ([]domain.DriverReport, error) {
	manifests, err := s.registry.Load(ctx)
	if err != nil {
		return nil, err
	}
	reports := make([]domain.DriverReport, 0, len(manifests))
	for _, m := range manifests {
		reports = append(reports, s.probeDriver(ctx, m))
	}
	return reports, nil
}

func (s *SessionService) probeDriver(ctx context.Context, m domain.DriverManifest) domain.DriverReport {
	report := domain.DriverReport{
		Manifest:  m,
		Platform:  runtime.GOOS,
		Supported: m.SupportsPlatform(runtime.GOOS),
	}
	if err := m.Validate(); err != nil {
		report.Problem = err.Error()
		return report
	}
	report.BinaryExists = fileExists(m.Binary)
	if !report.BinaryExists {
		report.Problem = "driver binary not found"
		return report
	}
	report.ChecksumValid = m.SHA256 == "" || checksumMatches(m.Binary, m.SHA256)
	if !report.ChecksumValid {
		report.Problem = domain.ErrChecksumMismatch.Error()
		return report
	}
	if !m.Enabled {
		report.Problem = domain.ErrDriverDisabled.Error()
		return report
	}
	if !report.Supported {
		report.Problem = domain.ErrPlatformUnsupported.Error()
		return report
	}
	driver, err := s.opener.Open(ctx, m)
	if err != nil {
		report.Problem = err.Error()
		return report
	}
	defer driver.Close()
	if _, err := driver.Metadata(ctx); err != nil {
		report.Problem = err.Error()
		return report
	}
	report.Reachable = true
	return report
}

// Close shuts down the driver connection. The next call reopens it.
func (s *SessionService) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.driver == nil {
		return nil
	}
	err := s.driver.Close()
	s.driver = nil
	s.state = domain.StateUninitialized
	return err
}

// ensureDriverLocked opens the configured driver on first use and
// subscribes to its signal stream. Callers must hold mu.
func (s *SessionService) ensureDriverLocked(ctx context.Context) error {
	if s.driver != nil {
		return nil
	}
	manifests, err := s.registry.Load(ctx)
	if err != nil {
		return fmt.Errorf("load driver registry: %w", err)
	}
	var manifest domain.DriverManifest
	found := false
	for _, m := range manifests {
		if m.Name == s.driverName {
			manifest = m
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("%w: %s", domain.ErrDriverNotFound, s.driverName)
	}
	if err := manifest.Validate(); err != nil {
		return err
	}
	if !manifest.Enabled {
		return fmt.Errorf("%w: %s", domain.ErrDriverDisabled, manifest.Name)
	}
	if !manifest.SupportsPlatform(runtime.GOOS) {
		return fmt.Errorf("%w: %s does not run on %s", domain.ErrPlatformUnsupported, manifest.Name, runtime.GOOS)
	}
	if manifest.SHA256 != "" && !checksumMatches(manifest.Binary, manifest.SHA256) {
		return fmt.Errorf("%w: %s", domain.ErrChecksumMismatch, manifest.Binary)
	}
	driver, err := s.opener.Open(ctx, manifest)
	if err != nil {
		return fmt.Errorf("open driver %s: %w", manifest.Name, err)
	}
	s.driver = driver
	go s.watchSignals(driver.Signals())
	return nil
}

func (s *SessionService) watchSignals(signals <-chan domain.EngineSignal) {
	for sig := range signals {
		s.handleSignal(sig)
	}
}

// handleSignal records an asynchronous engine notification. When the
// platform stops a running engine, one silent restart is attempted.
func (s *SessionService) handleSignal(sig domain.EngineSignal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSignal = sig.Kind
	s.signalAt = s.clock.Now()
	if s.state != domain.StateStarted || s.driver == nil {
		return
	}
	s.state = domain.StateStopped
	s.logger.Warn("engine stopped by platform", "kind", sig.Kind, "reason", sig.Reason)

	ctx, cancel := context.WithTimeout(context.Background(), restartTimeout)
	defer cancel()
	if err := s.driver.StartEngine(ctx); err != nil {
		s.state = domain.StateErrored
		s.logger.Warn("engine restart failed", "error", err)
		return
	}
	s.state = domain.StateStarted
	s.startedAt = s.clock.Now()
	s.restarts++
	s.logger.Info("engine restarted", "restarts", s.restarts)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func checksumMatches(path, want string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return false
	}
	return hex.EncodeToString(h.Sum(nil)) == want
}
