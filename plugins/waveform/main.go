package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"sync"
	"time"

	driverrpc "hapkit/internal/modules/session/adapter/out/rpc"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-plugin"
)

// server simulates a haptic actuator. Environment knobs make failure
// paths reproducible:
//
//	WAVEFORM_UNSUPPORTED  report a device without haptics
//	WAVEFORM_FAIL_START   fail every StartEngine call
//	WAVEFORM_FAIL_PLAY    fail every PlayPattern call
//	WAVEFORM_RESET_AFTER  stop the engine and broadcast a reset signal
//	                      this long after each start (duration string)
type server struct {
	logger      hclog.Logger
	unsupported bool
	failStart   bool
	failPlay    bool
	resetAfter  time.Duration

	mu         sync.Mutex
	running    bool
	startedAt  time.Time
	resetTimer *time.Timer
	subs       map[chan driverrpc.EngineSignal]struct{}
}

func newServer() *server {
	s := &server{
		// JSON log lines on stderr are re-logged by the host's
		// plugin client at their original level.
		logger: hclog.New(&hclog.LoggerOptions{
			Name:       "waveform",
			Level:      hclog.Trace,
			Output:     os.Stderr,
			JSONFormat: true,
		}),
		unsupported: os.Getenv("WAVEFORM_UNSUPPORTED") != "",
		failStart:   os.Getenv("WAVEFORM_FAIL_START") != "",
		failPlay:    os.Getenv("WAVEFORM_FAIL_PLAY") != "",
		subs:        map[chan driverrpc.EngineSignal]struct{}{},
	}
	if raw := os.Getenv("WAVEFORM_RESET_AFTER"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil {
			s.resetAfter = d
		}
	}
	return s
}

func (s *server) GetMetadata(_ context.Context, _ *driverrpc.Empty) (*driverrpc.Metadata, error) {
	return &driverrpc.Metadata{
		Name:     "waveform",
		Version:  "1.0.0",
		Platform: runtime.GOOS,
	}, nil
}

func (s *server) GetCapabilities(_ context.Context, _ *driverrpc.Empty) (*driverrpc.Capabilities, error) {
	return &driverrpc.Capabilities{SupportsHaptics: !s.unsupported}, nil
}

func (s *server) StartEngine(_ context.Context, _ *driverrpc.Empty) (*driverrpc.Empty, error) {
	if s.failStart {
		return nil, fmt.Errorf("simulated start failure")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return &driverrpc.Empty{}, nil
	}
	s.running = true
	s.startedAt = time.Now()
	s.logger.Debug("engine started")
	if s.resetAfter > 0 {
		if s.resetTimer != nil {
			s.resetTimer.Stop()
		}
		s.resetTimer = time.AfterFunc(s.resetAfter, s.reset)
	}
	return &driverrpc.Empty{}, nil
}

func (s *server) StopEngine(_ context.Context, _ *driverrpc.Empty) (*driverrpc.Empty, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		s.logger.Debug("engine stopped")
	}
	s.running = false
	if s.resetTimer != nil {
		s.resetTimer.Stop()
		s.resetTimer = nil
	}
	return &driverrpc.Empty{}, nil
}

func (s *server) CurrentTime(_ context.Context, _ *driverrpc.Empty) (*driverrpc.CurrentTimeResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return &driverrpc.CurrentTimeResponse{Seconds: 0}, nil
	}
	return &driverrpc.CurrentTimeResponse{Seconds: time.Since(s.startedAt).Seconds()}, nil
}

// PlayPattern arms one timer per event and returns as soon as the whole
// pattern is scheduled. Each stimulus is a log line when it fires.
func (s *server) PlayPattern(_ context.Context, in *driverrpc.PlayPatternRequest) (*driverrpc.Empty, error) {
	if s.failPlay {
		return nil, fmt.Errorf("simulated playback failure")
	}
	s.mu.Lock()
	running := s.running
	s.mu.Unlock()
	if !running {
		return nil, fmt.Errorf("engine is not running")
	}
	var doc struct {
		Pattern []struct {
			EventType     string  `json:"EventType"`
			Time          float64 `json:"Time"`
			EventDuration float64 `json:"EventDuration"`
		} `json:"Pattern"`
	}
	if err := json.Unmarshal([]byte(in.PatternJSON), &doc); err != nil {
		return nil, fmt.Errorf("malformed pattern: %v", err)
	}
	if len(doc.Pattern) == 0 {
		return nil, fmt.Errorf("empty pattern")
	}
	s.logger.Debug("pattern scheduled", "events", len(doc.Pattern))
	for _, ev := range doc.Pattern {
		time.AfterFunc(time.Duration(ev.Time*float64(time.Second)), func() {
			s.mu.Lock()
			fire := s.running
			s.mu.Unlock()
			if !fire {
				return
			}
			if ev.EventDuration > 0 {
				s.logger.Trace("stimulus", "type", ev.EventType, "at", ev.Time, "duration", ev.EventDuration)
				return
			}
			s.logger.Trace("stimulus", "type", ev.EventType, "at", ev.Time)
		})
	}
	return &driverrpc.Empty{}, nil
}

func (s *server) WatchSignals(_ *driverrpc.Empty, stream driverrpc.HapticDriver_WatchSignalsServer) error {
	ch := make(chan driverrpc.EngineSignal, 4)
	s.mu.Lock()
	s.subs[ch] = struct{}{}
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.subs, ch)
		s.mu.Unlock()
	}()
	for {
		select {
		case sig := <-ch:
			if err := stream.Send(&sig); err != nil {
				return err
			}
		case <-stream.Context().Done():
			return nil
		}
	}
}

// reset simulates the platform reclaiming the actuator: the engine
// stops on its own and subscribers hear about it.
func (s *server) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.running = false
	s.logger.Debug("platform reset, engine stopped")
	sig := driverrpc.EngineSignal{Kind: "reset", Reason: "simulated platform reset"}
	for ch := range s.subs {
		select {
		case ch <- sig:
		default:
		}
	}
}

func main() {
	plugin.Serve(&plugin.ServeConfig{
		HandshakeConfig: driverrpc.HandshakeConfig,
		Plugins:         driverrpc.PluginMap(newServer()),
		GRPCServer:      plugin.DefaultGRPCServer,
	})
}
