package out

import (
	"context"
	"fmt"
	"os/exec"
	"sync"
	"time"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-plugin"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	driverrpc "hapkit/internal/modules/session/adapter/out/rpc"
	"hapkit/internal/modules/session/domain"
	sessionout "hapkit/internal/modules/session/port/out"
	apperrors "hapkit/internal/platform/errors"
)

const (
	defaultStartTimeout = 3 * time.Second
	defaultCallTimeout  = 5 * time.Second
	signalBuffer        = 8
)

// PluginDriverOpener launches driver binaries over go-plugin and keeps
// the subprocess alive for the lifetime of the returned Driver. The
// engine session lives in the driver process, so the connection must
// persist across calls.
type PluginDriverOpener struct {
	logger hclog.Logger
}

func NewPluginDriverOpener(logger hclog.Logger) sessionout.DriverOpener {
	return &PluginDriverOpener{logger: logger}
}

func (o *PluginDriverOpener) Open(_ context.Context, manifest domain.DriverManifest) (sessionout.Driver, error) {
	client := plugin.NewClient(&plugin.ClientConfig{
		HandshakeConfig:  driverrpc.HandshakeConfig,
		AllowedProtocols: []plugin.Protocol{plugin.ProtocolGRPC},
		Plugins:          driverrpc.PluginMap(nil),
		Cmd:              exec.Command(manifest.Binary),
		Managed:          true,
		StartTimeout:     defaultStartTimeout,
		Logger:           o.logger.Named("driver"),
	})

	rpcClient, err := client.Client()
	if err != nil {
		client.Kill()
		return nil, fmt.Errorf("start driver client: %w", err)
	}
	raw, err := rpcClient.Dispense(driverrpc.PluginMapKey)
	if err != nil {
		client.Kill()
		return nil, fmt.Errorf("dispense driver: %w", err)
	}
	typed, ok := raw.(driverrpc.HapticDriverClient)
	if !ok {
		client.Kill()
		return nil, fmt.Errorf("driver rpc client type mismatch")
	}

	watchCtx, cancel := context.WithCancel(context.Background())
	d := &grpcDriver{
		client:      client,
		rpc:         typed,
		logger:      o.logger,
		signals:     make(chan domain.EngineSignal, signalBuffer),
		cancelWatch: cancel,
	}
	go d.forwardSignals(watchCtx)
	return d, nil
}

type grpcDriver struct {
	client      *plugin.Client
	rpc         driverrpc.HapticDriverClient
	logger      hclog.Logger
	signals     chan domain.EngineSignal
	cancelWatch context.CancelFunc
	closeOnce   sync.Once
}

func (d *grpcDriver) Metadata(ctx context.Context) (domain.DriverMetadata, error) {
	callCtx, cancel := callContext(ctx, defaultCallTimeout)
	defer cancel()
	meta, err := d.rpc.GetMetadata(callCtx)
	if err != nil {
		return domain.DriverMetadata{}, driverCallError("get metadata", err)
	}
	return domain.DriverMetadata{Name: meta.Name, Version: meta.Version, Platform: meta.Platform}, nil
}

func (d *grpcDriver) Capabilities(ctx context.Context) (domain.Capabilities, error) {
	callCtx, cancel := callContext(ctx, defaultCallTimeout)
	defer cancel()
	caps, err := d.rpc.GetCapabilities(callCtx)
	if err != nil {
		return domain.Capabilities{}, driverCallError("get capabilities", err)
	}
	return domain.Capabilities{SupportsHaptics: caps.SupportsHaptics}, nil
}

func (d *grpcDriver) StartEngine(ctx context.Context) error {
	callCtx, cancel := callContext(ctx, defaultCallTimeout)
	defer cancel()
	if err := d.rpc.StartEngine(callCtx); err != nil {
		return driverCallError("start engine", err)
	}
	return nil
}

func (d *grpcDriver) StopEngine(ctx context.Context) error {
	callCtx, cancel := callContext(ctx, defaultCallTimeout)
	defer cancel()
	if err := d.rpc.StopEngine(callCtx); err != nil {
		return driverCallError("stop engine", err)
	}
	return nil
}

func (d *grpcDriver) CurrentTime(ctx context.Context) (float64, error) {
	callCtx, cancel := callContext(ctx, defaultCallTimeout)
	defer cancel()
	resp, err := d.rpc.CurrentTime(callCtx)
	if err != nil {
		return 0, driverCallError("current time", err)
	}
	return resp.Seconds, nil
}

func (d *grpcDriver) PlayPattern(ctx context.Context, data []byte) error {
	callCtx, cancel := callContext(ctx, defaultCallTimeout)
	defer cancel()
	if err := d.rpc.PlayPattern(callCtx, &driverrpc.PlayPatternRequest{PatternJSON: string(data)}); err != nil {
		return driverCallError("play pattern", err)
	}
	return nil
}

func (d *grpcDriver) Signals() <-chan domain.EngineSignal {
	return d.signals
}

func (d *grpcDriver) Close() error {
	d.closeOnce.Do(func() {
		d.cancelWatch()
		d.client.Kill()
	})
	return nil
}

// forwardSignals pumps the server-side signal stream into the channel
// handed to the session. The channel closes when the stream ends, which
// also covers the driver process dying.
func (d *grpcDriver) forwardSignals(ctx context.Context) {
	defer close(d.signals)
	stream, err := d.rpc.WatchSignals(ctx)
	if err != nil {
		d.logger.Debug("driver signal stream unavailable", "error", err)
		return
	}
	for {
		sig, err := stream.Recv()
		if err != nil {
			if ctx.Err() == nil {
				d.logger.Debug("driver signal stream closed", "error", err)
			}
			return
		}
		select {
		case d.signals <- domain.EngineSignal{Kind: domain.SignalKind(sig.Kind), Reason: sig.Reason}:
		case <-ctx.Done():
			return
		}
	}
}

// driverCallError strips the grpc status envelope so callers see the
// driver's own message. A dead subprocess maps to ErrDriverStopped.
func driverCallError(op string, err error) error {
	if s, ok := status.FromError(err); ok {
		if s.Code() == codes.Unavailable || s.Code() == codes.Canceled {
			return fmt.Errorf("%s: %w: %s", op, apperrors.ErrDriverStopped, s.Message())
		}
		return fmt.Errorf("%s: %s", op, s.Message())
	}
	return fmt.Errorf("%s: %w", op, err)
}

func callContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := parent.Deadline(); ok {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, timeout)
}
