package rpc

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hashicorp/go-plugin"
	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
)

const (
	PluginMapKey          = "hapkit"
	serviceName           = "hapkit.driver.v1.HapticDriver"
	jsonCodecName         = "json"
	methodGetMetadata     = "/" + serviceName + "/GetMetadata"
	methodGetCapabilities = "/" + serviceName + "/GetCapabilities"
	methodStartEngine     = "/" + serviceName + "/StartEngine"
	methodStopEngine      = "/" + serviceName + "/StopEngine"
	methodCurrentTime     = "/" + serviceName + "/CurrentTime"
	methodPlayPattern     = "/" + serviceName + "/PlayPattern"
	methodWatchSignals    = "/" + serviceName + "/WatchSignals"
)

var HandshakeConfig = plugin.HandshakeConfig{
	ProtocolVersion:  1,
	MagicCookieKey:   "HAPKIT_DRIVER",
	MagicCookieValue: "hapkit",
}

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return jsonCodecName
}

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

type Empty struct{}

type Metadata struct {
	Name     string `json:"name"`
	Version  string `json:"version"`
	Platform string `json:"platform"`
}

type Capabilities struct {
	SupportsHaptics bool `json:"supports_haptics"`
}

type CurrentTimeResponse struct {
	Seconds float64 `json:"seconds"`
}

type PlayPatternRequest struct {
	PatternJSON string `json:"pattern_json"`
}

type EngineSignal struct {
	Kind   string `json:"kind"`
	Reason string `json:"reason"`
}

type HapticDriverServer interface {
	GetMetadata(ctx context.Context, in *Empty) (*Metadata, error)
	GetCapabilities(ctx context.Context, in *Empty) (*Capabilities, error)
	StartEngine(ctx context.Context, in *Empty) (*Empty, error)
	StopEngine(ctx context.Context, in *Empty) (*Empty, error)
	CurrentTime(ctx context.Context, in *Empty) (*CurrentTimeResponse, error)
	PlayPattern(ctx context.Context, in *PlayPatternRequest) (*Empty, error)
	WatchSignals(in *Empty, stream HapticDriver_WatchSignalsServer) error
}

type HapticDriverClient interface {
	GetMetadata(ctx context.Context) (*Metadata, error)
	GetCapabilities(ctx context.Context) (*Capabilities, error)
	StartEngine(ctx context.Context) error
	StopEngine(ctx context.Context) error
	CurrentTime(ctx context.Context) (*CurrentTimeResponse, error)
	PlayPattern(ctx context.Context, in *PlayPatternRequest) error
	WatchSignals(ctx context.Context) (HapticDriver_WatchSignalsClient, error)
}

type hapticDriverClient struct {
	conn *grpc.ClientConn
}

func NewHapticDriverClient(conn *grpc.ClientConn) HapticDriverClient {
	return &hapticDriverClient{conn: conn}
}

func (c *hapticDriverClient) GetMetadata(ctx context.Context) (*Metadata, error) {
	out := &Metadata{}
	if err := c.conn.Invoke(ctx, methodGetMetadata, &Empty{}, out, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *hapticDriverClient) GetCapabilities(ctx context.Context) (*Capabilities, error) {
	out := &Capabilities{}
	if err := c.conn.Invoke(ctx, methodGetCapabilities, &Empty{}, out, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *hapticDriverClient) StartEngine(ctx context.Context) error {
	return c.conn.Invoke(ctx, methodStartEngine, &Empty{}, &Empty{}, grpc.CallContentSubtype(jsonCodecName))
}

func (c *hapticDriverClient) StopEngine(ctx context.Context) error {
	return c.conn.Invoke(ctx, methodStopEngine, &Empty{}, &Empty{}, grpc.CallContentSubtype(jsonCodecName))
}

func (c *hapticDriverClient) CurrentTime(ctx context.Context) (*CurrentTimeResponse, error) {
	out := &CurrentTimeResponse{}
	if err := c.conn.Invoke(ctx, methodCurrentTime, &Empty{}, out, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *hapticDriverClient) PlayPattern(ctx context.Context, in *PlayPatternRequest) error {
	return c.conn.Invoke(ctx, methodPlayPattern, in, &Empty{}, grpc.CallContentSubtype(jsonCodecName))
}

var watchSignalsStreamDesc = grpc.StreamDesc{
	StreamName:    "WatchSignals",
	ServerStreams: true,
}

func (c *hapticDriverClient) WatchSignals(ctx context.Context) (HapticDriver_WatchSignalsClient, error) {
	stream, err := c.conn.NewStream(ctx, &watchSignalsStreamDesc, methodWatchSignals, grpc.CallContentSubtype(jsonCodecName))
	if err != nil {
		return nil, err
	}
	x := &hapticDriverWatchSignalsClient{ClientStream: stream}
	if err := x.ClientStream.SendMsg(&Empty{}); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

type HapticDriver_WatchSignalsClient interface {
	Recv() (*EngineSignal, error)
	grpc.ClientStream
}

type hapticDriverWatchSignalsClient struct {
	grpc.ClientStream
}

func (x *hapticDriverWatchSignalsClient) Recv() (*EngineSignal, error) {
	m := &EngineSignal{}
	if err := x.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

type HapticDriver_WatchSignalsServer interface {
	Send(*EngineSignal) error
	grpc.ServerStream
}

type hapticDriverWatchSignalsServer struct {
	grpc.ServerStream
}

func (x *hapticDriverWatchSignalsServer) Send(m *EngineSignal) error {
	return x.ServerStream.SendMsg(m)
}

func RegisterHapticDriverServer(server grpc.ServiceRegistrar, impl HapticDriverServer) {
	server.RegisterService(&grpc.ServiceDesc{
		ServiceName: serviceName,
		HandlerType: (*HapticDriverServer)(nil),
		Methods: []grpc.MethodDesc{
			{
				MethodName: "GetMetadata",
				Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
					in := &Empty{}
					if err := dec(in); err != nil {
						return nil, err
					}
					if interceptor == nil {
						return impl.GetMetadata(ctx, in)
					}
					info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodGetMetadata}
					handler := func(ctx context.Context, req any) (any, error) {
						empty, ok := req.(*Empty)
						if !ok {
							return nil, fmt.Errorf("invalid request type")
						}
						return impl.GetMetadata(ctx, empty)
					}
					return interceptor(ctx, in, info, handler)
				},
			},
			{
				MethodName: "GetCapabilities",
				Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
					in := &Empty{}
					if err := dec(in); err != nil {
						return nil, err
					}
					if interceptor == nil {
						return impl.GetCapabilities(ctx, in)
					}
					info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodGetCapabilities}
					handler := func(ctx context.Context, req any) (any, error) {
						empty, ok := req.(*Empty)
						if !ok {
							return nil, fmt.Errorf("invalid request type")
						}
						return impl.GetCapabilities(ctx, empty)
					}
					return interceptor(ctx, in, info, handler)
				},
			},
			{
				MethodName: "StartEngine",
				Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
					in := &Empty{}
					if err := dec(in); err != nil {
						return nil, err
					}
					if interceptor == nil {
						return impl.StartEngine(ctx, in)
					}
					info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodStartEngine}
					handler := func(ctx context.Context, req any) (any, error) {
						empty, ok := req.(*Empty)
						if !ok {
							return nil, fmt.Errorf("invalid request type")
						}
						return impl.StartEngine(ctx, empty)
					}
					return interceptor(ctx, in, info, handler)
				},
			},
			{
				MethodName: "StopEngine",
				Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
					in := &Empty{}
					if err := dec(in); err != nil {
						return nil, err
					}
					if interceptor == nil {
						return impl.StopEngine(ctx, in)
					}
					info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodStopEngine}
					handler := func(ctx context.Context, req any) (any, error) {
						empty, ok := req.(*Empty)
						if !ok {
							return nil, fmt.Errorf("invalid request type")
						}
						return impl.StopEngine(ctx, empty)
					}
					return interceptor(ctx, in, info, handler)
				},
			},
			{
				MethodName: "CurrentTime",
				Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
					in := &Empty{}
					if err := dec(in); err != nil {
						return nil, err
					}
					if interceptor == nil {
						return impl.CurrentTime(ctx, in)
					}
					info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodCurrentTime}
					handler := func(ctx context.Context, req any) (any, error) {
						empty, ok := req.(*Empty)
						if !ok {
							return nil, fmt.Errorf("invalid request type")
						}
						return impl.CurrentTime(ctx, empty)
					}
					return interceptor(ctx, in, info, handler)
				},
			},
			{
				MethodName: "PlayPattern",
				Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
					in := &PlayPatternRequest{}
					if err := dec(in); err != nil {
						return nil, err
					}
					if interceptor == nil {
						return impl.PlayPattern(ctx, in)
					}
					info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodPlayPattern}
					handler := func(ctx context.Context, req any) (any, error) {
						inReq, ok := req.(*PlayPatternRequest)
						if !ok {
							return nil, fmt.Errorf("invalid request type")
						}
						return impl.PlayPattern(ctx, inReq)
					}
					return interceptor(ctx, in, info, handler)
				},
			},
		},
		Streams: []grpc.StreamDesc{
			{
				StreamName: "WatchSignals",
				Handler: func(srv any, stream grpc.ServerStream) error {
					in := &Empty{}
					if err := stream.RecvMsg(in); err != nil {
						return err
					}
					return impl.WatchSignals(in, &hapticDriverWatchSignalsServer{ServerStream: stream})
				},
				ServerStreams: true,
			},
		},
		Metadata: "schemas/driver-rpc-v1.proto",
	}, impl)
}

type GRPCPlugin struct {
	plugin.NetRPCUnsupportedPlugin
	Impl HapticDriverServer
}

func (p *GRPCPlugin) GRPCServer(_ *plugin.GRPCBroker, server *grpc.Server) error {
	RegisterHapticDriverServer(server, p.Impl)
	return nil
}

func (p *GRPCPlugin) GRPCClient(_ context.Context, _ *plugin.GRPCBroker, conn *grpc.ClientConn) (any, error) {
	return NewHapticDriverClient(conn), nil
}

func PluginMap(impl HapticDriverServer) map[string]plugin.Plugin {
	return map[string]plugin.Plugin{
		PluginMapKey: &GRPCPlugin{Impl: impl},
	}
}
