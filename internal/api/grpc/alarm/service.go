package alarm

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "orderalarm.v1.AlarmService"

// Method names of the AlarmService.
const (
	MethodStartAlarm      = "StartAlarm"
	MethodStopAlarm       = "StopAlarm"
	MethodGetAlarmState   = "GetAlarmState"
	MethodReportLifecycle = "ReportLifecycle"
)

// AlarmServiceServer is the server API of the AlarmService.
type AlarmServiceServer interface {
	StartAlarm(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	StopAlarm(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	GetAlarmState(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error)
	ReportLifecycle(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

// RegisterAlarmServiceServer registers srv on the gRPC server.
func RegisterAlarmServiceServer(registrar grpc.ServiceRegistrar, srv AlarmServiceServer) {
	registrar.RegisterService(&serviceDesc, srv)
}

//nolint:gochecknoglobals // Service descriptors are package-level by gRPC convention.
var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AlarmServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: MethodStartAlarm,
			Handler:    unaryHandler(MethodStartAlarm, newStruct, AlarmServiceServer.StartAlarm),
		},
		{
			MethodName: MethodStopAlarm,
			Handler:    unaryHandler(MethodStopAlarm, newStruct, AlarmServiceServer.StopAlarm),
		},
		{
			MethodName: MethodGetAlarmState,
			Handler:    unaryHandler(MethodGetAlarmState, newEmpty, AlarmServiceServer.GetAlarmState),
		},
		{
			MethodName: MethodReportLifecycle,
			Handler:    unaryHandler(MethodReportLifecycle, newStruct, AlarmServiceServer.ReportLifecycle),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "orderalarm/v1/alarm.proto",
}

func newStruct() *structpb.Struct { return new(structpb.Struct) }

func newEmpty() *emptypb.Empty { return new(emptypb.Empty) }

// fullMethod returns the "/service/method" path used on the wire.
func fullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// unaryHandler adapts a typed server method to grpc.MethodHandler.
func unaryHandler[Req proto.Message](
	method string,
	newRequest func() Req,
	call func(AlarmServiceServer, context.Context, Req) (*structpb.Struct, error),
) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := newRequest()
		if err := dec(in); err != nil {
			return nil, err
		}

		server, _ := srv.(AlarmServiceServer)

		if interceptor == nil {
			return call(server, ctx, in)
		}

		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod(method),
		}

		handler := func(ctx context.Context, req any) (any, error) {
			typed, _ := req.(Req)

			return call(server, ctx, typed)
		}

		return interceptor(ctx, in, info, handler)
	}
}

// AlarmServiceClient is the client API of the AlarmService.
type AlarmServiceClient struct {
	conn grpc.ClientConnInterface
}

// NewAlarmServiceClient creates a client stub on top of conn.
func NewAlarmServiceClient(conn grpc.ClientConnInterface) *AlarmServiceClient {
	return &AlarmServiceClient{conn: conn}
}

// StartAlarm calls AlarmService.StartAlarm.
func (c *AlarmServiceClient) StartAlarm(
	ctx context.Context,
	req *structpb.Struct,
	opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	return invoke(ctx, c.conn, MethodStartAlarm, req, opts)
}

// StopAlarm calls AlarmService.StopAlarm.
func (c *AlarmServiceClient) StopAlarm(
	ctx context.Context,
	req *structpb.Struct,
	opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	return invoke(ctx, c.conn, MethodStopAlarm, req, opts)
}

// GetAlarmState calls AlarmService.GetAlarmState.
func (c *AlarmServiceClient) GetAlarmState(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke(ctx, c.conn, MethodGetAlarmState, new(emptypb.Empty), opts)
}

// ReportLifecycle calls AlarmService.ReportLifecycle.
func (c *AlarmServiceClient) ReportLifecycle(
	ctx context.Context,
	req *structpb.Struct,
	opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	return invoke(ctx, c.conn, MethodReportLifecycle, req, opts)
}

func invoke(
	ctx context.Context,
	conn grpc.ClientConnInterface,
	method string,
	req proto.Message,
	opts []grpc.CallOption,
) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := conn.Invoke(ctx, fullMethod(method), req, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}
