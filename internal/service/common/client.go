//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"

	alarmapi "github.com/oshokin/order-alarm/internal/api/grpc/alarm"
	"github.com/oshokin/order-alarm/internal/config"
	domain "github.com/oshokin/order-alarm/internal/domain/alarm"
	"github.com/oshokin/order-alarm/internal/domain/permission"
)

// alarmAPI is the subset of the AlarmService stub used by Client.
type alarmAPI interface {
	StartAlarm(ctx context.Context, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	StopAlarm(ctx context.Context, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	GetAlarmState(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error)
	ReportLifecycle(ctx context.Context, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

// Client wraps the gRPC AlarmService client with convenience helpers.
type Client struct {
	// conn is the underlying gRPC connection to the agent.
	conn *grpc.ClientConn
	// api is the AlarmService client stub.
	api alarmAPI

	// callTimeout is the default timeout for individual RPC calls.
	callTimeout time.Duration
}

// Option configures client behaviour.
type Option func(*Client)

// WithCallTimeout sets a default timeout for service calls.
func WithCallTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.callTimeout = timeout
		}
	}
}

var (
	// errAddressRequired is returned when a required address value is missing.
	errAddressRequired = errors.New("address must be provided")
	// errRequestRequired is returned when a start request is nil.
	errRequestRequired = errors.New("request must be provided")
	// errUnknownEvent is returned for lifecycle events the agent does not accept.
	errUnknownEvent = errors.New("unknown lifecycle event")
)

// Dial establishes a gRPC connection to the agent.
// Note: this uses insecure transport credentials; the agent listens on loopback.
func Dial(_ context.Context, address string, opts ...Option) (*Client, error) {
	if address == "" {
		return nil, errAddressRequired
	}

	conn, err := grpc.NewClient(address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial alarm agent: %w", err)
	}

	client := &Client{
		conn:        conn,
		api:         alarmapi.NewAlarmServiceClient(conn),
		callTimeout: config.DefaultTimeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}

	return c.conn.Close()
}

// StartAlarm asks the agent to start the alarm. Empty fields are filled by the agent.
func (c *Client) StartAlarm(ctx context.Context, req *domain.Request) (*domain.Snapshot, error) {
	if req == nil {
		return nil, errRequestRequired
	}

	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.StartAlarm(callCtx, alarmapi.RequestToStruct(req))
	if err != nil {
		return nil, fmt.Errorf("start alarm: %w", err)
	}

	return decodeSnapshot(resp)
}

// StopAlarm asks the agent to silence the alarm. actor may be nil.
func (c *Client) StopAlarm(ctx context.Context, actor *domain.Actor) (*domain.Snapshot, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.StopAlarm(callCtx, alarmapi.ActorToStruct(actor))
	if err != nil {
		return nil, fmt.Errorf("stop alarm: %w", err)
	}

	return decodeSnapshot(resp)
}

// GetAlarmState retrieves the current alarm snapshot.
func (c *Client) GetAlarmState(ctx context.Context) (*domain.Snapshot, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.GetAlarmState(callCtx)
	if err != nil {
		return nil, fmt.Errorf("get alarm state: %w", err)
	}

	return decodeSnapshot(resp)
}

// ReportLifecycle forwards an activity lifecycle event (created, resumed or paused).
// Permission results are only returned for the created event.
func (c *Client) ReportLifecycle(
	ctx context.Context,
	event string,
) (*domain.Snapshot, []permission.Result, error) {
	switch event {
	case alarmapi.EventCreated, alarmapi.EventResumed, alarmapi.EventPaused:
	default:
		return nil, nil, fmt.Errorf("%w: %q", errUnknownEvent, event)
	}

	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	request := &structpb.Struct{
		Fields: map[string]*structpb.Value{
			alarmapi.FieldEvent: structpb.NewStringValue(event),
		},
	}

	resp, err := c.api.ReportLifecycle(callCtx, request)
	if err != nil {
		return nil, nil, fmt.Errorf("report lifecycle: %w", err)
	}

	snapshot, err := decodeSnapshot(resp)
	if err != nil {
		return nil, nil, err
	}

	results, err := alarmapi.ResultsFromStruct(resp)
	if err != nil {
		return nil, nil, fmt.Errorf("decode permission results: %w", err)
	}

	return snapshot, results, nil
}

func decodeSnapshot(resp *structpb.Struct) (*domain.Snapshot, error) {
	snapshot, err := alarmapi.SnapshotFromStruct(resp)
	if err != nil {
		return nil, fmt.Errorf("decode alarm state: %w", err)
	}

	return snapshot, nil
}

// callContext returns a context with the client's call timeout if configured,
// otherwise a cancellable child context without a deadline.
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.callTimeout)
}
