//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	alarmapi "github.com/oshokin/order-alarm/internal/api/grpc/alarm"
	domain "github.com/oshokin/order-alarm/internal/domain/alarm"
	"github.com/oshokin/order-alarm/internal/domain/permission"
)

// fakeAPI answers every call with a fixed snapshot and records the last request.
type fakeAPI struct {
	snapshot *domain.Snapshot
	results  []permission.Result
	last     *structpb.Struct
	err      error
	deadline bool
}

func (f *fakeAPI) reply(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	f.last = req
	_, f.deadline = ctx.Deadline()

	if f.err != nil {
		return nil, f.err
	}

	return alarmapi.SnapshotToStruct(f.snapshot), nil
}

func (f *fakeAPI) StartAlarm(ctx context.Context, req *structpb.Struct, _ ...grpc.CallOption) (*structpb.Struct, error) {
	return f.reply(ctx, req)
}

func (f *fakeAPI) StopAlarm(ctx context.Context, req *structpb.Struct, _ ...grpc.CallOption) (*structpb.Struct, error) {
	return f.reply(ctx, req)
}

func (f *fakeAPI) GetAlarmState(ctx context.Context, _ ...grpc.CallOption) (*structpb.Struct, error) {
	return f.reply(ctx, nil)
}

func (f *fakeAPI) ReportLifecycle(
	ctx context.Context,
	req *structpb.Struct,
	_ ...grpc.CallOption,
) (*structpb.Struct, error) {
	resp, err := f.reply(ctx, req)
	if err != nil {
		return nil, err
	}

	if f.results != nil {
		resp.Fields[alarmapi.FieldPermissions] = alarmapi.ResultsToValue(f.results)
	}

	return resp, nil
}

// TestDial_ValidatesAddress verifies that Dial rejects empty addresses.
func TestDial_ValidatesAddress(t *testing.T) {
	t.Parallel()

	c, err := Dial(context.Background(), "")
	require.Error(t, err)
	require.Nil(t, c)
}

// TestClient_callContext checks timeout vs cancel-only behavior of callContext.
func TestClient_callContext(t *testing.T) {
	t.Parallel()

	c := &Client{
		callTimeout: 0,
	}

	ctx, cancel := c.callContext(context.Background())
	cancel()

	require.NotNil(t, ctx)

	c.callTimeout = 10 * time.Millisecond

	ctx, cancel = c.callContext(context.Background())
	defer cancel()

	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	require.WithinDuration(t, time.Now().Add(10*time.Millisecond), deadline, 30*time.Millisecond)
}

// TestClient_StartAlarm_NilRequest asserts that a nil request is rejected by the client.
func TestClient_StartAlarm_NilRequest(t *testing.T) {
	t.Parallel()

	c := &Client{api: new(fakeAPI)}

	_, err := c.StartAlarm(context.Background(), nil)
	require.Error(t, err)
}

// TestClient_Calls verifies requests are encoded and snapshots decoded.
func TestClient_Calls(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{
		snapshot: &domain.Snapshot{
			Status:  domain.StatusAlarming,
			Request: &domain.Request{Title: "Pedido #5"},
		},
	}
	c := &Client{api: api, callTimeout: time.Second}

	snapshot, err := c.StartAlarm(context.Background(), &domain.Request{Title: "Pedido #5", URL: "/o/5"})
	require.NoError(t, err)
	require.True(t, snapshot.IsAlarming())
	require.True(t, api.deadline)
	require.Equal(t, "/o/5", api.last.GetFields()[alarmapi.FieldURL].GetStringValue())

	api.snapshot = &domain.Snapshot{Status: domain.StatusIdle, StopReason: domain.StopReasonAction}

	snapshot, err = c.StopAlarm(context.Background(), &domain.Actor{Hostname: "caixa-01", Username: "maria"})
	require.NoError(t, err)
	require.Equal(t, domain.StatusIdle, snapshot.Status)
	require.Equal(t, "maria", api.last.GetFields()[alarmapi.FieldUsername].GetStringValue())

	snapshot, err = c.GetAlarmState(context.Background())
	require.NoError(t, err)
	require.Equal(t, domain.StopReasonAction, snapshot.StopReason)
}

// TestClient_ReportLifecycle verifies event validation and permission decoding.
func TestClient_ReportLifecycle(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{
		snapshot: new(domain.Snapshot),
		results:  []permission.Result{{Permission: permission.FineLocation, Granted: false}},
	}
	c := &Client{api: api}

	_, _, err := c.ReportLifecycle(context.Background(), "destroyed")
	require.Error(t, err)
	require.Nil(t, api.last)

	snapshot, results, err := c.ReportLifecycle(context.Background(), alarmapi.EventCreated)
	require.NoError(t, err)
	require.Equal(t, domain.StatusIdle, snapshot.Status)
	require.Equal(t, api.results, results)
	require.Equal(t, alarmapi.EventCreated, api.last.GetFields()[alarmapi.FieldEvent].GetStringValue())

	api.err = status.Error(codes.Unavailable, "agent is down")

	_, _, err = c.ReportLifecycle(context.Background(), alarmapi.EventResumed)
	require.Equal(t, codes.Unavailable, status.Code(err))
}
