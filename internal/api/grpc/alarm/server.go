package alarm

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	domain "github.com/oshokin/order-alarm/internal/domain/alarm"
	"github.com/oshokin/order-alarm/internal/domain/permission"
	"github.com/oshokin/order-alarm/internal/domain/push"
	"github.com/oshokin/order-alarm/internal/logger"
)

// Controller abstracts the alarm operations the transport layer depends on.
type Controller interface {
	Start(ctx context.Context, req *domain.Request) *domain.Snapshot
	Stop(ctx context.Context, reason domain.StopReason, actor *domain.Actor) *domain.Snapshot
	State() *domain.Snapshot
}

// Lifecycle abstracts the entry activity callbacks.
type Lifecycle interface {
	OnCreate(ctx context.Context) []permission.Result
	OnResume(ctx context.Context) *domain.Snapshot
	OnPause(ctx context.Context)
}

// Server implements the AlarmService gRPC API.
type Server struct {
	// controller is the alarm state machine.
	controller Controller
	// lifecycle receives activity events; ReportLifecycle is unavailable when nil.
	lifecycle Lifecycle
	// fallbacks fill the title and body of start requests that omit them.
	fallbacks push.Fallbacks
}

// NewServer wires the controller and the activity into a gRPC handler.
func NewServer(controller Controller, lifecycle Lifecycle, fallbacks push.Fallbacks) *Server {
	return &Server{
		controller: controller,
		lifecycle:  lifecycle,
		fallbacks:  fallbacks,
	}
}

// StartAlarm starts (or restarts) the alarm with the requested content.
func (s *Server) StartAlarm(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	content, err := RequestFromStruct(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	resolved := push.Resolve(&push.Message{
		Data: map[string]string{
			push.DataKeyTitle: content.Title,
			push.DataKeyBody:  content.Body,
			push.DataKeyURL:   content.URL,
		},
	}, s.fallbacks)

	snapshot := s.controller.Start(ctx, resolved)

	return SnapshotToStruct(snapshot), nil
}

// StopAlarm silences the alarm on behalf of the actor in the request.
func (s *Server) StopAlarm(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	actor, err := ActorFromStruct(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	if actor != nil {
		logger.InfoKV(ctx, "Stop requested", "hostname", actor.Hostname, "username", actor.Username)
	}

	snapshot := s.controller.Stop(ctx, domain.StopReasonAction, actor)

	return SnapshotToStruct(snapshot), nil
}

// GetAlarmState returns the current alarm snapshot.
func (s *Server) GetAlarmState(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return SnapshotToStruct(s.controller.State()), nil
}

// ReportLifecycle forwards an activity lifecycle event.
func (s *Server) ReportLifecycle(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if s.lifecycle == nil {
		return nil, status.Error(codes.Unimplemented, "lifecycle reporting is disabled")
	}

	event, err := stringField(req, FieldEvent)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	var results []permission.Result

	switch event {
	case EventCreated:
		results = s.lifecycle.OnCreate(ctx)
	case EventResumed:
		s.lifecycle.OnResume(ctx)
	case EventPaused:
		s.lifecycle.OnPause(ctx)
	case "":
		return nil, status.Error(codes.InvalidArgument, "event is required")
	default:
		return nil, status.Errorf(codes.InvalidArgument, "unknown event %q", event)
	}

	response := SnapshotToStruct(s.controller.State())
	if event == EventCreated {
		response.Fields[FieldPermissions] = ResultsToValue(results)
	}

	return response, nil
}
