package alarm

import (
	"errors"
	"fmt"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	domain "github.com/oshokin/order-alarm/internal/domain/alarm"
	"github.com/oshokin/order-alarm/internal/domain/permission"
)

// Field names of the Struct messages.
const (
	FieldTitle       = "title"
	FieldBody        = "body"
	FieldURL         = "url"
	FieldHostname    = "hostname"
	FieldUsername    = "username"
	FieldEvent       = "event"
	FieldStatus      = "status"
	FieldRequest     = "request"
	FieldChangedAt   = "changed_at"
	FieldStopReason  = "stop_reason"
	FieldStoppedBy   = "stopped_by"
	FieldPermissions = "permissions"
	FieldPermission  = "permission"
	FieldGranted     = "granted"
)

// Lifecycle events accepted by ReportLifecycle.
const (
	EventCreated = "created"
	EventResumed = "resumed"
	EventPaused  = "paused"
)

var (
	// ErrFieldType is returned when a Struct field holds an unexpected kind.
	ErrFieldType = errors.New("unexpected field type")
	// ErrUnknownStatus is returned when a snapshot carries an unknown status.
	ErrUnknownStatus = errors.New("unknown alarm status")
)

// ActorToStruct encodes the acting host and user of a stop request.
func ActorToStruct(actor *domain.Actor) *structpb.Struct {
	if actor == nil {
		return new(structpb.Struct)
	}

	return &structpb.Struct{
		Fields: map[string]*structpb.Value{
			FieldHostname: structpb.NewStringValue(actor.Hostname),
			FieldUsername: structpb.NewStringValue(actor.Username),
		},
	}
}

// ActorFromStruct decodes an actor. An empty message yields nil.
func ActorFromStruct(s *structpb.Struct) (*domain.Actor, error) {
	hostname, err := stringField(s, FieldHostname)
	if err != nil {
		return nil, err
	}

	username, err := stringField(s, FieldUsername)
	if err != nil {
		return nil, err
	}

	if hostname == "" && username == "" {
		return nil, nil //nolint:nilnil // Anonymous stop requests are allowed.
	}

	return &domain.Actor{
		Hostname: hostname,
		Username: username,
	}, nil
}

// RequestToStruct encodes the content of a start request.
func RequestToStruct(req *domain.Request) *structpb.Struct {
	fields := make(map[string]*structpb.Value, 3) //nolint:mnd // title, body and url.
	if req != nil {
		fields[FieldTitle] = structpb.NewStringValue(req.Title)
		fields[FieldBody] = structpb.NewStringValue(req.Body)
		fields[FieldURL] = structpb.NewStringValue(req.URL)
	}

	return &structpb.Struct{Fields: fields}
}

// RequestFromStruct decodes the content of a start request. Missing fields are empty.
func RequestFromStruct(s *structpb.Struct) (*domain.Request, error) {
	var (
		req domain.Request
		err error
	)

	if req.Title, err = stringField(s, FieldTitle); err != nil {
		return nil, err
	}

	if req.Body, err = stringField(s, FieldBody); err != nil {
		return nil, err
	}

	if req.URL, err = stringField(s, FieldURL); err != nil {
		return nil, err
	}

	return &req, nil
}

// SnapshotToStruct encodes an alarm snapshot.
func SnapshotToStruct(snapshot *domain.Snapshot) *structpb.Struct {
	if snapshot == nil {
		snapshot = new(domain.Snapshot)
	}

	fields := map[string]*structpb.Value{
		FieldStatus:     structpb.NewStringValue(snapshot.Status.String()),
		FieldStopReason: structpb.NewStringValue(string(snapshot.StopReason)),
	}

	if !snapshot.ChangedAt.IsZero() {
		fields[FieldChangedAt] = structpb.NewStringValue(snapshot.ChangedAt.UTC().Format(time.RFC3339Nano))
	}

	if snapshot.Request != nil {
		fields[FieldRequest] = structpb.NewStructValue(RequestToStruct(snapshot.Request))
	}

	if snapshot.StoppedBy != nil {
		fields[FieldStoppedBy] = structpb.NewStructValue(ActorToStruct(snapshot.StoppedBy))
	}

	return &structpb.Struct{Fields: fields}
}

// SnapshotFromStruct decodes an alarm snapshot produced by SnapshotToStruct.
func SnapshotFromStruct(s *structpb.Struct) (*domain.Snapshot, error) {
	statusName, err := stringField(s, FieldStatus)
	if err != nil {
		return nil, err
	}

	status, ok := domain.ParseStatus(statusName)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStatus, statusName)
	}

	reason, err := stringField(s, FieldStopReason)
	if err != nil {
		return nil, err
	}

	snapshot := &domain.Snapshot{
		Status:     status,
		StopReason: domain.StopReason(reason),
	}

	changedAt, err := stringField(s, FieldChangedAt)
	if err != nil {
		return nil, err
	}

	if changedAt != "" {
		if snapshot.ChangedAt, err = time.Parse(time.RFC3339Nano, changedAt); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", FieldChangedAt, err)
		}
	}

	request, err := structField(s, FieldRequest)
	if err != nil {
		return nil, err
	}

	if request != nil {
		if snapshot.Request, err = RequestFromStruct(request); err != nil {
			return nil, err
		}
	}

	stoppedBy, err := structField(s, FieldStoppedBy)
	if err != nil {
		return nil, err
	}

	if stoppedBy != nil {
		if snapshot.StoppedBy, err = ActorFromStruct(stoppedBy); err != nil {
			return nil, err
		}
	}

	return snapshot, nil
}

// ResultsToValue encodes permission results as a list of structs.
func ResultsToValue(results []permission.Result) *structpb.Value {
	values := make([]*structpb.Value, 0, len(results))
	for _, r := range results {
		values = append(values, structpb.NewStructValue(&structpb.Struct{
			Fields: map[string]*structpb.Value{
				FieldPermission: structpb.NewStringValue(string(r.Permission)),
				FieldGranted:    structpb.NewBoolValue(r.Granted),
			},
		}))
	}

	return structpb.NewListValue(&structpb.ListValue{Values: values})
}

// ResultsFromStruct decodes the permission results attached to a lifecycle response.
func ResultsFromStruct(s *structpb.Struct) ([]permission.Result, error) {
	value, ok := s.GetFields()[FieldPermissions]
	if !ok {
		return nil, nil
	}

	list := value.GetListValue()
	if list == nil {
		return nil, fmt.Errorf("%w: %s is not a list", ErrFieldType, FieldPermissions)
	}

	results := make([]permission.Result, 0, len(list.GetValues()))

	for _, item := range list.GetValues() {
		entry := item.GetStructValue()
		if entry == nil {
			return nil, fmt.Errorf("%w: %s entry is not a struct", ErrFieldType, FieldPermissions)
		}

		name, err := stringField(entry, FieldPermission)
		if err != nil {
			return nil, err
		}

		results = append(results, permission.Result{
			Permission: permission.Permission(name),
			Granted:    entry.GetFields()[FieldGranted].GetBoolValue(),
		})
	}

	return results, nil
}

// stringField returns a string field, or an empty string when it is absent or null.
func stringField(s *structpb.Struct, name string) (string, error) {
	value, ok := s.GetFields()[name]
	if !ok {
		return "", nil
	}

	switch kind := value.GetKind().(type) {
	case *structpb.Value_StringValue:
		return kind.StringValue, nil
	case *structpb.Value_NullValue:
		return "", nil
	default:
		return "", fmt.Errorf("%w: %s must be a string", ErrFieldType, name)
	}
}

// structField returns a nested struct field, or nil when it is absent or null.
func structField(s *structpb.Struct, name string) (*structpb.Struct, error) {
	value, ok := s.GetFields()[name]
	if !ok {
		return nil, nil //nolint:nilnil // Absent nested messages are optional.
	}

	switch kind := value.GetKind().(type) {
	case *structpb.Value_StructValue:
		return kind.StructValue, nil
	case *structpb.Value_NullValue:
		return nil, nil //nolint:nilnil // Null nested messages are optional.
	default:
		return nil, fmt.Errorf("%w: %s must be an object", ErrFieldType, name)
	}
}
