package token

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/order-alarm/internal/config"
)

// Token is the push token the platform issued to this device.
type Token struct {
	// Value is the opaque token string.
	Value string
	// UpdatedAt is when the token was last refreshed.
	UpdatedAt time.Time
}

// Repository defines persistence operations for the push token.
type Repository interface {
	Load(ctx context.Context) (*Token, error)
	Save(ctx context.Context, token *Token) error
}

const (
	fieldToken     = "token"
	fieldUpdatedAt = "updated_at"
)

var (
	// ErrNotFound is returned when no token was stored yet.
	ErrNotFound = errors.New("token not found")
	// ErrEmpty is returned when an empty token is saved.
	ErrEmpty = errors.New("token is empty")
	// errMalformed is returned when the stored document lacks the token field.
	errMalformed = errors.New("malformed token file")
)

// FileRepository persists the push token to a JSON file on disk.
// The document is a protobuf Struct encoded with protojson.
type FileRepository struct {
	// path is the filesystem location of the JSON token file.
	path string
	// mu protects concurrent access to the token file.
	mu sync.Mutex
}

// NewFileRepository creates a repository that reads/writes JSON at the provided path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// Load reads the token from disk.
func (r *FileRepository) Load(_ context.Context) (*Token, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read token file: %w", err)
	}

	var document structpb.Struct
	if err = protojson.Unmarshal(contents, &document); err != nil {
		return nil, fmt.Errorf("decode token file: %w", err)
	}

	return fromStruct(&document)
}

// Save writes the token to disk using JSON representation.
func (r *FileRepository) Save(_ context.Context, token *Token) error {
	if token == nil || token.Value == "" {
		return ErrEmpty
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	document, err := toStruct(token)
	if err != nil {
		return fmt.Errorf("encode token: %w", err)
	}

	marshalOptions := protojson.MarshalOptions{
		Multiline: true,
	}

	data, err := marshalOptions.Marshal(document)
	if err != nil {
		return fmt.Errorf("encode token: %w", err)
	}

	if err = os.WriteFile(r.path, data, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}

	return nil
}

// fromStruct converts the stored document into a Token.
func fromStruct(document *structpb.Struct) (*Token, error) {
	fields := document.GetFields()

	value := fields[fieldToken].GetStringValue()
	if value == "" {
		return nil, errMalformed
	}

	var updatedAt time.Time

	if raw := fields[fieldUpdatedAt].GetStringValue(); raw != "" {
		parsed, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return nil, fmt.Errorf("decode token timestamp: %w", err)
		}

		updatedAt = parsed
	}

	return &Token{
		Value:     value,
		UpdatedAt: updatedAt,
	}, nil
}

// toStruct converts a Token into the stored document.
func toStruct(token *Token) (*structpb.Struct, error) {
	fields := map[string]any{
		fieldToken: token.Value,
	}

	if !token.UpdatedAt.IsZero() {
		fields[fieldUpdatedAt] = token.UpdatedAt.UTC().Format(time.RFC3339Nano)
	}

	return structpb.NewStruct(fields)
}
