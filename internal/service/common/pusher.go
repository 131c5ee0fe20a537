//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/oshokin/order-alarm/internal/api/http/ingress"
	"github.com/oshokin/order-alarm/internal/config"
	"github.com/oshokin/order-alarm/internal/domain/push"
	"github.com/oshokin/order-alarm/internal/version"
)

// errUnexpectedStatus is returned when the ingress answers with a non-success code.
var errUnexpectedStatus = errors.New("unexpected status")

// Pusher delivers push messages to the agent's HTTP ingress.
type Pusher struct {
	// baseURL is the ingress root, e.g. http://127.0.0.1:8061.
	baseURL string
	// httpClient performs the requests.
	httpClient *http.Client
}

// NewPusher creates a Pusher for the ingress listening on address.
// A bare host:port is prefixed with http://.
func NewPusher(address string, timeout time.Duration) (*Pusher, error) {
	if address == "" {
		return nil, errAddressRequired
	}

	if !strings.Contains(address, "://") {
		address = "http://" + address
	}

	if timeout <= 0 {
		timeout = config.DefaultTimeout
	}

	return &Pusher{
		baseURL:    strings.TrimRight(address, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// Send posts the message and returns the agent's decision.
func (p *Pusher) Send(ctx context.Context, msg *push.Message) (*ingress.MessageResponse, error) {
	var response ingress.MessageResponse
	if err := p.post(ctx, ingress.PathMessages, msg, http.StatusAccepted, &response); err != nil {
		return nil, fmt.Errorf("send push message: %w", err)
	}

	return &response, nil
}

// RefreshToken reports a new push token to the agent.
func (p *Pusher) RefreshToken(ctx context.Context, value string) error {
	err := p.post(ctx, ingress.PathTokens, ingress.TokenRequest{Token: value}, http.StatusNoContent, nil)
	if err != nil {
		return fmt.Errorf("refresh token: %w", err)
	}

	return nil
}

func (p *Pusher) post(ctx context.Context, path string, body any, expected int, dst any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return err
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != expected {
		var failure ingress.ErrorResponse

		_ = json.NewDecoder(resp.Body).Decode(&failure)

		return fmt.Errorf("%w %d: %s", errUnexpectedStatus, resp.StatusCode, failure.Error)
	}

	if dst == nil {
		return nil
	}

	if err = json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}
