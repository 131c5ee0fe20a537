package activity

import (
	"context"
	"fmt"
	"strings"

	"github.com/gen2brain/beeep"

	"github.com/oshokin/order-alarm/internal/domain/permission"
)

// NoticeRequester asks the user to grant permissions through a desktop
// notification. Desktop platforms grant these out of band, so every
// requested permission is reported as not granted until the configuration
// lists it.
type NoticeRequester struct {
	// title is the notice title, usually the application name.
	title string
	// notify matches beeep.Notify.
	notify func(title, message string, icon any) error
}

// NewNoticeRequester creates a requester posting notices under the given title.
func NewNoticeRequester(title string) *NoticeRequester {
	return &NoticeRequester{
		title:  title,
		notify: beeep.Notify,
	}
}

// Request implements Requester.
func (r *NoticeRequester) Request(_ context.Context, permissions []permission.Permission) ([]permission.Result, error) {
	names := make([]string, 0, len(permissions))
	for _, p := range permissions {
		names = append(names, string(p))
	}

	message := "Permissões necessárias: " + strings.Join(names, ", ")
	if err := r.notify(r.title, message, ""); err != nil {
		return nil, fmt.Errorf("post permission notice: %w", err)
	}

	results := make([]permission.Result, 0, len(permissions))
	for _, p := range permissions {
		results = append(results, permission.Result{Permission: p, Granted: false})
	}

	return results, nil
}
