package activity

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// RecentRequest is the request for the recent service.
type RecentRequest struct {
	Limit int `json:"limit"`
}

// RecentResponse is the response for the recent service.
type RecentResponse struct {
	Entries []Entry `json:"entries"`
}

// ActivityPort reads the activity feed.
type ActivityPort interface {
	Recent(ctx context.Context, limit int) ([]Entry, error)
}

type activityAdapter struct {
	container mono.ServiceContainer
}

var _ ActivityPort = (*activityAdapter)(nil)

// NewActivityAdapter creates an ActivityPort backed by the activity module's
// service container.
func NewActivityAdapter(container mono.ServiceContainer) ActivityPort {
	if container == nil {
		panic("activity adapter requires non-nil ServiceContainer")
	}
	return &activityAdapter{container: container}
}

// Recent fetches the newest entries via the recent service.
func (a *activityAdapter) Recent(ctx context.Context, limit int) ([]Entry, error) {
	req := RecentRequest{Limit: limit}
	var resp RecentResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"recent",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("recent service call failed: %w", err)
	}
	return resp.Entries, nil
}
