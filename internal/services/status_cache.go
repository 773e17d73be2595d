package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"campusBack/internal/models"
)

const statusCacheTTL = 30 * time.Second

// StatusCache keeps recent status-query payloads in Redis. Every transition
// invalidates the key, so a stale entry can live at most statusCacheTTL.
type StatusCache struct {
	RDB *redis.Client
}

func statusKey(requestNumber string) string {
	return "reqstatus:" + requestNumber
}

func (c *StatusCache) Get(ctx context.Context, requestNumber string) (models.RequestStatusView, bool) {
	if c == nil || c.RDB == nil {
		return models.RequestStatusView{}, false
	}
	raw, err := c.RDB.Get(ctx, statusKey(requestNumber)).Bytes()
	if err != nil {
		// cache is best-effort, any error is a miss
		return models.RequestStatusView{}, false
	}
	var view models.RequestStatusView
	if err := json.Unmarshal(raw, &view); err != nil {
		return models.RequestStatusView{}, false
	}
	return view, true
}

func (c *StatusCache) Set(ctx context.Context, view models.RequestStatusView) {
	if c == nil || c.RDB == nil {
		return
	}
	raw, err := json.Marshal(view)
	if err != nil {
		return
	}
	_ = c.RDB.Set(ctx, statusKey(view.RequestNumber), raw, statusCacheTTL).Err()
}

func (c *StatusCache) Invalidate(ctx context.Context, requestNumber string) {
	if c == nil || c.RDB == nil {
		return
	}
	_ = c.RDB.Del(ctx, statusKey(requestNumber)).Err()
}
