package cache

import (
	"context"
	"encoding/json"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/nutriclinic/backoffice/pkg/logger"
	"github.com/nutriclinic/backoffice/pkg/messaging"
)

// Named views kept warm for the dashboard. A successful pipeline save
// invalidates both.
const (
	ViewDashboardPatients = "dashboard:patients"
	ViewDietsPatients     = "diets:patients"
)

const invalidationChannel = "view_invalidations"

type invalidation struct {
	Views []string `json:"views"`
}

// ViewCache holds rendered view data in process and fans invalidations
// out to other instances over the message broker.
type ViewCache struct {
	local  *gocache.Cache
	broker messaging.Broker
	logger *logger.Logger
}

func NewViewCache(ttl, cleanupInterval time.Duration, broker messaging.Broker, log *logger.Logger) *ViewCache {
	return &ViewCache{
		local:  gocache.New(ttl, cleanupInterval),
		broker: broker,
		logger: log,
	}
}

func (c *ViewCache) Get(view string) (interface{}, bool) {
	return c.local.Get(view)
}

func (c *ViewCache) Set(view string, value interface{}) {
	c.local.SetDefault(view, value)
}

// Invalidate drops the given views locally and broadcasts the
// invalidation. Broadcast failures are logged, not propagated: a stale
// remote cache expires on its own TTL.
func (c *ViewCache) Invalidate(ctx context.Context, views ...string) {
	for _, view := range views {
		c.local.Delete(view)
	}

	if c.broker == nil {
		return
	}
	if err := c.broker.Publish(ctx, invalidationChannel, invalidation{Views: views}); err != nil {
		c.logger.Error(err, "failed to broadcast view invalidation")
	}
}

// Listen drops local views when another instance broadcasts an
// invalidation. Blocks until the context is cancelled.
func (c *ViewCache) Listen(ctx context.Context) error {
	if c.broker == nil {
		return nil
	}

	messages, err := c.broker.Subscribe(ctx, invalidationChannel)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			var inv invalidation
			if err := json.Unmarshal(msg, &inv); err != nil {
				c.logger.Error(err, "failed to decode view invalidation")
				continue
			}
			for _, view := range inv.Views {
				c.local.Delete(view)
			}
		}
	}
}
