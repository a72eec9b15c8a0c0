/*
Package live streams delivered notifications to browsers over WebSocket.

The Hub keeps one Feed per organization with connected clients. A Feed runs its own loop
that registers clients, fans events out and retires itself after a period without clients.
*/
package live

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"kinbrio/internal/app/model"
	"kinbrio/internal/pkg/logx"
)

// attachAttempts bounds retries when a client races a feed that is retiring.
const attachAttempts = 3

// Hub coordinates the feeds of all organizations.
type Hub struct {
	feeds map[uuid.UUID]*Feed

	// mu protects feeds.
	mu sync.RWMutex

	// wg tracks running feed loops so Shutdown can wait for them.
	wg sync.WaitGroup

	closed bool

	logger zerolog.Logger
}

func NewHub() *Hub {
	return &Hub{
		feeds:  make(map[uuid.UUID]*Feed),
		logger: logx.Component("live_hub"),
	}
}

// feed returns the running feed of an organization, starting one if needed. It returns
// nil once the hub is shut down.
func (h *Hub) feed(organizationKey uuid.UUID) *Feed {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	if f, ok := h.feeds[organizationKey]; ok {
		return f
	}

	f := newFeed(organizationKey, h.retire)
	h.feeds[organizationKey] = f
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		f.Run()
	}()

	h.logger.Debug().Str("organization_key", organizationKey.String()).Msg("Feed started.")
	return f
}

// retire drops f from the hub when it is still the registered feed of its organization.
func (h *Hub) retire(f *Feed) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if cur, ok := h.feeds[f.OrganizationKey]; ok && cur == f {
		delete(h.feeds, f.OrganizationKey)
		h.logger.Debug().Str("organization_key", f.OrganizationKey.String()).Msg("Feed retired.")
	}
}

// Attach registers c with its organization's feed. It reports false when the hub is shut
// down.
func (h *Hub) Attach(c *Client) bool {
	for i := 0; i < attachAttempts; i++ {
		f := h.feed(c.organizationKey)
		if f == nil {
			return false
		}
		c.feed = f
		if f.add(c) {
			return true
		}
	}
	return false
}

// Publish hands an event to the organization's feed, if anyone is listening. It never
// blocks.
func (h *Hub) Publish(organizationKey uuid.UUID, category model.NotificationCategory, body string, created int64) {
	h.mu.RLock()
	f, ok := h.feeds[organizationKey]
	h.mu.RUnlock()
	if !ok {
		return
	}
	f.publish(Event{Category: category, Body: body, Created: created})
}

// Clients counts the connected clients of an organization.
func (h *Hub) Clients(organizationKey uuid.UUID) int {
	h.mu.RLock()
	f, ok := h.feeds[organizationKey]
	h.mu.RUnlock()
	if !ok {
		return 0
	}
	return f.size()
}

// Shutdown stops every feed, closing all client connections, and waits for the feed loops.
func (h *Hub) Shutdown() {
	h.logger.Info().Msg("Shutting down live hub...")

	h.mu.Lock()
	h.closed = true
	for _, f := range h.feeds {
		f.Stop()
	}
	h.feeds = map[uuid.UUID]*Feed{}
	h.mu.Unlock()

	h.wg.Wait()
	h.logger.Info().Msg("Live hub shutdown complete.")
}
