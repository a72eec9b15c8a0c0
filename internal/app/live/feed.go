package live

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"kinbrio/internal/app/model"
	"kinbrio/internal/pkg/logx"
)

const (
	broadcastChannelBuffer = 256

	// FeedIdleTimeout is how long a feed without clients stays alive.
	FeedIdleTimeout = 5 * time.Minute
)

// Event is one frame of the activity stream.
type Event struct {
	Category model.NotificationCategory `json:"category"`
	Body     string                     `json:"body"`
	Created  int64                      `json:"created"`
}

// Feed fans the events of one organization out to its clients. Only the Run goroutine
// closes a client's send channel.
type Feed struct {
	OrganizationKey uuid.UUID

	clients map[*Client]struct{}

	// mu guards clients for size; Run is the only writer.
	mu sync.RWMutex

	broadcast  chan Event
	register   chan *Client
	unregister chan *Client

	stop     chan struct{}
	stopOnce sync.Once

	// done is closed when Run returns.
	done chan struct{}

	retire func(*Feed)

	idleTimeout time.Duration

	logger zerolog.Logger
}

func newFeed(organizationKey uuid.UUID, retire func(*Feed)) *Feed {
	return &Feed{
		OrganizationKey: organizationKey,
		clients:         make(map[*Client]struct{}),
		broadcast:       make(chan Event, broadcastChannelBuffer),
		register:        make(chan *Client),
		unregister:      make(chan *Client),
		stop:            make(chan struct{}),
		done:            make(chan struct{}),
		retire:          retire,
		idleTimeout:     FeedIdleTimeout,
		logger:          logx.Logger().With().Str("organization_key", organizationKey.String()).Logger(),
	}
}

// Stop ends Run. It is safe to call more than once.
func (f *Feed) Stop() {
	f.stopOnce.Do(func() { close(f.stop) })
}

func (f *Feed) add(c *Client) bool {
	select {
	case f.register <- c:
		return true
	case <-f.done:
		return false
	}
}

func (f *Feed) remove(c *Client) {
	select {
	case f.unregister <- c:
	case <-f.done:
	}
}

func (f *Feed) publish(ev Event) {
	select {
	case f.broadcast <- ev:
	case <-f.done:
	default:
		f.logger.Warn().Msg("Broadcast channel full. Event dropped.")
	}
}

func (f *Feed) size() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.clients)
}

// drop removes c and closes its send channel; WritePump then closes the connection.
func (f *Feed) drop(c *Client) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.clients[c]; !ok {
		return
	}
	delete(f.clients, c)
	close(c.send)
}

// Run is the feed loop. It returns on Stop or after idleTimeout without clients.
func (f *Feed) Run() {
	idle := time.NewTimer(f.idleTimeout)

	defer func() {
		idle.Stop()
		f.mu.Lock()
		for c := range f.clients {
			delete(f.clients, c)
			close(c.send)
		}
		f.mu.Unlock()
		close(f.done)
	}()

	for {
		select {
		case c := <-f.register:
			if !idle.Stop() {
				select {
				case <-idle.C:
				default:
				}
			}
			f.mu.Lock()
			f.clients[c] = struct{}{}
			f.mu.Unlock()
			f.logger.Info().Str("user_key", c.userKey.String()).Int("clients", f.size()).Msg("Client joined feed.")

		case c := <-f.unregister:
			f.drop(c)
			if f.size() == 0 {
				idle.Reset(f.idleTimeout)
			}

		case ev := <-f.broadcast:
			frame, err := json.Marshal(ev)
			if err != nil {
				f.logger.Error().Err(err).Msg("Failed to encode feed event.")
				continue
			}
			f.mu.RLock()
			var slow []*Client
			for c := range f.clients {
				select {
				case c.send <- frame:
				default:
					slow = append(slow, c)
				}
			}
			f.mu.RUnlock()
			for _, c := range slow {
				f.logger.Warn().Str("user_key", c.userKey.String()).Msg("Client too slow. Dropping.")
				f.drop(c)
			}
			if len(slow) > 0 && f.size() == 0 {
				idle.Reset(f.idleTimeout)
			}

		case <-idle.C:
			if f.size() > 0 {
				continue
			}
			f.retire(f)
			return

		case <-f.stop:
			return
		}
	}
}
