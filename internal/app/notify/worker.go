package notify

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"

	"kinbrio/internal/app/model"
	"kinbrio/internal/pkg/errs"
	"kinbrio/internal/pkg/logx"
)

// OutboxStore is the persistence the worker needs.
type OutboxStore interface {
	ClaimDueNotifications(ctx context.Context, now, leaseUntil int64, limit int) ([]model.OutboxMessage, error)
	MarkNotificationDelivered(ctx context.Context, key uuid.UUID, deliveredRooms []uuid.UUID, now int64) error
	MarkNotificationFailed(ctx context.Context, m model.OutboxMessage) error
}

// Publisher receives every delivered notification, e.g. the live feed hub.
type Publisher interface {
	Publish(organizationKey uuid.UUID, category model.NotificationCategory, body string, created int64)
}

type WorkerConfig struct {
	PollInterval time.Duration
	BatchSize    int
	MaxAttempts  int

	// Lease is how long a claimed row stays hidden from other workers.
	Lease time.Duration

	// RetryBase and RetryCount drive the in-process retry of one delivery.
	RetryBase  time.Duration
	RetryCount uint64

	// RescheduleBase and RescheduleCap bound the delay before a failed row is due again.
	RescheduleBase time.Duration
	RescheduleCap  time.Duration
}

func (c WorkerConfig) withDefaults() WorkerConfig {
	if c.PollInterval <= 0 {
		c.PollInterval = 2 * time.Second
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 20
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 8
	}
	if c.Lease <= 0 {
		c.Lease = 2 * time.Minute
	}
	if c.RetryBase <= 0 {
		c.RetryBase = 200 * time.Millisecond
	}
	if c.RetryCount == 0 {
		c.RetryCount = 3
	}
	if c.RescheduleBase <= 0 {
		c.RescheduleBase = 30 * time.Second
	}
	if c.RescheduleCap <= 0 {
		c.RescheduleCap = time.Hour
	}
	return c
}

// Worker drains the notification outbox.
type Worker struct {
	store     OutboxStore
	fanout    *Fanout
	publisher Publisher
	cfg       WorkerConfig
	logger    zerolog.Logger
	now       func() time.Time
}

// NewWorker builds a worker. publisher may be nil.
func NewWorker(store OutboxStore, fanout *Fanout, publisher Publisher, cfg WorkerConfig) *Worker {
	return &Worker{
		store:     store,
		fanout:    fanout,
		publisher: publisher,
		cfg:       cfg.withDefaults(),
		logger:    logx.Component("notify_worker"),
		now:       time.Now,
	}
}

// Start polls until ctx is done.
func (w *Worker) Start(ctx context.Context) {
	w.logger.Info().Dur("poll_interval", w.cfg.PollInterval).Msg("Notification worker started")
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		if _, err := w.RunOnce(ctx); err != nil && ctx.Err() == nil {
			w.logger.Error().Err(err).Msg("Outbox poll failed")
		}
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("Notification worker stopped")
			return
		case <-ticker.C:
		}
	}
}

// RunOnce claims one batch of due rows and processes it, returning how many were claimed.
func (w *Worker) RunOnce(ctx context.Context) (int, error) {
	now := w.now()
	batch, err := w.store.ClaimDueNotifications(ctx, now.Unix(), now.Add(w.cfg.Lease).Unix(), w.cfg.BatchSize)
	if err != nil {
		return 0, err
	}
	for _, m := range batch {
		if ctx.Err() != nil {
			break
		}
		w.process(ctx, m)
	}
	return len(batch), nil
}

func (w *Worker) process(ctx context.Context, m model.OutboxMessage) {
	creds := Credentials{UserID: m.MatrixUserID, AccessToken: m.MatrixAccessToken, HomeServer: m.MatrixHomeServer}
	delivered := m.DeliveredRooms

	backoff := retry.WithMaxRetries(w.cfg.RetryCount, retry.NewExponential(w.cfg.RetryBase))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		var err error
		delivered, err = w.fanout.NotifyExcept(ctx, m.OrganizationKey, m.Category, m.Body, creds, delivered)
		if err != nil && retryable(err) {
			return retry.RetryableError(err)
		}
		return err
	})

	log := w.logger.With().Str("outbox_key", m.Key.String()).Str("category", m.Category.String()).Logger()

	// Interrupted by shutdown: leave the row leased so it is picked up again.
	if ctx.Err() != nil {
		return
	}

	if err == nil {
		if merr := w.store.MarkNotificationDelivered(ctx, m.Key, delivered, w.now().Unix()); merr != nil {
			log.Error().Err(merr).Msg("Failed to mark notification delivered")
			return
		}
		log.Debug().Int("rooms", len(delivered)).Msg("Notification delivered")
		if w.publisher != nil {
			w.publisher.Publish(m.OrganizationKey, m.Category, m.Body, m.Created)
		}
		return
	}

	m.DeliveredRooms = delivered
	m.Attempts++
	m.LastError = err.Error()
	m.Updated = w.now().Unix()
	if !retryable(err) || int(m.Attempts) >= w.cfg.MaxAttempts {
		m.Status = model.OutboxDead
		log.Warn().Err(err).Int32("attempts", m.Attempts).Msg("Notification abandoned")
	} else {
		m.Status = model.OutboxPending
		m.NextAttemptAt = w.now().Add(w.rescheduleDelay(m.Attempts)).Unix()
		log.Warn().Err(err).Int32("attempts", m.Attempts).Int64("next_attempt_at", m.NextAttemptAt).Msg("Notification delivery failed")
	}
	if merr := w.store.MarkNotificationFailed(ctx, m); merr != nil {
		log.Error().Err(merr).Msg("Failed to record notification failure")
	}
}

// rescheduleDelay grows as base * 2^(attempts-1), capped.
func (w *Worker) rescheduleDelay(attempts int32) time.Duration {
	exp := math.Pow(2, float64(attempts-1))
	d := time.Duration(float64(w.cfg.RescheduleBase) * exp)
	if d <= 0 || d > w.cfg.RescheduleCap {
		return w.cfg.RescheduleCap
	}
	return d
}

// retryable reports whether a later attempt can succeed. A rejected token or a missing
// record will not get better.
func retryable(err error) bool {
	switch errs.KindOf(err) {
	case errs.KindUnauthorized, errs.KindValidation, errs.KindNotFound:
		return false
	default:
		return true
	}
}
