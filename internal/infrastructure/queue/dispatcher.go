package queue

import (
	"context"
	"hash/fnv"

	"github.com/rs/zerolog"

	"github.com/breathscope/identity-api/internal/api/metrics"
	"github.com/breathscope/identity-api/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// MailDispatcher delivers outbound mail on a fixed set of background workers,
// sharded by recipient so messages to the same address stay ordered. Delivery
// failure is logged and counted; the request that enqueued the mail has long
// since been answered.
type MailDispatcher struct {
	workers []chan ports.Mail
	mailer  ports.Mailer
	log     zerolog.Logger
}

// NewMailDispatcher creates a MailDispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewMailDispatcher(numWorkers int, mailer ports.Mailer, log zerolog.Logger) *MailDispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &MailDispatcher{
		workers: make([]chan ports.Mail, numWorkers),
		mailer:  mailer,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.Mail, channelBuffer)
	}
	return d
}

var _ ports.MailDispatcher = (*MailDispatcher)(nil)

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *MailDispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue hands a message to the worker responsible for its recipient.
// Non-blocking up to channelBuffer capacity.
func (d *MailDispatcher) Enqueue(mail ports.Mail) {
	d.workers[d.shardIndex(mail.To)] <- mail
}

// shardIndex maps a recipient deterministically to a worker index.
func (d *MailDispatcher) shardIndex(to string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(to))
	return int(h.Sum32()) % len(d.workers)
}

func (d *MailDispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.Mail) {
	for {
		select {
		case <-ctx.Done():
			return
		case mail, ok := <-ch:
			if !ok {
				return
			}
			if err := d.mailer.Send(ctx, mail); err != nil {
				metrics.MailErrorsTotal.Inc()
				d.log.Error().Err(err).
					Str("to", mail.To).
					Str("subject", mail.Subject).
					Int("worker_id", id).
					Msg("mail delivery failed")
				continue
			}
			metrics.MailsSentTotal.Inc()
			d.log.Debug().
				Str("to", mail.To).
				Str("subject", mail.Subject).
				Msg("mail delivered")
		}
	}
}
