package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

// Channel is the Postgres NOTIFY channel carrying comma-joined tags.
const Channel = "cache_invalidate"

// PGNotifier publishes invalidations with pg_notify so every instance evicts.
type PGNotifier struct {
	db *sqlx.DB
}

func NewPGNotifier(db *sqlx.DB) *PGNotifier {
	return &PGNotifier{db: db}
}

func (n *PGNotifier) Publish(ctx context.Context, tags []string) error {
	if _, err := n.db.ExecContext(ctx, `SELECT pg_notify($1, $2)`, Channel, strings.Join(tags, ",")); err != nil {
		return fmt.Errorf("pg_notify: %w", err)
	}
	return nil
}

// Listener evicts local entries when another instance publishes.
type Listener struct {
	dsn    string
	store  *Store
	logger *zap.SugaredLogger
}

func NewListener(dsn string, store *Store, logger *zap.SugaredLogger) *Listener {
	return &Listener{dsn: dsn, store: store, logger: logger}
}

// Run blocks until ctx is cancelled.
func (l *Listener) Run(ctx context.Context) error {
	report := func(ev pq.ListenerEventType, err error) {
		if err != nil {
			l.logger.Warnw("cache listener error", "err", err)
		}
		switch ev {
		case pq.ListenerEventConnectionAttemptFailed:
			l.logger.Warnw("cache listener connection attempt failed, will retry")
		case pq.ListenerEventDisconnected:
			l.logger.Warnw("cache listener disconnected")
		case pq.ListenerEventReconnected:
			l.logger.Infow("cache listener reconnected, flushing cache")
		}
	}

	pl := pq.NewListener(l.dsn, 10*time.Second, time.Minute, report)
	defer pl.Close()
	if err := pl.Listen(Channel); err != nil {
		return fmt.Errorf("listen %s: %w", Channel, err)
	}
	l.logger.Infow("cache listener started", "channel", Channel)

	for {
		select {
		case <-ctx.Done():
			return nil
		case n := <-pl.Notify:
			if n == nil {
				// nil after a reconnect: notifications may have been lost
				l.store.Flush()
				continue
			}
			l.store.Evict(ParseTags(n.Extra)...)
		case <-time.After(90 * time.Second):
			go func() { _ = pl.Ping() }()
		}
	}
}

// ParseTags splits a NOTIFY payload.
func ParseTags(payload string) []string {
	var out []string
	for _, t := range strings.Split(payload, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// Revalidator posts invalidated tags to an external frontend, e.g. an edge
// cache in front of the public site.
type Revalidator struct {
	url    string
	secret string
	client *http.Client
	logger *zap.SugaredLogger
}

func NewRevalidator(url, secret string, logger *zap.SugaredLogger) *Revalidator {
	return &Revalidator{url: url, secret: secret, client: &http.Client{Timeout: 5 * time.Second}, logger: logger}
}

// Publish sends the webhook in the background; the request never waits on it.
func (r *Revalidator) Publish(_ context.Context, tags []string) error {
	payload, err := json.Marshal(map[string]any{"secret": r.secret, "tags": tags})
	if err != nil {
		return err
	}
	go r.send(payload)
	return nil
}

func (r *Revalidator) send(payload []byte) {
	resp, err := r.client.Post(r.url, "application/json", bytes.NewReader(payload))
	if err != nil {
		r.logger.Warnw("revalidation request failed", "err", err)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		r.logger.Warnw("revalidation rejected", "status", resp.StatusCode)
		return
	}
	r.logger.Debugw("revalidation triggered")
}
