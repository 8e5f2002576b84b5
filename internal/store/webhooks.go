package store

import (
	"context"

	"github.com/hecate-project/hecate/internal/gateway"
	"github.com/hecate-project/hecate/internal/herr"
	"github.com/hecate-project/hecate/internal/queue"
)

// WebhooksRepo is the `webhooks` table's CRUD surface and the Worker
// Queue's queue.WebhookLister implementation.
type WebhooksRepo struct {
	gw *gateway.Gateway
}

// NewWebhooksRepo wires a WebhooksRepo to the Gateway.
func NewWebhooksRepo(gw *gateway.Gateway) *WebhooksRepo {
	return &WebhooksRepo{gw: gw}
}

// WebhooksForEvent returns every webhook registered for event,
// satisfying queue.WebhookLister.
func (w *WebhooksRepo) WebhooksForEvent(ctx context.Context, event string) ([]queue.Webhook, error) {
	db := w.gw.DB(gateway.Replica)
	rows, err := db.QueryContext(ctx, `SELECT id, url, event FROM webhooks WHERE event = $1`, event)
	if err != nil {
		return nil, herr.FromPQ(err)
	}
	defer rows.Close()

	var out []queue.Webhook
	for rows.Next() {
		var h queue.Webhook
		if err := rows.Scan(&h.ID, &h.URL, &h.Event); err != nil {
			return nil, herr.FromPQ(err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// List returns every registered webhook, for the admin listing
// endpoint.
func (w *WebhooksRepo) List(ctx context.Context) ([]queue.Webhook, error) {
	db := w.gw.DB(gateway.Replica)
	rows, err := db.QueryContext(ctx, `SELECT id, url, event FROM webhooks ORDER BY id`)
	if err != nil {
		return nil, herr.FromPQ(err)
	}
	defer rows.Close()

	var out []queue.Webhook
	for rows.Next() {
		var h queue.Webhook
		if err := rows.Scan(&h.ID, &h.URL, &h.Event); err != nil {
			return nil, herr.FromPQ(err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// Create registers a new webhook, returning its id.
func (w *WebhooksRepo) Create(ctx context.Context, url, event string) (int64, error) {
	db := w.gw.DB(gateway.Primary)
	var id int64
	err := db.QueryRowContext(ctx,
		`INSERT INTO webhooks (url, event) VALUES ($1, $2) RETURNING id`, url, event,
	).Scan(&id)
	if err != nil {
		return 0, herr.FromPQ(err)
	}
	return id, nil
}

// Delete removes a webhook by id.
func (w *WebhooksRepo) Delete(ctx context.Context, id int64) error {
	db := w.gw.DB(gateway.Primary)
	_, err := db.ExecContext(ctx, `DELETE FROM webhooks WHERE id = $1`, id)
	if err != nil {
		return herr.FromPQ(err)
	}
	return nil
}
