package queue

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"
)

// Dispatcher fires best-effort, at-most-once webhook POSTs. A failed
// delivery is logged and dropped — spec.md §4.6 explicitly accepts
// no-retry/non-durable delivery.
type Dispatcher struct {
	client *http.Client
}

// NewDispatcher builds a Dispatcher whose outbound requests abort
// after timeout.
func NewDispatcher(timeout time.Duration) *Dispatcher {
	return &Dispatcher{client: &http.Client{Timeout: timeout}}
}

type webhookPayload struct {
	Event string `json:"event"`
	ID    int64  `json:"id,omitempty"`
}

// Fire POSTs job's payload to hook's URL. Errors are logged, never
// returned: the caller has no recovery action beyond moving on to the
// next job.
func (d *Dispatcher) Fire(ctx context.Context, hook Webhook, job Job) {
	body, err := json.Marshal(webhookPayload{Event: job.Kind.String(), ID: job.ID})
	if err != nil {
		log.Printf("queue: marshal webhook payload for hook %d: %v", hook.ID, err)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, hook.URL, bytes.NewReader(body))
	if err != nil {
		log.Printf("queue: build webhook request for hook %d: %v", hook.ID, err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		log.Printf("queue: webhook %d delivery failed: %v", hook.ID, err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		log.Printf("queue: webhook %d responded %d", hook.ID, resp.StatusCode)
	}
}
