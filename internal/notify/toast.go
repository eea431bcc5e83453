package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/price-check/internal/model"
)

// ToastPayload is the webhook body.
type ToastPayload struct {
	Text      string           `json:"text"`
	ItemID    uint32           `json:"item_id"`
	HQ        bool             `json:"hq"`
	Result    model.ItemResult `json:"result"`
	Message   string           `json:"message"`
	Timestamp time.Time        `json:"timestamp"`
}

// Toast posts results to a webhook. Without a URL it logs them instead.
type Toast struct {
	url    string
	client *http.Client
}

// NewToast creates a toast notifier.
func NewToast(webhookURL string) *Toast {
	return &Toast{
		url:    webhookURL,
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

// Notify sends one toast.
func (t *Toast) Notify(ctx context.Context, item *model.PricedItem) error {
	if item == nil {
		return nil
	}
	payload := ToastPayload{
		Text:      Line(item),
		ItemID:    item.ItemID,
		HQ:        item.HQ,
		Result:    item.Result,
		Message:   item.Message,
		Timestamp: time.Now().UTC(),
	}

	if t.url == "" {
		zap.L().Info("toast", zap.String("text", payload.Text), zap.Stringer("result", item.Result))
		return nil
	}
	return t.post(ctx, payload)
}

func (t *Toast) post(ctx context.Context, payload ToastPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return eris.Wrap(err, "notify: marshal toast")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, bytes.NewReader(body))
	if err != nil {
		return eris.Wrap(err, "notify: create toast request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return eris.Wrap(err, "notify: toast request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode >= 400 {
		return eris.Errorf("notify: toast webhook returned status %d", resp.StatusCode)
	}
	return nil
}
