// Package notify delivers evaluation results to chat and toast outputs.
package notify

import (
	"context"

	"github.com/sells-group/price-check/internal/model"
)

// Notifier receives applied evaluation results.
type Notifier interface {
	Notify(ctx context.Context, item *model.PricedItem) error
}

// Line formats the one-line summary shared by chat and toast.
func Line(item *model.PricedItem) string {
	return item.DisplayName() + " → " + item.Message
}
