package notify

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/lipgloss"
	"github.com/rotisserie/eris"

	"github.com/sells-group/price-check/internal/model"
)

// ChatPrefix starts every chat line.
const ChatPrefix = "[PriceCheck] "

// chatPalette maps chat UI color codes to terminal colors.
var chatPalette = map[uint16]lipgloss.Color{
	45: lipgloss.Color("#00CC22"),
	25: lipgloss.Color("#FFFF66"),
	17: lipgloss.Color("#FF3333"),
}

// Chat writes colored result lines to a terminal.
type Chat struct {
	mu        sync.Mutex
	w         io.Writer
	renderer  *lipgloss.Renderer
	prefix    lipgloss.Style
	useColors atomic.Bool
}

// NewChat creates a chat notifier writing to w.
func NewChat(w io.Writer, useColors bool) *Chat {
	r := lipgloss.NewRenderer(w)
	c := &Chat{
		w:        w,
		renderer: r,
		prefix:   r.NewStyle().Foreground(lipgloss.Color("241")),
	}
	c.useColors.Store(useColors)
	return c
}

// SetUseColors toggles result coloring.
func (c *Chat) SetUseColors(v bool) {
	c.useColors.Store(v)
}

// Notify prints one line for the item.
func (c *Chat) Notify(_ context.Context, item *model.PricedItem) error {
	if item == nil {
		return nil
	}
	body := Line(item)
	if c.useColors.Load() {
		if color, ok := chatPalette[item.ChatColor]; ok {
			body = c.renderer.NewStyle().Foreground(color).Render(body)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := fmt.Fprintln(c.w, c.prefix.Render(ChatPrefix)+body); err != nil {
		return eris.Wrap(err, "notify: write chat")
	}
	return nil
}
