package classify

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sells-group/price-check/internal/model"
)

// Class groups results for coloring.
type Class string

const (
	Positive Class = "positive"
	Caution  Class = "caution"
	Negative Class = "negative"
)

// Overlay colors as RGBA hex.
const (
	ColorGreen  = "#00CC22FF"
	ColorYellow = "#FFFF66FF"
	ColorRed    = "#FF3333FF"
)

// Chat UI foreground color codes.
const (
	ChatGreen  uint16 = 45
	ChatYellow uint16 = 25
	ChatRed    uint16 = 17
)

// Messages shown for each result.
const (
	MsgSellOnMarketboard = "Sell on marketboard"
	MsgFailedToProcess   = "Failed to process item"
	MsgFailedToGetData   = "Failed to get data"
	MsgNoDataAvailable   = "No data available"
	MsgNoRecentData      = "No recent data"
	MsgBelowVendor       = "Sell to vendor"
	MsgBelowMinimum      = "Below minimum price"
	MsgUnmarketable      = "Can't sell on marketboard"
)

// Presentation is the derived text and colors for a result.
type Presentation struct {
	Message      string
	Class        Class
	OverlayColor string
	ChatColor    uint16
}

var printer = message.NewPrinter(language.English)

// Present derives the message and colors for a result. price is only used
// for Success when showPrices is set.
func Present(result model.ItemResult, price *uint32, showPrices bool) Presentation {
	switch result {
	case model.ResultSuccess:
		msg := MsgSellOnMarketboard
		if showPrices && price != nil {
			msg = FormatPrice(*price)
		}
		return positive(msg)
	case model.ResultUnmarketable:
		return caution(MsgUnmarketable)
	case model.ResultBelowVendor:
		return caution(MsgBelowVendor)
	case model.ResultBelowMinimum:
		return caution(MsgBelowMinimum)
	case model.ResultFailedToGetData, model.ResultNone:
		return negative(MsgFailedToGetData)
	case model.ResultNoDataAvailable:
		return negative(MsgNoDataAvailable)
	case model.ResultNoRecentDataAvailable:
		return negative(MsgNoRecentData)
	default:
		return negative(MsgFailedToProcess)
	}
}

// FormatPrice groups thousands, e.g. 1234567 -> "1,234,567".
func FormatPrice(price uint32) string {
	return printer.Sprintf("%d", price)
}

func positive(msg string) Presentation {
	return Presentation{Message: msg, Class: Positive, OverlayColor: ColorGreen, ChatColor: ChatGreen}
}

func caution(msg string) Presentation {
	return Presentation{Message: msg, Class: Caution, OverlayColor: ColorYellow, ChatColor: ChatYellow}
}

func negative(msg string) Presentation {
	return Presentation{Message: msg, Class: Negative, OverlayColor: ColorRed, ChatColor: ChatRed}
}
