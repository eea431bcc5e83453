package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/price-check/internal/model"
)

func TestPresent(t *testing.T) {
	price := uint32(1234567)

	tests := []struct {
		result  model.ItemResult
		show    bool
		message string
		class   Class
	}{
		{model.ResultSuccess, true, "1,234,567", Positive},
		{model.ResultSuccess, false, MsgSellOnMarketboard, Positive},
		{model.ResultUnmarketable, true, MsgUnmarketable, Caution},
		{model.ResultBelowVendor, true, MsgBelowVendor, Caution},
		{model.ResultBelowMinimum, true, MsgBelowMinimum, Caution},
		{model.ResultFailedToProcess, true, MsgFailedToProcess, Negative},
		{model.ResultFailedToGetData, true, MsgFailedToGetData, Negative},
		{model.ResultNoDataAvailable, true, MsgNoDataAvailable, Negative},
		{model.ResultNoRecentDataAvailable, true, MsgNoRecentData, Negative},
		{model.ResultNone, true, MsgFailedToGetData, Negative},
	}

	for _, tt := range tests {
		t.Run(tt.result.String(), func(t *testing.T) {
			p := Present(tt.result, &price, tt.show)
			assert.Equal(t, tt.message, p.Message)
			assert.Equal(t, tt.class, p.Class)
		})
	}
}

func TestPresent_Colors(t *testing.T) {
	p := Present(model.ResultSuccess, nil, true)
	assert.Equal(t, MsgSellOnMarketboard, p.Message)
	assert.Equal(t, ColorGreen, p.OverlayColor)
	assert.Equal(t, ChatGreen, p.ChatColor)

	p = Present(model.ResultBelowVendor, nil, true)
	assert.Equal(t, ColorYellow, p.OverlayColor)
	assert.Equal(t, ChatYellow, p.ChatColor)

	p = Present(model.ResultNoRecentDataAvailable, nil, true)
	assert.Equal(t, ColorRed, p.OverlayColor)
	assert.Equal(t, ChatRed, p.ChatColor)
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "0", FormatPrice(0))
	assert.Equal(t, "999", FormatPrice(999))
	assert.Equal(t, "5,000", FormatPrice(5000))
	assert.Equal(t, "4,294,967,295", FormatPrice(4294967295))
}
