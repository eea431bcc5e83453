package model

import (
	"encoding/json"

	"github.com/rotisserie/eris"
)

// ItemResult is the final classification of a price evaluation.
type ItemResult int

const (
	ResultNone ItemResult = iota
	ResultSuccess
	ResultFailedToProcess
	ResultFailedToGetData
	ResultNoDataAvailable
	ResultNoRecentDataAvailable
	ResultBelowVendor
	ResultBelowMinimum
	ResultUnmarketable
)

var itemResultNames = map[ItemResult]string{
	ResultNone:                  "none",
	ResultSuccess:               "success",
	ResultFailedToProcess:       "failed_to_process",
	ResultFailedToGetData:       "failed_to_get_data",
	ResultNoDataAvailable:       "no_data_available",
	ResultNoRecentDataAvailable: "no_recent_data_available",
	ResultBelowVendor:           "below_vendor",
	ResultBelowMinimum:          "below_minimum",
	ResultUnmarketable:          "unmarketable",
}

func (r ItemResult) String() string {
	if name, ok := itemResultNames[r]; ok {
		return name
	}
	return "unknown"
}

// ParseItemResult is the inverse of String.
func ParseItemResult(s string) (ItemResult, error) {
	for r, name := range itemResultNames {
		if name == s {
			return r, nil
		}
	}
	return ResultNone, eris.Errorf("model: unknown item result %q", s)
}

// MarshalJSON encodes the result by name.
func (r ItemResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

// UnmarshalJSON decodes a result name.
func (r *ItemResult) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return eris.Wrap(err, "model: decode item result")
	}
	parsed, err := ParseItemResult(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
