package feed

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"marketfactory/internal/registry/models"
)

var errEmptyRecord = errors.New("empty market id")

// marketCreated is the event the factory publishes after a successful deploy.
type marketCreated struct {
	MarketID string `json:"market_id"`
}

// Decode extracts the market ID from a record value. Three encodings are
// accepted: {"market_id": "..."}, a JSON string, or the raw account ID bytes.
// The value is not validated beyond being non-empty.
func Decode(value []byte) (models.MarketID, error) {
	value = bytes.TrimSpace(value)
	if len(value) == 0 {
		return "", errEmptyRecord
	}

	var id string
	switch value[0] {
	case '{':
		var evt marketCreated
		if err := json.Unmarshal(value, &evt); err != nil {
			return "", fmt.Errorf("decode market created event: %w", err)
		}
		id = evt.MarketID
	case '"':
		if err := json.Unmarshal(value, &id); err != nil {
			return "", fmt.Errorf("decode market id: %w", err)
		}
	default:
		id = string(value)
	}

	if id == "" {
		return "", errEmptyRecord
	}
	return models.MarketID(id), nil
}
