package inference

import (
	"encoding/json"
	"fmt"
)

// requestPayload is the serialized form sent to the decision provider.
type requestPayload struct {
	Windows []map[string]any `json:"windows"`
}

// BuildPayload serializes feature windows into a provider request.
//
// The size cap is checked before the window count so an oversized batch is
// always reported as too large, not merely too many. Both are caller
// configuration errors: no retry, no fallback.
func BuildPayload(windows []FeatureWindow, capBytes, batchLimit int) ([]byte, error) {
	if len(windows) == 0 {
		return nil, ErrNoWindows
	}

	payload := requestPayload{Windows: make([]map[string]any, 0, len(windows))}
	for _, w := range windows {
		payload.Windows = append(payload.Windows, w.Payload)
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("serializing payload: %w", err)
	}
	if len(raw) > capBytes {
		return nil, fmt.Errorf("%w: %d bytes (cap %d)", ErrPayloadTooLarge, len(raw), capBytes)
	}
	if len(windows) > batchLimit {
		return nil, fmt.Errorf("%w: %d windows (limit %d)", ErrTooManyWindows, len(windows), batchLimit)
	}
	return raw, nil
}
