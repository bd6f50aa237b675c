package event

import (
	"encoding/json"
	"fmt"
)

// DecodePayload returns an event payload as T. Payloads published in process
// are already T or *T; payloads read back from a dead letter file are generic
// JSON and go through a marshal round trip.
func DecodePayload[T any](payload any) (T, error) {
	switch v := payload.(type) {
	case T:
		return v, nil
	case *T:
		if v != nil {
			return *v, nil
		}
	}

	var out T
	raw, err := json.Marshal(payload)
	if err != nil {
		return out, fmt.Errorf("%s %T: %w", ErrMsgDecodePayload, out, err)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("%s %T: %w", ErrMsgDecodePayload, out, err)
	}
	return out, nil
}
