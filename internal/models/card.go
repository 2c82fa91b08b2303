// Package models holds the records moved between the splitter phases.
package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Card decoding errors.
var (
	ErrMissingSet = errors.New("card has no set code")
	ErrNotObject  = errors.New("card is not a JSON object")
)

// Card is one bulk-data record. The payload is kept verbatim so the set
// files carry every field in its original order.
type Card struct {
	Set string
	Raw json.RawMessage
}

// UnmarshalJSON keeps a copy of the object and extracts its set code.
func (c *Card) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return ErrNotObject
	}

	var head struct {
		Set *string `json:"set"`
	}
	if err := json.Unmarshal(trimmed, &head); err != nil {
		return fmt.Errorf("failed to read set code: %w", err)
	}

	if head.Set == nil || *head.Set == "" {
		return ErrMissingSet
	}

	c.Set = *head.Set
	c.Raw = append(c.Raw[:0], trimmed...)

	return nil
}
