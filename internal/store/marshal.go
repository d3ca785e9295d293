package store

import (
	"encoding/json"
	"fmt"
)

// marshalStringList converts a tag or rule list to JSON TEXT for storage.
// A nil list is stored as the empty JSON array so round-trips stay uniform.
func marshalStringList(items []string) (string, error) {
	if items == nil {
		items = []string{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("marshal string list: %w", err)
	}
	return string(data), nil
}

// unmarshalStringList parses JSON TEXT back into a list. Empty TEXT (legacy
// rows) decodes to an empty list rather than erroring.
func unmarshalStringList(data string) ([]string, error) {
	if data == "" {
		return []string{}, nil
	}
	var items []string
	if err := json.Unmarshal([]byte(data), &items); err != nil {
		return nil, fmt.Errorf("unmarshal string list: %w", err)
	}
	if items == nil {
		items = []string{}
	}
	return items, nil
}
