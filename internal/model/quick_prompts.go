package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

type QuickPrompt struct {
	Label string `json:"label" binding:"required,max=64"`
	Text  string `json:"text" binding:"required,max=4000"`
}

// QuickPrompts keeps the user's shortcuts in insertion order. Stored as a JSON
// array in a text column.
type QuickPrompts []QuickPrompt

// Value implements the driver.Valuer interface.
func (q QuickPrompts) Value() (driver.Value, error) {
	if len(q) == 0 {
		return "", nil
	}

	b, err := json.Marshal([]QuickPrompt(q))
	if err != nil {
		return nil, fmt.Errorf("failed to encode quick prompts, %w", err)
	}

	return string(b), nil
}

// Scan implements the sql.Scanner interface.
// Anything that isn't a JSON array of prompts decodes to an empty list.
func (q *QuickPrompts) Scan(value any) error {
	*q = QuickPrompts{}

	var raw []byte
	switch v := value.(type) {
	case nil:
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("failed to scan QuickPrompts, %v", value)
	}

	if len(raw) == 0 {
		return nil
	}

	var out []QuickPrompt
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}

	*q = out
	return nil
}
