package odoo

import (
	"encoding/json"
	"fmt"
)

// many2One decodes the remote store's relational field encoding: either
// false (unset) or a two element [id, display name] tuple.
type many2One struct {
	ID   int
	Name string
}

func (m *many2One) UnmarshalJSON(data []byte) error {
	if string(data) == "false" || string(data) == "null" {
		*m = many2One{}
		return nil
	}

	var tuple []any
	if err := json.Unmarshal(data, &tuple); err != nil {
		return fmt.Errorf("decode relation field: %w", err)
	}
	if len(tuple) < 1 {
		return fmt.Errorf("decode relation field: empty tuple")
	}

	id, ok := tuple[0].(float64)
	if !ok {
		return fmt.Errorf("decode relation field: unexpected id %v", tuple[0])
	}
	m.ID = int(id)

	if len(tuple) > 1 {
		if name, ok := tuple[1].(string); ok {
			m.Name = name
		}
	}

	return nil
}

// optString decodes a text field that the remote store reports as false
// when unset.
type optString string

func (s *optString) UnmarshalJSON(data []byte) error {
	if string(data) == "false" || string(data) == "null" {
		*s = ""
		return nil
	}
	return json.Unmarshal(data, (*string)(s))
}
