package models

import (
	"encoding/json"
	"fmt"
)

// scanJSON is the shared sql.Scanner body for the jsonb-backed list types.
// Postgres drivers hand jsonb back as either []byte or string.
func scanJSON(value interface{}, dest interface{}) error {
	if value == nil {
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, dest)
	case string:
		return json.Unmarshal([]byte(v), dest)
	default:
		return fmt.Errorf("unsupported type for jsonb column: %T", value)
	}
}
