package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// =============================================================================
// SHARED TYPES
// =============================================================================
// Response types are views of the backend JSON - decoding never validates shape,
// unknown fields are ignored and missing ones are left at their zero value.

// ID is an identifier the backend sends either as a number (users, exhibitors) or a string (packages)
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or a number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// MarshalJSON writes numeric ids back as numbers so request bodies match what the backend sent.
// Only canonical integers are written bare: "007" or "+5" stay strings.
func (id ID) MarshalJSON() ([]byte, error) {
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil && strconv.FormatInt(n, 10) == string(id) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

func (id ID) String() string {
	return string(id)
}

// ActionResponse is the acknowledgement returned by write endpoints
type ActionResponse struct {
	Message string `json:"message"`
	Status  string `json:"status,omitempty"`
	UserID  ID     `json:"user_id,omitempty"`
	Action  string `json:"action,omitempty"`
}
