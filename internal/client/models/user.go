// Package models defines the client-side shapes exchanged with the stock
// advisor API.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// UserID is held as a string but accepts a JSON number as well, since the
// API emits integer ids.
type UserID string

func (id *UserID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = UserID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("user id: %w", err)
	}
	if _, err := strconv.ParseInt(n.String(), 10, 64); err != nil {
		return fmt.Errorf("user id %s is not an integer", n)
	}
	*id = UserID(n.String())
	return nil
}

// User is the profile returned by the API. It is read-only for callers
// outside the session package.
type User struct {
	ID        UserID `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at,omitempty"`
}
