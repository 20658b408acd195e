package models

import (
	"bytes"
	"encoding/json"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Message      string `json:"message,omitempty"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	User         User   `json:"user"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// MessageResponse is the generic {"message": ...} body the API uses for
// acknowledgements and errors.
type MessageResponse struct {
	Message string `json:"message"`
}

// MeResponse accepts both the bare user object and a {"user": {...}}
// envelope.
type MeResponse struct {
	User User
}

func (m *MeResponse) UnmarshalJSON(b []byte) error {
	var envelope struct {
		User *User `json:"user"`
	}
	if err := json.Unmarshal(b, &envelope); err != nil {
		return err
	}
	if envelope.User != nil {
		m.User = *envelope.User
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	return dec.Decode(&m.User)
}
