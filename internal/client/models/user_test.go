package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUser_UnmarshalIntegerAndStringIDs(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want UserID
	}{
		{name: "integer id", in: `{"id": 42, "name": "Ada", "email": "ada@x.com"}`, want: "42"},
		{name: "string id", in: `{"id": "1", "name": "Ada", "email": "ada@x.com"}`, want: "1"},
		{name: "null id", in: `{"id": null, "name": "Ada"}`, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var u User
			require.NoError(t, json.Unmarshal([]byte(tt.in), &u))
			assert.Equal(t, tt.want, u.ID)
			assert.Equal(t, "Ada", u.Name)
		})
	}
}

func TestUser_UnmarshalRejectsFractionalID(t *testing.T) {
	var u User
	require.Error(t, json.Unmarshal([]byte(`{"id": 1.5}`), &u))
}

func TestMeResponse_AcceptsBareAndEnvelope(t *testing.T) {
	var bare MeResponse
	require.NoError(t, json.Unmarshal([]byte(`{"id": 7, "name": "Ada", "email": "ada@x.com"}`), &bare))
	assert.Equal(t, User{ID: "7", Name: "Ada", Email: "ada@x.com"}, bare.User)

	var wrapped MeResponse
	require.NoError(t, json.Unmarshal([]byte(`{"user": {"id": "1", "name": "Ada", "email": "ada@x.com"}}`), &wrapped))
	assert.Equal(t, User{ID: "1", Name: "Ada", Email: "ada@x.com"}, wrapped.User)
}
