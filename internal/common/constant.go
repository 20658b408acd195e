// Package common contains shared constants and sentinel errors used across
// stock advisor client components.
package common

// AuthorizationHeaderName is the HTTP header used to carry the bearer
// credential on outbound requests.
const AuthorizationHeaderName = "Authorization"

// RequestIDHeaderName is the HTTP header that carries the per-request id.
const RequestIDHeaderName = "X-Request-ID"

// CredentialMetadataKey is the metadata key holding the bearer credential.
const CredentialMetadataKey = "access_token"

// CredentialSavedAtMetadataKey records when the credential was persisted.
const CredentialSavedAtMetadataKey = "access_token_saved_at"
