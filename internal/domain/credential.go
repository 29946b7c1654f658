package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Credential is the access/refresh token pair for the publishing account.
// It is replaced wholesale on every refresh.
type Credential struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type,omitempty"`
	Scope        string    `json:"scope,omitempty"`
	ExpiresIn    int       `json:"expires_in,omitempty"`
	Expiry       time.Time `json:"expiry,omitzero"`
}

// DecodeCredential parses the JSON form used by every credential sink.
func DecodeCredential(raw []byte) (Credential, error) {
	var cred Credential
	if err := json.Unmarshal(raw, &cred); err != nil {
		return Credential{}, fmt.Errorf("decode credential: %w", err)
	}
	if strings.TrimSpace(cred.RefreshToken) == "" {
		return Credential{}, fmt.Errorf("decode credential: refresh_token is empty")
	}
	return cred, nil
}

// EncodeCredential is the inverse of DecodeCredential.
func EncodeCredential(cred Credential) ([]byte, error) {
	raw, err := json.Marshal(cred)
	if err != nil {
		return nil, fmt.Errorf("encode credential: %w", err)
	}
	return raw, nil
}
