package sanitize

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cognizone/skoslens/pkg/kvstore"
)

// Credentials holds the secrets for one endpoint. Which fields are set
// depends on the endpoint's auth kind.
type Credentials struct {
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
	Token    string `json:"token,omitempty"`
	APIKey   string `json:"api_key,omitempty"`
}

// storedCredentials is the serialized envelope, carrying the storage time.
type storedCredentials struct {
	Payload  string    `json:"payload"` // base64 of the Credentials JSON
	StoredAt time.Time `json:"stored_at"`
}

// CredentialStore keeps credentials for the lifetime of the session, keyed
// by endpoint id. Values are obscured with base64 encoding before storage.
// Base64 is an obfuscation against casual shoulder-surfing of memory dumps
// and debug output, NOT encryption; the protection boundary is the
// session-scoped store, which never writes to durable storage.
type CredentialStore struct {
	store kvstore.Store
}

// NewCredentialStore wraps a session-scoped store. Callers are expected to
// pass a kvstore.Memory; handing in a durable store would defeat the
// session-lifetime guarantee.
func NewCredentialStore(store kvstore.Store) *CredentialStore {
	return &CredentialStore{store: store}
}

// Store saves credentials for the endpoint id, overwriting any previous
// entry and recording the storage timestamp.
func (c *CredentialStore) Store(endpointID string, creds Credentials) error {
	raw, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("encoding credentials: %w", err)
	}

	envelope := storedCredentials{
		Payload:  base64.StdEncoding.EncodeToString(raw),
		StoredAt: time.Now().UTC(),
	}
	data, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("encoding credential envelope: %w", err)
	}

	if _, err := c.store.Set(credentialKey(endpointID), string(data)); err != nil {
		return fmt.Errorf("storing credentials for endpoint %q: %w", endpointID, err)
	}
	return nil
}

// Get retrieves credentials for the endpoint id. The second return value is
// false when no entry exists or the stored entry cannot be decoded.
func (c *CredentialStore) Get(endpointID string) (Credentials, bool) {
	data, ok := c.store.Get(credentialKey(endpointID))
	if !ok {
		return Credentials{}, false
	}

	var envelope storedCredentials
	if err := json.Unmarshal([]byte(data), &envelope); err != nil {
		return Credentials{}, false
	}

	raw, err := base64.StdEncoding.DecodeString(envelope.Payload)
	if err != nil {
		return Credentials{}, false
	}

	var creds Credentials
	if err := json.Unmarshal(raw, &creds); err != nil {
		return Credentials{}, false
	}
	return creds, true
}

// StoredAt returns when credentials for the endpoint id were stored.
func (c *CredentialStore) StoredAt(endpointID string) (time.Time, bool) {
	data, ok := c.store.Get(credentialKey(endpointID))
	if !ok {
		return time.Time{}, false
	}
	var envelope storedCredentials
	if err := json.Unmarshal([]byte(data), &envelope); err != nil {
		return time.Time{}, false
	}
	return envelope.StoredAt, true
}

// Clear removes only the entry for the given endpoint id, leaving other
// endpoints' credentials untouched.
func (c *CredentialStore) Clear(endpointID string) error {
	if _, err := c.store.Delete(credentialKey(endpointID)); err != nil {
		return fmt.Errorf("clearing credentials for endpoint %q: %w", endpointID, err)
	}
	return nil
}

// ClearAll removes every stored credential, for session teardown.
func (c *CredentialStore) ClearAll() error {
	return c.store.Clear()
}

func credentialKey(endpointID string) string {
	return "credentials:" + endpointID
}
