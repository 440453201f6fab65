package sanitize

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognizone/skoslens/pkg/kvstore"
)

func newCredentialStore(t *testing.T) (*CredentialStore, *kvstore.Memory) {
	t.Helper()
	mem, err := kvstore.NewMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mem.Close() })
	return NewCredentialStore(mem), mem
}

func TestCredentialStore_RoundTrip(t *testing.T) {
	store, _ := newCredentialStore(t)

	creds := Credentials{Username: "alice", Password: "s3cret"}
	require.NoError(t, store.Store("ep-1", creds))

	got, ok := store.Get("ep-1")
	assert.True(t, ok)
	assert.Equal(t, creds, got)

	_, ok = store.Get("ep-2")
	assert.False(t, ok)
}

func TestCredentialStore_ValuesObscuredAndTimestamped(t *testing.T) {
	store, mem := newCredentialStore(t)
	require.NoError(t, store.Store("ep-1", Credentials{Token: "very-secret-token"}))

	raw, ok := mem.Get("credentials:ep-1")
	require.True(t, ok)

	// The raw stored value never contains the secret in the clear.
	assert.NotContains(t, raw, "very-secret-token")

	var envelope struct {
		Payload  string    `json:"payload"`
		StoredAt time.Time `json:"stored_at"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &envelope))
	assert.NotEmpty(t, envelope.Payload)
	assert.WithinDuration(t, time.Now().UTC(), envelope.StoredAt, 5*time.Second)

	storedAt, ok := store.StoredAt("ep-1")
	assert.True(t, ok)
	assert.Equal(t, envelope.StoredAt, storedAt)
}

func TestCredentialStore_ClearIsPerEndpoint(t *testing.T) {
	store, _ := newCredentialStore(t)
	require.NoError(t, store.Store("ep-1", Credentials{APIKey: "key-1"}))
	require.NoError(t, store.Store("ep-2", Credentials{APIKey: "key-2"}))

	require.NoError(t, store.Clear("ep-1"))

	_, ok := store.Get("ep-1")
	assert.False(t, ok)

	got, ok := store.Get("ep-2")
	assert.True(t, ok)
	assert.Equal(t, "key-2", got.APIKey)
}

func TestCredentialStore_ClearAll(t *testing.T) {
	store, mem := newCredentialStore(t)
	require.NoError(t, store.Store("ep-1", Credentials{Token: "a"}))
	require.NoError(t, store.Store("ep-2", Credentials{Token: "b"}))

	require.NoError(t, store.ClearAll())
	assert.Equal(t, 0, mem.Size())
}

func TestCredentialStore_Overwrite(t *testing.T) {
	store, _ := newCredentialStore(t)
	require.NoError(t, store.Store("ep-1", Credentials{Password: "old"}))
	require.NoError(t, store.Store("ep-1", Credentials{Password: "new"}))

	got, ok := store.Get("ep-1")
	require.True(t, ok)
	assert.Equal(t, "new", got.Password)
}

func TestCredentialStore_CorruptEntryIsMiss(t *testing.T) {
	store, mem := newCredentialStore(t)
	_, err := mem.Set("credentials:ep-1", "{not json")
	require.NoError(t, err)

	_, ok := store.Get("ep-1")
	assert.False(t, ok)

	_, err = mem.Set("credentials:ep-2", `{"payload":"???not-base64???","stored_at":"2026-01-01T00:00:00Z"}`)
	require.NoError(t, err)
	_, ok = store.Get("ep-2")
	assert.False(t, ok)
}
