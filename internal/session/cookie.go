package session

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"
)

// CookieName is the name of the session cookie
const CookieName = "paper_session"

// ErrInvalidCookie is returned for malformed or tampered cookie values
var ErrInvalidCookie = errors.New("invalid session cookie")

// Codec signs session ids for use in a cookie
type Codec struct {
	secret []byte
}

// NewCodec creates a codec keyed with secret
func NewCodec(secret string) *Codec {
	return &Codec{secret: []byte(secret)}
}

func (c *Codec) sign(id string) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(id))
	return hex.EncodeToString(mac.Sum(nil))
}

// Encode returns "<id>.<signature>"
func (c *Codec) Encode(id string) string {
	return id + "." + c.sign(id)
}

// Decode verifies value and returns the session id
func (c *Codec) Decode(value string) (string, error) {
	idx := strings.LastIndex(value, ".")
	if idx <= 0 || idx == len(value)-1 {
		return "", ErrInvalidCookie
	}

	id, sig := value[:idx], value[idx+1:]
	if !hmac.Equal([]byte(sig), []byte(c.sign(id))) {
		return "", ErrInvalidCookie
	}
	return id, nil
}

// Manager ties the store to HTTP requests through a signed cookie
type Manager struct {
	store *Store
	codec *Codec
}

// NewManager creates a cookie-backed session manager
func NewManager(store *Store, codec *Codec) *Manager {
	return &Manager{store: store, codec: codec}
}

// Store returns the underlying session store
func (m *Manager) Store() *Store {
	return m.store
}

// Load returns the caller's session, creating one on first contact. The
// cookie is (re)issued on every call so its expiry tracks the idle TTL.
func (m *Manager) Load(w http.ResponseWriter, r *http.Request) *State {
	id := ""
	if cookie, err := r.Cookie(CookieName); err == nil {
		if decoded, err := m.codec.Decode(cookie.Value); err == nil {
			id = decoded
		}
	}

	state, _ := m.store.GetOrCreate(id)

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    m.codec.Encode(state.ID),
		Path:     "/",
		MaxAge:   int(m.store.TTL().Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return state
}
