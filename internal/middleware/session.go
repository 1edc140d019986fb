package middleware

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"manaklaltailor.in/web/internal/config"
)

const (
	sessionCookieName = "MANAKLAL_SESSION"
	sessionTTL        = 365 * 24 * time.Hour
)

// SessionData is the signed cookie payload. ID doubles as the visitor id
// that scopes the visitor's review board.
type SessionData struct {
	ID        string    `json:"id"`
	Locale    string    `json:"locale,omitempty"`
	CSRFToken string    `json:"csrf,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	// internal dirty flag; not serialized
	dirty bool
}

// Sessions issues and verifies HMAC-signed session cookies.
type Sessions struct {
	key    []byte
	secure bool
	now    func() time.Time
}

// NewSessions builds the session middleware from cfg. Without a signing key
// a random process-local key is generated, which invalidates every cookie on
// restart.
func NewSessions(cfg config.SessionConfig, logger *zap.Logger) *Sessions {
	if logger == nil {
		logger = zap.NewNop()
	}
	key := []byte(strings.TrimSpace(cfg.SigningKey))
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			logger.Error("session: failed to generate signing key", zap.Error(err))
			key = []byte("insecure-dev-key-set-MANAKLAL_WEB_SESSION_SIGNING_KEY")
		}
		logger.Warn("session: using ephemeral signing key; set MANAKLAL_WEB_SESSION_SIGNING_KEY in production")
	}
	return &Sessions{key: key, secure: cfg.Secure, now: time.Now}
}

// Middleware loads or initializes a session and stores it in the request context.
func (s *Sessions) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sd, fromCookie := s.read(r)
		if sd.ID == "" {
			now := s.now().UTC()
			sd = &SessionData{
				ID:        uuid.NewString(),
				CSRFToken: newCSRFToken(),
				CreatedAt: now,
				UpdatedAt: now,
				dirty:     true,
			}
		}
		ctx := context.WithValue(r.Context(), ctxKeySession, sd)

		rw := NewResponseRecorder(w)
		rw.SetBeforeWrite(func(w http.ResponseWriter) {
			if sd.dirty || !fromCookie {
				s.write(w, sd)
			}
		})
		next.ServeHTTP(rw, r.WithContext(ctx))
		// nothing written yet (e.g. HEAD): persist the cookie now
		if !rw.Wrote() && (sd.dirty || !fromCookie) {
			s.write(w, sd)
		}
	})
}

// GetSession returns session data from the request context.
func GetSession(r *http.Request) *SessionData {
	if v := r.Context().Value(ctxKeySession); v != nil {
		if sd, ok := v.(*SessionData); ok {
			return sd
		}
	}
	return &SessionData{}
}

// VisitorID returns the id that namespaces the visitor's stored data.
func VisitorID(r *http.Request) string {
	return GetSession(r).ID
}

// MarkDirty flags the session for writing before the response goes out.
func (sd *SessionData) MarkDirty() {
	sd.dirty = true
	sd.UpdatedAt = time.Now().UTC()
}

func (s *Sessions) sign(payload []byte) []byte {
	mac := hmac.New(sha256.New, s.key)
	mac.Write(payload)
	return mac.Sum(nil)
}

func (s *Sessions) read(r *http.Request) (*SessionData, bool) {
	c, err := r.Cookie(sessionCookieName)
	if err != nil || c.Value == "" {
		return &SessionData{}, false
	}
	payloadPart, sigPart, ok := strings.Cut(c.Value, ".")
	if !ok {
		return &SessionData{}, false
	}
	payload, err := base64.RawURLEncoding.DecodeString(payloadPart)
	if err != nil {
		return &SessionData{}, false
	}
	sig, err := base64.RawURLEncoding.DecodeString(sigPart)
	if err != nil {
		return &SessionData{}, false
	}
	if !hmac.Equal(sig, s.sign(payload)) {
		return &SessionData{}, false
	}
	var sd SessionData
	if err := json.Unmarshal(payload, &sd); err != nil {
		return &SessionData{}, false
	}
	if _, err := uuid.Parse(sd.ID); err != nil {
		return &SessionData{}, false
	}
	return &sd, true
}

func (s *Sessions) write(w http.ResponseWriter, sd *SessionData) {
	payload, _ := json.Marshal(sd)
	value := base64.RawURLEncoding.EncodeToString(payload) + "." +
		base64.RawURLEncoding.EncodeToString(s.sign(payload))
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  s.now().Add(sessionTTL),
	})
}
