// Package session issues and verifies the signed session tokens that carry
// the login, consent and utility-link state.
package session

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"banortesmart/backend/internal/config"
	"banortesmart/backend/internal/consumption"
)

var (
	ErrMissingCredentials = errors.New("Por favor, completa todos los campos")
	ErrConsentRequired    = errors.New("Debes aceptar el uso de datos para continuar")
	ErrInvalidToken       = errors.New("invalid session token")
	ErrSessionRevoked     = errors.New("session has been closed")
	ErrUtilityNotLinked   = errors.New("utility account is not linked")
)

// Session is the decoded state of one login.
type Session struct {
	ID              string                `json:"session_id"`
	Username        string                `json:"username"`
	ConsentAccepted bool                  `json:"consent_accepted"`
	Linked          []consumption.Utility `json:"linked"`
	IssuedAt        time.Time             `json:"issued_at"`
	ExpiresAt       time.Time             `json:"expires_at"`
}

func (s Session) IsLinked(utility consumption.Utility) bool {
	return slices.Contains(s.Linked, utility)
}

// DefaultUtility is electricity when linked, water otherwise.
func (s Session) DefaultUtility() consumption.Utility {
	if s.IsLinked(consumption.Electricity) {
		return consumption.Electricity
	}
	return consumption.Water
}

func (s Session) Authorize(utility consumption.Utility) error {
	if !s.IsLinked(utility) {
		return fmt.Errorf("%w: %s", ErrUtilityNotLinked, utility)
	}
	return nil
}

type claims struct {
	Username string   `json:"username"`
	Consent  bool     `json:"consent"`
	Linked   []string `json:"linked,omitempty"`
	jwt.RegisteredClaims
}

// Manager signs sessions as JWTs and remembers logged-out session IDs
// until their tokens would have expired anyway.
type Manager struct {
	secret   []byte
	method   jwt.SigningMethod
	issuer   string
	audience string
	ttl      time.Duration
	now      func() time.Time

	mu      sync.Mutex
	revoked map[string]time.Time
}

func NewManager(cfg config.Config) (*Manager, error) {
	method := jwt.GetSigningMethod(cfg.JWTAlgorithm)
	if method == nil {
		return nil, fmt.Errorf("unsupported JWT algorithm %q", cfg.JWTAlgorithm)
	}
	ttl := time.Duration(cfg.SessionTTLMinutes) * time.Minute
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Manager{
		secret:   []byte(cfg.JWTSecret),
		method:   method,
		issuer:   cfg.JWTIssuer,
		audience: cfg.JWTAudience,
		ttl:      ttl,
		now:      time.Now,
		revoked:  make(map[string]time.Time),
	}, nil
}

// Login accepts any non-empty credentials; there is no real bank backend.
func (m *Manager) Login(username, password string) (Session, string, error) {
	username = strings.TrimSpace(username)
	if username == "" || strings.TrimSpace(password) == "" {
		return Session{}, "", ErrMissingCredentials
	}
	now := m.now().UTC().Truncate(time.Second)
	s := Session{
		ID:        uuid.NewString(),
		Username:  username,
		Linked:    []consumption.Utility{},
		IssuedAt:  now,
		ExpiresAt: now.Add(m.ttl),
	}
	token, err := m.sign(s)
	if err != nil {
		return Session{}, "", err
	}
	return s, token, nil
}

func (m *Manager) AcceptConsent(s Session) (Session, string, error) {
	s.ConsentAccepted = true
	token, err := m.sign(s)
	if err != nil {
		return Session{}, "", err
	}
	return s, token, nil
}

// Link marks a utility account as authenticated for the session and
// returns the provider's success message.
func (m *Manager) Link(s Session, utility consumption.Utility, email, password string) (Session, string, string, error) {
	if !s.ConsentAccepted {
		return Session{}, "", "", ErrConsentRequired
	}
	if strings.TrimSpace(email) == "" || strings.TrimSpace(password) == "" {
		return Session{}, "", "", ErrMissingCredentials
	}
	if _, err := consumption.ParseUtility(string(utility)); err != nil {
		return Session{}, "", "", err
	}
	if !s.IsLinked(utility) {
		linked := make([]consumption.Utility, 0, len(s.Linked)+1)
		linked = append(linked, s.Linked...)
		s.Linked = append(linked, utility)
	}
	token, err := m.sign(s)
	if err != nil {
		return Session{}, "", "", err
	}
	return s, token, LinkMessage(utility), nil
}

func (m *Manager) Logout(s Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	for id, expiresAt := range m.revoked {
		if now.After(expiresAt) {
			delete(m.revoked, id)
		}
	}
	m.revoked[s.ID] = s.ExpiresAt
}

func (m *Manager) isRevoked(sessionID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.revoked[sessionID]
	return ok
}

// Parse verifies a token and returns the session it carries.
func (m *Manager) Parse(tokenString string) (Session, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{m.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	}
	if m.issuer != "" {
		options = append(options, jwt.WithIssuer(m.issuer))
	}
	if m.audience != "" {
		options = append(options, jwt.WithAudience(m.audience))
	}

	var parsed claims
	token, err := jwt.ParseWithClaims(tokenString, &parsed, func(*jwt.Token) (any, error) {
		return m.secret, nil
	}, options...)
	if err != nil || !token.Valid {
		return Session{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if parsed.ID == "" || strings.TrimSpace(parsed.Username) == "" {
		return Session{}, fmt.Errorf("%w: missing session id or username", ErrInvalidToken)
	}
	if m.isRevoked(parsed.ID) {
		return Session{}, ErrSessionRevoked
	}

	linked := make([]consumption.Utility, 0, len(parsed.Linked))
	for _, raw := range parsed.Linked {
		utility, err := consumption.ParseUtility(raw)
		if err != nil {
			return Session{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
		linked = append(linked, utility)
	}

	s := Session{
		ID:              parsed.ID,
		Username:        parsed.Username,
		ConsentAccepted: parsed.Consent,
		Linked:          linked,
	}
	if parsed.IssuedAt != nil {
		s.IssuedAt = parsed.IssuedAt.Time.UTC()
	}
	if parsed.ExpiresAt != nil {
		s.ExpiresAt = parsed.ExpiresAt.Time.UTC()
	}
	return s, nil
}

func (m *Manager) sign(s Session) (string, error) {
	linked := make([]string, 0, len(s.Linked))
	for _, utility := range s.Linked {
		linked = append(linked, string(utility))
	}
	registered := jwt.RegisteredClaims{
		ID:        s.ID,
		Subject:   s.Username,
		Issuer:    m.issuer,
		IssuedAt:  jwt.NewNumericDate(s.IssuedAt),
		ExpiresAt: jwt.NewNumericDate(s.ExpiresAt),
	}
	if m.audience != "" {
		registered.Audience = jwt.ClaimStrings{m.audience}
	}
	token := jwt.NewWithClaims(m.method, claims{
		Username:         s.Username,
		Consent:          s.ConsentAccepted,
		Linked:           linked,
		RegisteredClaims: registered,
	})
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("signing session token: %w", err)
	}
	return signed, nil
}

// LinkMessage is the confirmation shown after a utility login.
func LinkMessage(utility consumption.Utility) string {
	switch utility {
	case consumption.Electricity:
		return "Autenticación exitosa con CFE"
	case consumption.Water:
		return "Autenticación exitosa con Sistema de Agua"
	default:
		return "Autenticación exitosa"
	}
}
