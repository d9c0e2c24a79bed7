// Package auth implements the local session layer: account records live in
// the durable store, passwords are verified with bcrypt and sessions are
// HMAC-signed tokens. None of this gates the sync core; identity is only
// consulted at the service boundary.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/qubitlabs/mediakeeper/internal/common"
	"github.com/qubitlabs/mediakeeper/internal/logging"
	"github.com/qubitlabs/mediakeeper/internal/models"
	"github.com/qubitlabs/mediakeeper/internal/storage"
	"golang.org/x/crypto/bcrypt"
)

// Role names a capability level.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// accountsKey is the durable-store key holding the account list.
const accountsKey = "authUsers"

// DefaultTokenTTL bounds session lifetime.
const DefaultTokenTTL = 24 * time.Hour

// Account is a stored login record.
type Account struct {
	Username     string `json:"username"`
	PasswordHash []byte `json:"passwordHash"`
	Role         Role   `json:"role"`
	Premium      bool   `json:"premium"`
}

// Claims is the session token payload.
type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
	Role     Role   `json:"role"`
	Premium  bool   `json:"premium"`
	DeviceID string `json:"deviceId"`
}

// Session is the decoded, verified view of a logged-in user.
type Session struct {
	Username string
	Role     Role
	Premium  bool
}

// IsAdmin reports whether the session may mutate catalogs.
func (s *Session) IsAdmin() bool { return s != nil && s.Role == RoleAdmin }

// Service verifies credentials against the durable store and mints session
// tokens.
type Service struct {
	durable  storage.Backend
	secret   []byte
	deviceID string
	tokenTTL time.Duration
	log      logging.Logger
	now      func() time.Time
}

type Config struct {
	Durable  storage.Backend
	Secret   []byte
	DeviceID string
	TokenTTL time.Duration
	Logger   logging.Logger

	// Now is a test seam; defaults to time.Now.
	Now func() time.Time
}

func NewService(cfg Config) (*Service, error) {
	if cfg.Durable == nil {
		return nil, fmt.Errorf("auth: durable backend is required")
	}
	if len(cfg.Secret) == 0 {
		return nil, fmt.Errorf("auth: signing secret is required")
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = DefaultTokenTTL
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Service{
		durable:  cfg.Durable,
		secret:   cfg.Secret,
		deviceID: cfg.DeviceID,
		tokenTTL: cfg.TokenTTL,
		log:      cfg.Logger,
		now:      cfg.Now,
	}, nil
}

// Bootstrap seeds the demo accounts (an admin with premium access and a
// free regular user) when no account record exists yet.
func (s *Service) Bootstrap(ctx context.Context) error {
	accounts, err := s.loadAccounts(ctx)
	if err != nil {
		return err
	}
	if len(accounts) > 0 {
		return nil
	}

	seed := []struct {
		username, password string
		role               Role
		premium            bool
	}{
		{"admin", "admin123", RoleAdmin, true},
		{"user", "user123", RoleUser, false},
	}
	for _, acc := range seed {
		hash, err := bcrypt.GenerateFromPassword([]byte(acc.password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash password for %s: %w", acc.username, err)
		}
		accounts = append(accounts, Account{
			Username:     acc.username,
			PasswordHash: hash,
			Role:         acc.role,
			Premium:      acc.premium,
		})
	}
	s.log.Info(ctx, "seeded demo accounts", "count", len(accounts))
	return s.saveAccounts(ctx, accounts)
}

// Login verifies the password and returns a signed session token.
func (s *Service) Login(ctx context.Context, username string, password []byte) (string, error) {
	accounts, err := s.loadAccounts(ctx)
	if err != nil {
		return "", err
	}

	for _, acc := range accounts {
		if acc.Username != username {
			continue
		}
		if err := bcrypt.CompareHashAndPassword(acc.PasswordHash, password); err != nil {
			return "", common.ErrUnauthorized
		}
		return s.sign(acc)
	}
	return "", common.ErrUnauthorized
}

// ParseToken validates a session token and returns the session it carries.
func (s *Service) ParseToken(tokenString string) (*Session, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, common.ErrInvalidToken
	}
	return &Session{Username: claims.Username, Role: claims.Role, Premium: claims.Premium}, nil
}

func (s *Service) sign(acc Account) (string, error) {
	now := s.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
		Username: acc.Username,
		Role:     acc.Role,
		Premium:  acc.Premium,
		DeviceID: s.deviceID,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (s *Service) loadAccounts(ctx context.Context) ([]Account, error) {
	rec, err := s.durable.Read(ctx, accountsKey)
	if err != nil {
		return nil, fmt.Errorf("load accounts: %w", err)
	}
	if rec == nil {
		return nil, nil
	}
	var accounts []Account
	if err := json.Unmarshal(rec.Value, &accounts); err != nil {
		return nil, fmt.Errorf("decode accounts: %w", err)
	}
	return accounts, nil
}

func (s *Service) saveAccounts(ctx context.Context, accounts []Account) error {
	value, err := json.Marshal(accounts)
	if err != nil {
		return fmt.Errorf("encode accounts: %w", err)
	}
	rec := &models.StampedRecord{
		Value:     value,
		Timestamp: s.now().UnixMilli(),
		Writer:    s.deviceID,
	}
	if err := s.durable.Write(ctx, accountsKey, rec); err != nil {
		return fmt.Errorf("save accounts: %w", err)
	}
	return nil
}

// CanAccess is the single capability check for content visibility: public
// items are visible to everyone, premium items require a premium session.
func CanAccess(item any, session *Session) bool {
	if !models.Premium(item) {
		return true
	}
	return session != nil && session.Premium
}
