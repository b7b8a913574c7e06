package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenTTL is the fixed lifetime of a session token.
const TokenTTL = 12 * time.Hour

var (
	ErrTokenMissing = errors.New("token missing")
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

// Claims is the JWT payload of a session token.
type Claims struct {
	AccountID int64 `json:"account_id"`
	Role      Role  `json:"role"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies HS256 session tokens.
type TokenService struct {
	secret []byte
	now    func() time.Time
}

func NewTokenService(secret []byte) *TokenService {
	return &TokenService{secret: secret, now: time.Now}
}

// WithClock returns a copy of the service that reads the current time from now.
func (s *TokenService) WithClock(now func() time.Time) *TokenService {
	return &TokenService{secret: s.secret, now: now}
}

// Issue mints a token for subjectID valid for TokenTTL.
func (s *TokenService) Issue(subjectID int64, role Role) (string, Identity, error) {
	if subjectID <= 0 {
		return "", Identity{}, fmt.Errorf("issue token: invalid subject %d", subjectID)
	}
	if !role.Valid() {
		return "", Identity{}, fmt.Errorf("issue token: invalid role %q", role)
	}

	now := s.now().UTC().Truncate(time.Second)
	exp := now.Add(TokenTTL)
	claims := Claims{
		AccountID: subjectID,
		Role:      role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(subjectID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", Identity{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, Identity{SubjectID: subjectID, Role: role, IssuedAt: now, ExpiresAt: exp}, nil
}

// Verify checks the signature, algorithm and expiry of tokenStr and returns
// the identity it carries. On any failure the returned identity is empty.
func (s *TokenService) Verify(tokenStr string) (Identity, error) {
	if tokenStr == "" {
		return Identity{}, ErrTokenMissing
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, ErrTokenExpired
		}
		return Identity{}, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if !token.Valid {
		return Identity{}, ErrTokenInvalid
	}
	if claims.AccountID <= 0 || !claims.Role.Valid() {
		return Identity{}, fmt.Errorf("%w: malformed claims", ErrTokenInvalid)
	}

	id := Identity{SubjectID: claims.AccountID, Role: claims.Role}
	if claims.IssuedAt != nil {
		id.IssuedAt = claims.IssuedAt.Time
	}
	id.ExpiresAt = claims.ExpiresAt.Time
	return id, nil
}
