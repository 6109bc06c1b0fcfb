// Package auth issues and verifies the session tokens of the journal service.
package auth

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/PaulBabatuyi/healthJournal-gRPC/internal/normalize"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/v2/bson"
	"golang.org/x/crypto/bcrypt"
)

const defaultKid = "default"

// mediaAudience marks tokens that only unlock one media download.
const mediaAudience = "media"

// ErrWrongMedia is returned when a media token was issued for another file.
var ErrWrongMedia = errors.New("token was issued for another media file")

// JWTManager signs and validates JWT tokens used by the API. It holds a set
// of HMAC keys by key id so secrets can be rotated: new tokens are signed
// with the active key, older tokens verify as long as their key is kept.
type JWTManager struct {
	// keys maps a kid header value to its HMAC secret
	keys map[string][]byte

	// activeKid names the key new tokens are signed with
	activeKid string

	// duration is the lifetime of a session token
	duration time.Duration
}

// Claims is the session payload: who the user is and how to show them.
type Claims struct {
	UserID  string `json:"user_id"`           // users._id as hex
	Email   string `json:"email"`             // normalized; the role lookup key
	Name    string `json:"name,omitempty"`    // display name shown on messages
	Picture string `json:"picture,omitempty"` // avatar URL
	jwt.RegisteredClaims
}

// NewJWTManager returns a manager with a single signing secret.
func NewJWTManager(secretKey string, duration time.Duration) *JWTManager {
	return NewJWTManagerFromKeys(map[string]string{defaultKid: secretKey}, defaultKid, duration)
}

// NewJWTManagerFromKeys returns a manager over several kid:secret pairs.
// If activeKid is empty or unknown, an arbitrary but stable key is chosen.
func NewJWTManagerFromKeys(keys map[string]string, activeKid string, duration time.Duration) *JWTManager {
	m := &JWTManager{keys: make(map[string][]byte, len(keys)), duration: duration}
	for kid, secret := range keys {
		m.keys[kid] = []byte(secret)
	}
	// fall back to the lowest kid so restarts pick the same key
	if _, ok := m.keys[activeKid]; !ok {
		activeKid = ""
		for kid := range m.keys {
			if activeKid == "" || kid < activeKid {
				activeKid = kid
			}
		}
	}
	m.activeKid = activeKid
	return m
}

// GenerateToken issues a signed JWT token for a user.
func (m *JWTManager) GenerateToken(userID bson.ObjectID, email, name, picture string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(m.duration)

	claims := &Claims{
		UserID:  userID.Hex(),
		Email:   normalize.Email(email),
		Name:    name,
		Picture: picture,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.Hex(),                  // same as UserID, for generic JWT tooling
			ExpiresAt: jwt.NewNumericDate(expiresAt), // checked by VerifyToken
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	key, ok := m.keys[m.activeKid]
	if !ok {
		return "", time.Time{}, errors.New("no signing key configured")
	}

	// HS256 with the active key; kid tells VerifyToken which key to use
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token.Header["kid"] = m.activeKid

	tokenString, err := token.SignedString(key)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// VerifyToken parses and validates a token and returns its claims.
func (m *JWTManager) VerifyToken(tokenString string) (*Claims, error) {
	claims := &Claims{}

	// ParseWithClaims checks the signature and exp before returning
	token, err := jwt.ParseWithClaims(tokenString, claims, m.keyFunc)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	// a download token is not a session
	if slices.Contains(claims.Audience, mediaAudience) {
		return nil, errors.New("media token used as a session")
	}
	return claims, nil
}

// SignMedia issues a short-lived token that grants the download of the
// media file mediaID and nothing else.
func (m *JWTManager) SignMedia(mediaID string, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(ttl)
	key, ok := m.keys[m.activeKid]
	if !ok {
		return "", time.Time{}, errors.New("no signing key configured")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   mediaID,
		Audience:  jwt.ClaimStrings{mediaAudience},
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(now),
	})
	token.Header["kid"] = m.activeKid
	signed, err := token.SignedString(key)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// VerifyMedia checks that tokenString is an unexpired media token for mediaID.
func (m *JWTManager) VerifyMedia(tokenString, mediaID string) error {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, m.keyFunc,
		jwt.WithAudience(mediaAudience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return err
	}
	if claims.Subject != mediaID {
		return ErrWrongMedia
	}
	return nil
}

// keyFunc picks the HMAC key named by the token's kid header.
func (m *JWTManager) keyFunc(token *jwt.Token) (interface{}, error) {
	// only HMAC; anything else is a forged header
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	kid, _ := token.Header["kid"].(string)
	if kid == "" {
		// tokens from before rotation carry no kid
		kid = m.activeKid
	}
	key, ok := m.keys[kid]
	if !ok {
		return nil, fmt.Errorf("unknown key id %q", kid)
	}
	return key, nil
}

// HashPassword returns a bcrypt hash for the provided plaintext.
func HashPassword(password string) (string, error) {
	// DefaultCost (10) is the bcrypt work factor; the salt is random per call
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedPassword), nil
}

// CheckPassword compares a plaintext password against a bcrypt hash.
func CheckPassword(hash, password string) error {
	// nil on match, bcrypt.ErrMismatchedHashAndPassword otherwise
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
