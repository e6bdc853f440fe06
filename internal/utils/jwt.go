package utils // package utils provides helper functions for session tokens, hashing and photo URLs

import (
    "crypto/rand"
    "crypto/sha256"
    "encoding/hex"
    "errors"
    "strconv"
    "time"

    "github.com/golang-jwt/jwt/v5"
)

// ErrInvalidSessionToken is returned for malformed, expired or forged cookies.
var ErrInvalidSessionToken = errors.New("invalid session token")

// SessionClaims is the decoded payload of a session cookie.  The cookie is
// only a signed pointer: SessionID must still name a live server-side record.
type SessionClaims struct {
    SessionID string
    UserID    uint64
    Role      string
    ExpiresAt time.Time
}

type sessionJWT struct {
    SID  string `json:"sid"`
    Role string `json:"role"`
    jwt.RegisteredClaims
}

// NewSessionID returns a 64 character random hex identifier.
func NewSessionID() (string, error) {
    return randomHex(32)
}

// SignSessionToken builds and signs an HS256 JWT carrying sid, sub, role,
// exp and iat.
func SignSessionToken(secret string, c SessionClaims) (string, error) {
    now := time.Now().UTC()
    claims := sessionJWT{
        SID:  c.SessionID,
        Role: c.Role,
        RegisteredClaims: jwt.RegisteredClaims{
            Subject:   strconv.FormatUint(c.UserID, 10),
            ExpiresAt: jwt.NewNumericDate(c.ExpiresAt),
            IssuedAt:  jwt.NewNumericDate(now),
        },
    }
    t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    return t.SignedString([]byte(secret))
}

// ParseSessionToken verifies the signature and expiry of raw and returns its
// claims.  Any failure collapses into ErrInvalidSessionToken.
func ParseSessionToken(secret, raw string) (SessionClaims, error) {
    var claims sessionJWT
    tok, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
        return []byte(secret), nil
    }, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
    if err != nil || !tok.Valid || claims.SID == "" {
        return SessionClaims{}, ErrInvalidSessionToken
    }
    uid, err := strconv.ParseUint(claims.Subject, 10, 64)
    if err != nil {
        return SessionClaims{}, ErrInvalidSessionToken
    }
    return SessionClaims{
        SessionID: claims.SID,
        UserID:    uid,
        Role:      claims.Role,
        ExpiresAt: claims.ExpiresAt.Time,
    }, nil
}

// HashSessionID returns the SHA-256 hex digest of a session id.  Stores key
// records by the digest so a leaked key list cannot be replayed as cookies.
func HashSessionID(sid string) string {
    sum := sha256.Sum256([]byte(sid))
    return hex.EncodeToString(sum[:])
}

// randomHex returns a hex-encoded string generated from n bytes of
// cryptographically secure random data.
func randomHex(n int) (string, error) {
    buf := make([]byte, n)
    if _, err := rand.Read(buf); err != nil {
        return "", err
    }
    return hex.EncodeToString(buf), nil
}
