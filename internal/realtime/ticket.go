package realtime

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// TicketClaims are the claims of a WebSocket upgrade ticket. Browsers
// cannot set an Authorization header on a WS upgrade, so authenticated
// clients exchange their bearer token for a short-lived signed ticket first.
type TicketClaims struct {
	UID string `json:"uid"`
	jwt.RegisteredClaims
}

// TicketIssuer issues and verifies WS upgrade tickets.
type TicketIssuer struct {
	secret []byte
	ttl    time.Duration
}

// NewTicketIssuer creates a TicketIssuer.
func NewTicketIssuer(secret string, ttl time.Duration) *TicketIssuer {
	return &TicketIssuer{secret: []byte(secret), ttl: ttl}
}

// Issue creates a ticket for uid.
func (t *TicketIssuer) Issue(uid string) (string, error) {
	now := time.Now()
	claims := &TicketClaims{
		UID: uid,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uid,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// Verify validates a ticket and returns the user ID it was issued for.
func (t *TicketIssuer) Verify(ticket string) (string, error) {
	claims := &TicketClaims{}
	token, err := jwt.ParseWithClaims(ticket, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil {
		return "", err
	}
	if !token.Valid || claims.UID == "" {
		return "", fmt.Errorf("invalid ticket")
	}
	return claims.UID, nil
}
