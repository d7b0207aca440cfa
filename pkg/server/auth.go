package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// mtcClaims are the JWT claims a relying party presents to authenticate
// against a private deployment's fetch endpoint.
type mtcClaims struct {
	jwt.RegisteredClaims
	IssuerScope string `json:"issuer_scope"`
}

// BearerAuthorizer builds an authorize func for Server.New that accepts
// only tokens signed by key and scoped, if issuerID is non-empty, to
// that issuer.
func BearerAuthorizer(key []byte, issuerID string) func(*http.Request) error {
	return func(r *http.Request) error {
		header := r.Header.Get("Authorization")
		if header == "" {
			return fmt.Errorf("missing Authorization header")
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			return fmt.Errorf("expected 'Bearer <token>' Authorization header")
		}

		claims := &mtcClaims{}
		token, err := jwt.ParseWithClaims(parts[1], claims, func(*jwt.Token) (interface{}, error) {
			return key, nil
		})
		if err != nil {
			return fmt.Errorf("invalid token: %w", err)
		}
		if !token.Valid {
			return fmt.Errorf("token rejected")
		}
		if issuerID != "" && claims.IssuerScope != issuerID {
			return fmt.Errorf("token not scoped to issuer %s", issuerID)
		}
		return nil
	}
}
