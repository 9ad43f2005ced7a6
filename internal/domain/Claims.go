package domain

import "github.com/golang-jwt/jwt/v5"

// Claims são os dados carregados pelo token de acesso da API
type Claims struct {
	Scopes []string `json:"scopes,omitempty"`
	jwt.RegisteredClaims
}

// HasScope indica se o token concede o escopo
func (c *Claims) HasScope(scope string) bool {
	if c == nil {
		return false
	}
	for _, s := range c.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

// Escopos da API
const (
	ScopeAnalysis = "analysis"
	ScopeAdmin    = "admin"
)
