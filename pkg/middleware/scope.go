package middleware

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/vfg2006/marketing-analyst/internal/domain"
	"github.com/vfg2006/marketing-analyst/pkg/apiErrors"
)

// ScopeMiddleware restringe o acesso aos tokens que carregam um dos escopos
func ScopeMiddleware(allowedScopes ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if disabled, _ := r.Context().Value(ContextKeyAuthDisabled).(bool); disabled {
				next.ServeHTTP(w, r)
				return
			}

			claims, ok := r.Context().Value(ContextKeyUser).(*domain.Claims)
			if !ok {
				logrus.Warning("Tentativa de acesso sem autenticação")
				apiErrors.WriteError(w, apiErrors.ErrInvalidToken, "Usuário não autenticado", nil)
				return
			}

			for _, scope := range allowedScopes {
				if claims.HasScope(scope) {
					next.ServeHTTP(w, r)
					return
				}
			}

			logrus.WithFields(logrus.Fields{
				"subject": claims.Subject,
				"scopes":  claims.Scopes,
			}).Warning("Acesso negado por escopo")
			apiErrors.WriteError(w, apiErrors.ErrInsufficientPrivilege, "Você não tem permissão para acessar este recurso", nil)
		})
	}
}

// AnalysisScope permite tokens de análise e administradores
func AnalysisScope() func(http.Handler) http.Handler {
	return ScopeMiddleware(domain.ScopeAnalysis, domain.ScopeAdmin)
}

// AdminOnly permite apenas administradores
func AdminOnly() func(http.Handler) http.Handler {
	return ScopeMiddleware(domain.ScopeAdmin)
}
