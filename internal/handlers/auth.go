package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/catalogo-api/apiserver/internal/auth"
	"github.com/catalogo-api/apiserver/types"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

const invalidLoginMessage = "invalid login"

// TokenIssuer creates bearer tokens.
type TokenIssuer interface {
	Issue(identity types.Identity) (string, error)
}

// TokenValidator checks bearer tokens.
type TokenValidator interface {
	Validate(token string) (*jwt.RegisteredClaims, error)
}

// AuthHandler provides the login endpoint.
type AuthHandler struct {
	issuer      TokenIssuer
	credentials auth.CredentialVerifier
	logger      logrus.FieldLogger
}

// NewAuthHandler constructs an AuthHandler with the provided dependencies.
func NewAuthHandler(issuer TokenIssuer, credentials auth.CredentialVerifier, logger logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{
		issuer:      issuer,
		credentials: credentials,
		logger:      logger,
	}
}

// AuthRouter registers the public auth routes on the given router.
func AuthRouter(r chi.Router, issuer TokenIssuer, credentials auth.CredentialVerifier, logger logrus.FieldLogger) {
	handler := NewAuthHandler(issuer, credentials, logger)

	r.Post("/login", handler.Login)
}

// Login verifies the submitted identity and returns a JWT.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	identity, err := decodeBody[types.Identity](r)
	if err != nil {
		writeError(w, http.StatusBadRequest, invalidLoginMessage)
		return
	}

	if !h.credentials.Verify(identity.Username, identity.Password) {
		h.logger.WithField("username", identity.Username).Info("rejected login")
		writeError(w, http.StatusBadRequest, invalidLoginMessage)
		return
	}

	token, err := h.issuer.Issue(identity)
	if err != nil {
		h.logger.WithError(err).Error("failed to sign token")
		writeError(w, http.StatusInternalServerError, "failed to create token")
		return
	}

	writeJSON(w, http.StatusOK, TokenResponse{Token: token})
}

type TokenResponse struct {
	Token string `json:"token"`
}

// RequireAuth rejects requests without a valid bearer token and stores the
// token's claims in the request context.
func RequireAuth(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, err := bearerToken(r)
			if err != nil {
				unauthorized(w)
				return
			}

			claims, err := validator.Validate(tokenString)
			if err != nil {
				unauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), contextClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext returns the claims stored by RequireAuth.
func ClaimsFromContext(ctx context.Context) (*jwt.RegisteredClaims, bool) {
	claims, ok := ctx.Value(contextClaimsKey).(*jwt.RegisteredClaims)
	return claims, ok && claims != nil
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	writeError(w, http.StatusUnauthorized, "unauthorized")
}

func bearerToken(r *http.Request) (string, error) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return "", errors.New("missing authorization")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("invalid authorization")
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", errors.New("invalid authorization")
	}
	return token, nil
}
