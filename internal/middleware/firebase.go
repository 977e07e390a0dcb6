package middleware

import (
	"context"
	"errors"
	"net/http"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"github.com/watchnext/backend/internal/logging"
	"github.com/watchnext/backend/internal/models"
)

type FirebaseAuthConfig struct {
	ProjectID string
	// CredentialsJSON is a service account key. Empty means application
	// default credentials.
	CredentialsJSON string
}

// TokenVerifier is the part of *auth.Client the middleware needs.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
}

func NewFirebaseAuthClient(ctx context.Context, cfg FirebaseAuthConfig) (*fbauth.Client, error) {
	if cfg.ProjectID == "" {
		return nil, errors.New("firebase project id is required")
	}

	var opts []option.ClientOption
	if cfg.CredentialsJSON != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.CredentialsJSON)))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opts...)
	if err != nil {
		return nil, err
	}
	return app.Auth(ctx)
}

// FirebaseAuth verifies Firebase ID tokens. A nil verifier rejects every
// request.
func FirebaseAuth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if verifier == nil {
				writeJSON(w, http.StatusServiceUnavailable, models.NewErrorResponse("Authentication is not configured"))
				return
			}

			tokenString, ok := bearerToken(w, r)
			if !ok {
				return
			}

			token, err := verifier.VerifyIDToken(r.Context(), tokenString)
			if err != nil {
				logging.Debug().Err(err).Msg("firebase token rejected")
				writeJSON(w, http.StatusUnauthorized, models.NewRedirectResponse("Invalid or expired token", "/login"))
				return
			}

			email, _ := token.Claims["email"].(string)
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), token.UID, email)))
		})
	}
}
