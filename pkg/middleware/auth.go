package middleware

import (
	"context"
	"errors"
	"net/http"
	apperrors "staybook/pkg/errors"
	httputil "staybook/pkg/http"
	"staybook/pkg/logger"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/julienschmidt/httprouter"
)

const (
	RoleUser  = "user"
	RoleOwner = "owner"
	RoleAdmin = "admin"

	principalKey contextKey = "principal"
)

// Principal is the authenticated caller.
type Principal struct {
	UserID string
	Role   string
}

func (p Principal) HasRole(roles ...string) bool {
	for _, role := range roles {
		if p.Role == role {
			return true
		}
	}
	return false
}

// Claims carried by staybook access tokens. Subject holds the user id.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Authenticator validates HS256 bearer tokens. With an empty secret it is
// disabled and every request passes through without a principal.
type Authenticator struct {
	secret    []byte
	issuer    string
	clockSkew time.Duration
	log       *logger.Logger
}

func NewAuthenticator(secret, issuer string, log *logger.Logger) *Authenticator {
	return &Authenticator{
		secret:    []byte(strings.TrimSpace(secret)),
		issuer:    issuer,
		clockSkew: 30 * time.Second,
		log:       log,
	}
}

func (a *Authenticator) Enabled() bool {
	return len(a.secret) > 0
}

// Require authenticates the request and checks the caller holds one of
// roles. No roles means any authenticated caller.
func (a *Authenticator) Require(roles ...string) func(httprouter.Handle) httprouter.Handle {
	return func(next httprouter.Handle) httprouter.Handle {
		return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
			if !a.Enabled() {
				next(w, r, ps)
				return
			}

			principal, err := a.authenticate(r)
			if err != nil {
				a.log.Warn("Authentication failed",
					"request_id", RequestID(r.Context()),
					"path", r.URL.Path,
					"error", err,
				)
				httputil.WriteError(w, apperrors.Unauthorized("Invalid or missing bearer token"))
				return
			}

			if len(roles) > 0 && !principal.HasRole(roles...) {
				a.log.Warn("Authorization failed",
					"request_id", RequestID(r.Context()),
					"path", r.URL.Path,
					"user_id", principal.UserID,
					"role", principal.Role,
				)
				httputil.WriteError(w, apperrors.Forbidden("Insufficient role"))
				return
			}

			ctx := WithPrincipal(r.Context(), principal)
			next(w, r.WithContext(ctx), ps)
		}
	}
}

func (a *Authenticator) authenticate(r *http.Request) (Principal, error) {
	tokenString := extractBearer(r.Header.Get("Authorization"))
	if tokenString == "" {
		return Principal{}, errors.New("missing bearer token")
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(a.clockSkew),
		jwt.WithExpirationRequired(),
	}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}

	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	}, opts...)
	if err != nil {
		return Principal{}, err
	}
	if !token.Valid {
		return Principal{}, errors.New("token invalid")
	}

	if claims.Subject == "" {
		return Principal{}, errors.New("token has no subject")
	}
	switch claims.Role {
	case RoleUser, RoleOwner, RoleAdmin:
	default:
		return Principal{}, errors.New("token has unknown role")
	}

	return Principal{UserID: claims.Subject, Role: claims.Role}, nil
}

// IssueToken signs an access token. Used by tests and operator tooling.
func IssueToken(secret, issuer, userID, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func extractBearer(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFrom returns the caller, if the request was authenticated.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}
