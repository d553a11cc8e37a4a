// Package middleware contains HTTP middleware functions for the Buddies Golf API.
// Middleware sits between the HTTP server and route handlers and runs on every
// request that passes through it.
package middleware

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"
	// jwt is used to parse and verify the identity provider's ID tokens
	"github.com/golang-jwt/jwt/v5"

	"github.com/becketmccurdy/buddiesgolf/internal/config"
	"github.com/becketmccurdy/buddiesgolf/internal/session"
	"github.com/becketmccurdy/buddiesgolf/internal/store"
)

// Claims defines the data we expect inside an ID token. The subject is the stable user ID
// from the identity provider (federated or phone sign-in both end up here). Name and picture
// are display metadata used when the profile is first created.
type Claims struct {
	jwt.RegisteredClaims
	Name    string `json:"name"`
	Picture string `json:"picture"`
	Phone   string `json:"phone_number"`
}

var (
	errMissingToken = errors.New("missing or invalid authorization header")
	errInvalidToken = errors.New("invalid token")
)

// Verifier turns a raw token into verified claims.
type Verifier struct {
	key        []byte
	issuer     string
	unverified bool
}

// NewVerifier builds a Verifier from configuration. Without a signing key the verifier only
// parses tokens, which config.Validate permits in development alone.
func NewVerifier(cfg *config.Config) *Verifier {
	return &Verifier{
		key:        []byte(cfg.SigningKey),
		issuer:     cfg.Issuer,
		unverified: cfg.SigningKey == "",
	}
}

// Verify parses tokenStr and checks its signature, expiry and issuer.
func (v *Verifier) Verify(tokenStr string) (*Claims, error) {
	claims := &Claims{}

	if v.unverified {
		if _, _, err := jwt.NewParser().ParseUnverified(tokenStr, claims); err != nil {
			return nil, fmt.Errorf("%w: %v", errInvalidToken, err)
		}
		return claims, nil
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired()}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (any, error) {
		return v.key, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidToken, err)
	}
	if !token.Valid {
		return nil, errInvalidToken
	}
	return claims, nil
}

// Auth returns a Fiber middleware handler that:
//  1. Moves the request's session to Pending when a Bearer token is presented
//  2. Verifies the token and authenticates (or fails) the session
//  3. Finds the matching profile, creating it on first sign-in with zeroed statistics
//  4. Attaches the session to the request so handlers receive it explicitly
func Auth(v *Verifier, st *store.Store, log *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess := session.From(c)
		session.Attach(c, sess)

		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": errMissingToken.Error(),
			})
		}
		if err := sess.Begin(); err != nil {
			// Another Auth already handled this request.
			log.Error("auth middleware mounted twice", "path", c.Path(), "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "session already started",
			})
		}

		claims, err := v.Verify(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			// The session is Pending here, so Fail records err and returns it unchanged.
			log.Debug("token rejected", "error", sess.Fail(err))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": errInvalidToken.Error(),
			})
		}

		principal := session.Principal{UserID: claims.Subject, DisplayName: claims.Name}
		if principal.DisplayName == "" {
			principal.DisplayName = claims.Phone
		}
		if claims.Picture != "" {
			principal.PhotoURL = &claims.Picture
		}
		if err := sess.Authenticate(principal); err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "token missing subject",
			})
		}

		// Lazy profile sync: the first authenticated request creates the profile.
		_, created, err := st.EnsureProfile(c.UserContext(), principal.UserID, principal.DisplayName, principal.PhotoURL)
		if err != nil {
			log.Error("profile sync failed", "user_id", principal.UserID, "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to load profile",
			})
		}
		if created {
			log.Info("profile created", "user_id", principal.UserID)
		}

		return c.Next()
	}
}
