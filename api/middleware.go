package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shaj13/go-guardian/auth"
	"github.com/shaj13/go-guardian/auth/strategies/bearer"
	"github.com/shaj13/go-guardian/store"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/jonasfh/picobell-api/databases"
)

// DevicePrincipal identifies a physical doorbell unit, resolved from its
// long-lived per-apartment API key.
type DevicePrincipal struct {
	ApartmentID primitive.ObjectID
	Serial      string
}

// UserPrincipal identifies a logged-in user, resolved from a signed
// session token. Authorization against a specific apartment is a separate
// relationship check done by the handlers.
type UserPrincipal struct {
	UserID primitive.ObjectID
	Email  string
}

type contextKey int

const (
	deviceContextKey contextKey = iota
	userContextKey
)

// MiddlewareDB is a struct that holds the database and the session secret
type MiddlewareDB struct {
	ADB       databases.ApartmentDatabase
	JWTSecret []byte
}

var deviceAuthenticator auth.Authenticator
var deviceKeyCache store.Cache

// SetupDeviceAuth sets up the go-guardian strategy resolving device API
// keys against the apartments collection. Resolved keys are cached so the
// firmware's short poll interval does not hit mongo on every request.
func (m MiddlewareDB) SetupDeviceAuth() {
	deviceAuthenticator = auth.New()
	deviceKeyCache = store.NewFIFO(context.Background(), 5*time.Minute)
	strategy := bearer.New(m.validateDeviceKey, deviceKeyCache)
	deviceAuthenticator.EnableStrategy(bearer.CachedStrategyKey, strategy)
}

func (m MiddlewareDB) validateDeviceKey(ctx context.Context, r *http.Request, key string) (auth.Info, error) {
	apartment, err := m.ADB.FindByAPIKey(ctx, key)
	if err != nil {
		// same answer for unknown key and lookup failure, nothing leaks
		return nil, errors.New("invalid device credential")
	}
	return auth.NewDefaultUser(apartment.PicoSerial, apartment.ID.Hex(), nil, nil), nil
}

// DeviceMiddleware guards device-credentialed routes. The key is presented
// as a bearer token; a user session token presented here fails the key
// lookup and gets the same 401 as any bad key.
func (m MiddlewareDB) DeviceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		info, err := deviceAuthenticator.Authenticate(r)
		if err != nil {
			zap.S().Errorw("device unauthorized",
				"url", r.URL)
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error": "unauthorized"}`))
			return
		}
		apartmentID, err := primitive.ObjectIDFromHex(info.ID())
		if err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error": "unauthorized"}`))
			return
		}
		principal := DevicePrincipal{ApartmentID: apartmentID, Serial: info.UserName()}
		ctx := context.WithValue(r.Context(), deviceContextKey, principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserMiddleware guards user-credentialed routes by validating the session
// JWT. A device API key presented here is not a parseable token and gets
// the same 401 as any malformed or expired session.
func (m MiddlewareDB) UserMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error": "missing token"}`))
			return
		}
		principal, err := ParseUserToken(strings.TrimPrefix(header, "Bearer "), m.JWTSecret)
		if err != nil {
			zap.S().Errorw("user unauthorized",
				"url", r.URL)
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error": "invalid token"}`))
			return
		}
		ctx := context.WithValue(r.Context(), userContextKey, principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ParseUserToken validates a session token and returns the user principal
// it carries. Exported for the websocket handler, which receives the token
// as a query parameter instead of a header.
func ParseUserToken(tokenString string, secret []byte) (UserPrincipal, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return UserPrincipal{}, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return UserPrincipal{}, errors.New("unexpected token claims")
	}
	sub, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)
	userID, err := primitive.ObjectIDFromHex(sub)
	if err != nil {
		return UserPrincipal{}, errors.New("invalid subject claim")
	}
	return UserPrincipal{UserID: userID, Email: email}, nil
}

// DevicePrincipalFrom returns the device principal attached by
// DeviceMiddleware, if any.
func DevicePrincipalFrom(ctx context.Context) (DevicePrincipal, bool) {
	p, ok := ctx.Value(deviceContextKey).(DevicePrincipal)
	return p, ok
}

// UserPrincipalFrom returns the user principal attached by UserMiddleware,
// if any.
func UserPrincipalFrom(ctx context.Context) (UserPrincipal, bool) {
	p, ok := ctx.Value(userContextKey).(UserPrincipal)
	return p, ok
}

// WithUserPrincipal attaches a user principal to a context. Used by the
// websocket handler and by tests.
func WithUserPrincipal(ctx context.Context, p UserPrincipal) context.Context {
	return context.WithValue(ctx, userContextKey, p)
}

// WithDevicePrincipal attaches a device principal to a context. Used by tests.
func WithDevicePrincipal(ctx context.Context, p DevicePrincipal) context.Context {
	return context.WithValue(ctx, deviceContextKey, p)
}
