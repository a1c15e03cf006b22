package api

import (
	"bufio"
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/jonasfh/picobell-api/databases"
	"github.com/jonasfh/picobell-api/models"
)

// AuditLogger records one apilogs row per handled request. It must sit
// inside the principal middleware so the principal is already on the
// request context.
type AuditLogger struct {
	DB databases.APILogDatabase
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Hijack keeps websocket upgrades working behind the wrappers.
func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	return hj.Hijack()
}

// Middleware wraps a handler with audit logging. The insert happens off the
// request path; a failed insert is logged and dropped.
func (a AuditLogger) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		entry := models.APILog{
			Method:     r.Method,
			Path:       r.URL.Path,
			Principal:  principalLabel(r.Context()),
			Status:     sw.status,
			DurationMs: time.Since(start).Milliseconds(),
			CreatedAt:  primitive.NewDateTimeFromTime(time.Now()),
		}
		go func() {
			ctx, cancel := WithQueryTimeout(context.Background())
			defer cancel()
			if err := a.DB.InsertOne(ctx, entry); err != nil {
				zap.S().Warnw("failed to write api log",
					"path", entry.Path,
					"error", err,
				)
			}
		}()
	})
}

func principalLabel(ctx context.Context) string {
	if p, ok := DevicePrincipalFrom(ctx); ok {
		return "device:" + p.Serial
	}
	if p, ok := UserPrincipalFrom(ctx); ok {
		return "user:" + p.UserID.Hex()
	}
	return "anonymous"
}
