package common

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"smsvault/internal/logger"

	"github.com/google/uuid"
)

type contextKey string

const (
	RequestIDKey contextKey = "request_id"
	SubjectKey   contextKey = "subject"

	RequestIDHeader = "X-Request-ID"

	// SchemeCisab is the gateway firmware's scheme: the credential is the
	// shared key written backwards.
	SchemeCisab  = "Cisab"
	SchemeBearer = "Bearer"

	gatewaySubject = "gateway"
)

var publicPaths = map[string]bool{
	"/health": true,
}

// AuthMiddleware accepts "Cisab <reversed key>" from the gateway and
// "Bearer <jwt>" signed with the same key from the inbox CLI.
//
// missing header -> 401, unreadable header -> 400, wrong credential -> 401
func AuthMiddleware(authKey string, log logger.Logger) func(http.Handler) http.Handler {
	secret := []byte(authKey)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if publicPaths[r.URL.Path] || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Authorization")
			if header == "" {
				http.Error(w, "Unauthorized: missing Authorization header", http.StatusUnauthorized)
				return
			}

			scheme, credential, ok := strings.Cut(header, " ")
			if !ok || credential == "" {
				http.Error(w, "Bad Request: malformed Authorization header", http.StatusBadRequest)
				return
			}

			var subject string
			switch scheme {
			case SchemeCisab:
				if !ConstantTimeEqual(reverse(credential), authKey) {
					log.Warnf("rejected gateway credential from %s", r.RemoteAddr)
					http.Error(w, "Unauthorized", http.StatusUnauthorized)
					return
				}
				subject = gatewaySubject
			case SchemeBearer:
				claims, err := ValidToken(secret, credential)
				if err != nil {
					log.Warnf("rejected bearer token from %s: %v", r.RemoteAddr, err)
					http.Error(w, "Unauthorized", http.StatusUnauthorized)
					return
				}
				subject = claims.Subject
			default:
				http.Error(w, "Bad Request: unsupported authorization scheme", http.StatusBadRequest)
				return
			}

			ctx := context.WithValue(r.Context(), SubjectKey, subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ConstantTimeEqual compares two secrets without leaking where they differ.
func ConstantTimeEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// CisabCredential builds the Authorization value the gateway sends for key.
func CisabCredential(key string) string {
	return SchemeCisab + " " + reverse(key)
}

func reverse(s string) string {
	r := []rune(s)
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return string(r)
}

// RequestIDMiddleware keeps an incoming X-Request-ID or makes one up, and
// echoes it on the response.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)

		ctx := context.WithValue(r.Context(), RequestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}

func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// LoggingMiddleware logs method, path, status and latency per request.
func LoggingMiddleware(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			log.WithField("request_id", RequestIDFromContext(r.Context())).
				Infof("%s %s %d %v", r.Method, r.URL.Path, rec.status, time.Since(start))
		})
	}
}
