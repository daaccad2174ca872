package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/spigell/outfit-advisor/internal/logger"
	"github.com/spigell/outfit-advisor/internal/metrics"
	"github.com/spigell/outfit-advisor/internal/supabase"
)

type contextKey string

const contextKeyUser contextKey = "user"

// requireAuth resolves the bearer token through the auth service. The token
// stays in the request context so backend calls run as the user.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeError(w, http.StatusUnauthorized, "missing authorization header", s.logger)
			return
		}

		scheme, token, ok := strings.Cut(authHeader, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			writeError(w, http.StatusUnauthorized, "invalid authorization header format", s.logger)
			return
		}

		ctx := supabase.WithAccessToken(r.Context(), token)
		user, err := s.auth.GetUser(ctx)
		if err != nil {
			var apiErr *supabase.APIError
			if !errors.As(err, &apiErr) || apiErr.Status >= http.StatusInternalServerError {
				s.requestLogger(r).Error("auth service unavailable", zap.Error(err))
				writeError(w, http.StatusBadGateway, "authentication service unavailable", s.logger)
				return
			}

			s.requestLogger(r).Debug("rejected access token", zap.Error(err))
			writeError(w, http.StatusUnauthorized, "invalid or expired token", s.logger)
			return
		}

		ctx = context.WithValue(ctx, contextKeyUser, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// currentUser returns the user attached by requireAuth.
func currentUser(ctx context.Context) *supabase.User {
	user, _ := ctx.Value(contextKeyUser).(*supabase.User)
	return user
}

// accessLog logs every request and counts it by route pattern.
func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		metrics.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()

		s.requestLogger(r).Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(started)),
		)
	})
}

func (s *Server) requestLogger(r *http.Request) *zap.Logger {
	log := s.logger
	if id := middleware.GetReqID(r.Context()); id != "" {
		log = log.With(zap.String("request_id", id))
	}
	if user := currentUser(r.Context()); user != nil {
		log = logger.WithUser(log, user.ID)
	}
	return log
}
