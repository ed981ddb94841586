package rest

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/custdb/internal/common"
	"github.com/dmitrijs2005/custdb/internal/logging"
	"github.com/dmitrijs2005/custdb/internal/server/auth"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type ctxKey string

const userIDKey ctxKey = "userID"

// UserIDFromContext returns the authenticated user id set by the bearer middleware.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	return id, ok
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get(common.AuthorizationHeaderName)
	if len(h) < len(common.BearerScheme) || !strings.EqualFold(h[:len(common.BearerScheme)], common.BearerScheme) {
		return ""
	}
	return strings.TrimSpace(h[len(common.BearerScheme):])
}

// requireAuth rejects requests without a valid access token and stores the
// user id in the request context.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeError(r.Context(), s.logger, w, ErrUnauthorized)
			return
		}

		userID, err := auth.GetUserIDFromToken(token, s.jwtSecret)
		if err != nil {
			s.logger.Debug(r.Context(), "access token rejected", "error", err)
			writeError(r.Context(), s.logger, w, ErrUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		ctx = logging.ContextWith(ctx, "user_id", userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// instrument logs every request and records it in the HTTP metrics under
// its route pattern.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		r = r.WithContext(logging.ContextWith(r.Context(), "request_id", middleware.GetReqID(r.Context())))

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		elapsed := time.Since(start)

		if s.metrics != nil {
			s.metrics.ObserveHTTP(r.Method, route, status, elapsed)
		}
		s.logger.Info(r.Context(), "http request",
			"method", r.Method,
			"route", route,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", elapsed,
		)
	})
}
