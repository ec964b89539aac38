// Copyright 2026 The Formtrust Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/formtrust/formtrust/internal/authz"
	"github.com/formtrust/formtrust/internal/observability/logger"
)

// Identity headers injected by the upstream authentication gateway. This
// service sits behind that gateway and never parses credentials itself;
// requests reaching it without these headers are anonymous.
const (
	headerUserID      = "X-Auth-User"
	headerTenantID    = "X-Auth-Tenant"
	headerRoles       = "X-Auth-Roles"
	headerPermissions = "X-Auth-Permissions"
)

// LoggingMiddleware logs HTTP requests
func LoggingMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			slog.InfoContext(r.Context(), "http_request_start",
				logger.RequestID(middleware.GetReqID(r.Context())),
				logger.Method(r.Method),
				logger.Path(r.URL.Path),
				logger.RemoteAddr(r.RemoteAddr),
			)

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				slog.InfoContext(r.Context(), "http_request_end",
					logger.RequestID(middleware.GetReqID(r.Context())),
					logger.Method(r.Method),
					logger.Path(r.URL.Path),
					logger.StatusCode(ww.Status()),
					logger.Duration(time.Since(start).Milliseconds()),
				)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}

// PrincipalMiddleware resolves the ambient principal from gateway identity
// headers and stores it on the request context. A missing user header yields
// an anonymous principal; the tenant header is required either way because
// every lookup downstream is tenant-scoped.
func PrincipalMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tenantID, err := strconv.ParseInt(r.Header.Get(headerTenantID), 10, 64)
		if err != nil || tenantID <= 0 {
			respondError(w, http.StatusBadRequest, "missing or malformed tenant header")
			return
		}

		p := authz.Principal{
			UserID:      r.Header.Get(headerUserID),
			TenantID:    tenantID,
			Roles:       splitList(r.Header.Get(headerRoles)),
			Permissions: splitList(r.Header.Get(headerPermissions)),
		}

		next.ServeHTTP(w, r.WithContext(authz.WithPrincipal(r.Context(), p)))
	})
}

// RequireAuthenticated rejects anonymous principals. Token-path routes do
// not use this; a bearer token is their sole credential.
func RequireAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := authz.PrincipalFromContext(r.Context())
		if !ok || p.IsAnonymous() {
			respondError(w, http.StatusUnauthorized, "not authenticated")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
