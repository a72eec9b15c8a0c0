/*
Package logx provides a structured logging wrapper based on zerolog.

This file contains the HTTP access-log middleware. Each request gets its own logger, stored
in the request context, so later middleware (such as session checks) can attach the caller's
identity before the completion line is written.
*/
package logx

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// anonymizeIP zeroes the last IPv4 octet or keeps only the first half of an IPv6 address.
func anonymizeIP(ipStr string) string {
	host, _, err := net.SplitHostPort(ipStr)
	if err == nil {
		ipStr = host
	}

	ip := net.ParseIP(ipStr)
	if ip == nil {
		return "unknown_ip"
	}

	if ip.IsLoopback() {
		return "127.0.0.1"
	}

	if v4 := ip.To4(); v4 != nil {
		return net.IPv4(v4[0], v4[1], v4[2], 0).String()
	}

	if v6 := ip.To16(); v6 != nil {
		masked := make(net.IP, net.IPv6len)
		copy(masked, v6[:8])
		return masked.String()
	}

	return ipStr
}

// Annotate adds string fields to the request-scoped logger created by RequestLogger.
// It is a no-op when ctx carries no such logger.
func Annotate(ctx context.Context, fields map[string]string) {
	logger := zerolog.Ctx(ctx)
	if logger.GetLevel() == zerolog.Disabled {
		return
	}
	logger.UpdateContext(func(c zerolog.Context) zerolog.Context {
		for k, v := range fields {
			c = c.Str(k, v)
		}
		return c
	})
}

// RequestLogger returns an HTTP middleware that logs one completion line per request with
// method, URI, status, size and latency.
func RequestLogger() func(next http.Handler) http.Handler {
	baseLogger := Logger()

	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			logger := baseLogger.With().
				Str("component", "http").
				Str("request_id", middleware.GetReqID(r.Context())).
				Str("remote_ip", anonymizeIP(r.RemoteAddr)).
				Str("request_method", r.Method).
				Str("request_uri", r.RequestURI).
				Logger()

			r = r.WithContext(logger.WithContext(r.Context()))
			reqLogger := zerolog.Ctx(r.Context())

			t1 := time.Now()
			next.ServeHTTP(ww, r)

			status := ww.Status()

			logger = *reqLogger

			logEvent := logger.Info()
			if status >= 500 {
				logEvent = logger.Error()
			} else if status >= 400 {
				logEvent = logger.Warn()
			}

			logEvent.
				Int("status", status).
				Int("bytes", ww.BytesWritten()).
				Dur("latency", time.Since(t1)).
				Msg("Request completed")
		}

		return http.HandlerFunc(fn)
	}
}
