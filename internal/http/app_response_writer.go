package http

import (
	"bufio"
	"errors"
	"net"
	"net/http"

	"order-metrics/internal/shared/svcerrors"

	"github.com/go-chi/chi/v5/middleware"
)

// appResponseWriter is a wrapper around the http.ResponseWriter that stores app details for middleware access
type appResponseWriter struct {
	middleware.WrapResponseWriter
	svcError *svcerrors.ServiceError
	hijacked bool
}

func newAppResponseWriter(w http.ResponseWriter, protoMajor int) *appResponseWriter {
	return &appResponseWriter{
		WrapResponseWriter: middleware.NewWrapResponseWriter(w, protoMajor),
	}
}

func (w *appResponseWriter) SetServiceError(svcError *svcerrors.ServiceError) {
	w.svcError = svcError
}

func (w *appResponseWriter) ErrorCode() string {
	if w.svcError != nil {
		return w.svcError.Code
	}
	return ""
}

// Hijack hands the connection over to the websocket upgrader.
func (w *appResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.Unwrap().(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	conn, rw, err := hijacker.Hijack()
	if err == nil {
		w.hijacked = true
	}
	return conn, rw, err
}

// Hijacked reports whether the connection left the HTTP server.
func (w *appResponseWriter) Hijacked() bool {
	return w.hijacked
}

// Status reports 101 for upgraded connections, which never pass through WriteHeader.
func (w *appResponseWriter) Status() int {
	if w.hijacked {
		return http.StatusSwitchingProtocols
	}
	return w.WrapResponseWriter.Status()
}
