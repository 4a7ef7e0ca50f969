package walletrpc

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// loggingMiddleware is a gorilla-style access logger using structured
// fields in place of a format string.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logrus.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.RequestURI,
			"duration": time.Since(start),
		}).Info("walletrpc request")
	})
}
