package middleware

import (
	"bytes"
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"rutaflow/internal/logger"
	"rutaflow/internal/redis"
)

const (
	IdempotencyHeader = "Idempotency-Key"
	ReplayedHeader    = "Idempotent-Replayed"
)

// capturingWriter tees the response body so it can be stored.
type capturingWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *capturingWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func mutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// Idempotency replays the stored response when a mutating request repeats an
// Idempotency-Key for the same driver, and rejects a repeat that arrives
// while the first one is still running. Store failures disable replay for
// that request only.
func Idempotency(store redis.IdempotencyStoreInterface, log *logger.Logger) gin.HandlerFunc {
	if log == nil {
		log = logger.Nop()
	}
	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyHeader)
		if key == "" || !mutating(c.Request.Method) {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		driverID := c.GetHeader(DriverIDHeader)

		state, stored, err := store.Reserve(ctx, driverID, key)
		if err != nil {
			log.WithDriverID(driverID).WithError(err).Warn("idempotency store unavailable")
			c.Next()
			return
		}

		switch state {
		case redis.Completed:
			c.Header(ReplayedHeader, "true")
			contentType := stored.ContentType
			if contentType == "" {
				contentType = "application/json"
			}
			c.Data(stored.Status, contentType, stored.Body)
			c.Abort()
			return
		case redis.InFlight:
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "request already in progress"})
			return
		}

		w := &capturingWriter{ResponseWriter: c.Writer}
		c.Writer = w

		c.Next()

		// Server errors and conflicts stay retryable under the same key.
		bg := context.WithoutCancel(ctx)
		status := w.Status()
		if status >= http.StatusInternalServerError || status == http.StatusConflict {
			if err := store.Release(bg, driverID, key); err != nil {
				log.WithDriverID(driverID).WithError(err).Warn("idempotency release failed")
			}
			return
		}

		resp := &redis.StoredResponse{
			Status:      status,
			ContentType: w.Header().Get("Content-Type"),
			Body:        w.body.Bytes(),
		}
		if err := store.Complete(bg, driverID, key, resp); err != nil {
			log.WithDriverID(driverID).WithError(err).Warn("idempotency store write failed")
		}
	}
}
