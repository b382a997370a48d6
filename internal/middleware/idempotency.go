package middleware

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/eaglebank/ledger/internal/models"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	IdempotencyKeyHeader     = "Idempotency-Key"
	IdempotentReplayedHeader = "Idempotent-Replayed"
	maxIdempotencyKeyLength  = 255
)

type IdempotencyStore interface {
	Lookup(ctx context.Context, key string) (*models.IdempotentResponse, bool)
	Acquire(ctx context.Context, key string) (bool, error)
	Save(ctx context.Context, key string, resp *models.IdempotentResponse)
	Release(ctx context.Context, key string)
}

// recordingWriter keeps a copy of the body written to the client.
type recordingWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *recordingWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *recordingWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Idempotency replays the recorded response when a caller repeats an
// Idempotency-Key. Keys are scoped to the authenticated caller and route, only
// 2xx responses are recorded, and a key still in flight is rejected with 409.
// Must run after AuthMiddleware.
func Idempotency(store IdempotencyStore, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > maxIdempotencyKeyLength {
			RespondWithError(c, http.StatusBadRequest, "Idempotency-Key is too long")
			c.Abort()
			return
		}

		userID, _ := GetUserID(c)
		scoped := fmt.Sprintf("%d:%s:%s", userID, c.FullPath(), key)
		ctx := c.Request.Context()

		if resp, ok := store.Lookup(ctx, scoped); ok {
			replay(c, resp)
			return
		}

		acquired, err := store.Acquire(ctx, scoped)
		if err != nil {
			logger.Warn("idempotency store unavailable, processing without it", zap.Error(err))
			c.Next()
			return
		}
		if !acquired {
			RespondWithError(c, http.StatusConflict, "A request with this Idempotency-Key is already being processed")
			c.Abort()
			return
		}
		// The lock must be released even if the request context is cancelled.
		defer store.Release(context.WithoutCancel(ctx), scoped)

		// A request holding the key may have saved and released between our
		// lookup and the lock.
		if resp, ok := store.Lookup(ctx, scoped); ok {
			replay(c, resp)
			return
		}

		rw := &recordingWriter{ResponseWriter: c.Writer}
		c.Writer = rw
		c.Next()

		if status := rw.Status(); status >= 200 && status < 300 {
			store.Save(context.WithoutCancel(ctx), scoped, &models.IdempotentResponse{
				Status:      status,
				ContentType: rw.Header().Get("Content-Type"),
				Body:        rw.body.Bytes(),
			})
		}
	}
}

func replay(c *gin.Context, resp *models.IdempotentResponse) {
	c.Header(IdempotentReplayedHeader, "true")
	c.Data(resp.Status, resp.ContentType, resp.Body)
	c.Abort()
}
