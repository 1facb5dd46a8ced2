package requestcontext

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAccessors(t *testing.T) {
	t.Run("missing values fall back to zero", func(t *testing.T) {
		ctx := context.Background()
		assert.Empty(t, RequestID(ctx))
		assert.Empty(t, ClientIP(ctx))
		assert.WithinDuration(t, time.Now(), Now(ctx), time.Second)
	})

	t.Run("injected values are returned", func(t *testing.T) {
		fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
		ctx := WithRequestID(context.Background(), "req-123")
		ctx = WithClientIP(ctx, "10.0.0.7")
		ctx = WithTime(ctx, fixed)

		assert.Equal(t, "req-123", RequestID(ctx))
		assert.Equal(t, "10.0.0.7", ClientIP(ctx))
		assert.Equal(t, fixed, Now(ctx))
	})
}
