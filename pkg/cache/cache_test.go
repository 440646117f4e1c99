package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewRejectsInvalidURL(t *testing.T) {
	_, err := New(context.Background(), "not-a-redis-url")
	require.Error(t, err)
}

func TestNewFailsWhenServerUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := New(ctx, "redis://127.0.0.1:1/0")
	require.Error(t, err)
}
