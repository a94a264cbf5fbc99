package timeouts

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaults(t *testing.T) {
	got := Config{Mail: time.Second}.Defaults()
	assert.Equal(t, Command, got.Command)
	assert.Equal(t, Storage, got.Storage)
	assert.Equal(t, Render, got.Render)
	assert.Equal(t, time.Second, got.Mail)
}

func TestBound(t *testing.T) {
	ctx, cancel := Bound(context.Background(), time.Millisecond)
	defer cancel()
	<-ctx.Done()
	assert.ErrorIs(t, ctx.Err(), context.DeadlineExceeded)

	ctx, cancel = Bound(context.Background(), 0)
	_, hasDeadline := ctx.Deadline()
	assert.False(t, hasDeadline)
	cancel()
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
}
