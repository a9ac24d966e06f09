package memory

import (
	"context"
	"testing"
	"time"

	"github.com/abhishek622/foodreview/pkg/discovery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	r := NewRegistry()
	r.now = func() time.Time { return now }

	_, err := r.ServiceAddresses(ctx, "api")
	assert.ErrorIs(t, err, discovery.ErrNotFound)

	require.NoError(t, r.Register(ctx, "api-1", "api", "localhost:3000"))
	addrs, err := r.ServiceAddresses(ctx, "api")
	require.NoError(t, err)
	assert.Equal(t, []string{"localhost:3000"}, addrs)

	now = now.Add(10 * time.Second)
	_, err = r.ServiceAddresses(ctx, "api")
	assert.ErrorIs(t, err, discovery.ErrNotFound, "stale instance must be skipped")

	require.NoError(t, r.ReportHealthyState("api-1", "api"))
	addrs, err = r.ServiceAddresses(ctx, "api")
	require.NoError(t, err)
	assert.Len(t, addrs, 1)

	require.NoError(t, r.Deregister(ctx, "api-1", "api"))
	_, err = r.ServiceAddresses(ctx, "api")
	assert.ErrorIs(t, err, discovery.ErrNotFound)

	assert.Error(t, r.ReportHealthyState("api-2", "api"))
	assert.Error(t, r.ReportHealthyState("x", "missing"))
}

func TestStaticRegistryNeverExpires(t *testing.T) {
	r := NewStaticRegistry("api", "http://localhost:3000")
	r.now = func() time.Time { return time.Now().Add(24 * time.Hour) }

	addrs, err := r.ServiceAddresses(context.Background(), "api")
	require.NoError(t, err)
	assert.Equal(t, []string{"http://localhost:3000"}, addrs)
}
