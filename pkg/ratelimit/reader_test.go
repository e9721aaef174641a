package ratelimit

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLimiter(t *testing.T) {
	t.Run("ValidBytesPerSecond", func(t *testing.T) {
		limiter := NewLimiter(1024 * 1024)
		require.NotNil(t, limiter)
		assert.Equal(t, int64(1024*1024), limiter.BytesPerSecond())
		assert.Equal(t, 1024*1024, limiter.burst)
	})

	t.Run("ZeroIsUnlimited", func(t *testing.T) {
		assert.Nil(t, NewLimiter(0))
		assert.Nil(t, NewLimiter(-100))
		assert.Equal(t, int64(0), (*Limiter)(nil).BytesPerSecond())
	})

	t.Run("SmallLimitKeepsMinimumBurst", func(t *testing.T) {
		limiter := NewLimiter(1000)
		require.NotNil(t, limiter)
		assert.Equal(t, minBurst, limiter.burst)
	})
}

func TestParseBandwidth(t *testing.T) {
	tests := []struct {
		input   string
		want    int64
		wantErr bool
	}{
		{"", 0, false},
		{"1024", 1024, false},
		{"512K", 512 * 1024, false},
		{"10M", 10 * 1024 * 1024, false},
		{"1G", 1024 * 1024 * 1024, false},
		{"10M/s", 10 * 1024 * 1024, false},
		{"fast", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseBandwidth(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewReader(t *testing.T) {
	t.Run("WithLimiter", func(t *testing.T) {
		reader := NewReader(context.Background(), strings.NewReader("test content"), NewLimiter(1024*1024))
		_, ok := reader.(*Reader)
		assert.True(t, ok, "NewReader() should return *Reader when limiter is provided")
	})

	t.Run("NilLimiter", func(t *testing.T) {
		base := strings.NewReader("test content")
		reader := NewReader(context.Background(), base, nil)
		assert.Same(t, base, reader)
	})
}

func TestReaderReadsEverything(t *testing.T) {
	data := bytes.Repeat([]byte("a"), 200*1024)
	reader := NewReader(context.Background(), bytes.NewReader(data), NewLimiter(100*1024*1024))

	got, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestReaderThrottles(t *testing.T) {
	if testing.Short() {
		t.Skip("timing test")
	}

	// Burst covers the first 64KB; the next 64KB at 64KB/s needs ~1s
	data := bytes.Repeat([]byte("b"), 128*1024)
	reader := NewReader(context.Background(), bytes.NewReader(data), NewLimiter(64*1024))

	start := time.Now()
	_, err := io.Copy(io.Discard, reader)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 500*time.Millisecond)
}

func TestReaderContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	reader := NewReader(ctx, strings.NewReader("data"), NewLimiter(1024))
	_, err := reader.Read(make([]byte, 4))
	assert.ErrorIs(t, err, context.Canceled)
}
