package protocol

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-smsc/emi-smsc/lib/util"
)

func TestFrameBuffer_WholeFrame(t *testing.T) {
	b := NewFrameBuffer(0)
	assert.Equal(t, DefaultBufferSize, b.Cap())

	require.NoError(t, b.AppendString(sessionOpen))
	got, ok := b.TryReadFrame()
	require.True(t, ok)
	assert.Equal(t, sessionOpen, got)

	_, ok = b.TryReadFrame()
	assert.False(t, ok)
	assert.Equal(t, 0, b.Len())
}

func TestFrameBuffer_SplitAtEveryOffset(t *testing.T) {
	for split := 0; split <= len(submitPender); split++ {
		b := NewFrameBuffer(64 + len(submitPender))

		require.NoError(t, b.AppendString(submitPender[:split]))
		if split < len(submitPender) {
			_, ok := b.TryReadFrame()
			require.False(t, ok, "split %d returned a partial frame", split)
		}
		require.NoError(t, b.AppendString(submitPender[split:]))

		got, ok := b.TryReadFrame()
		require.True(t, ok, "split %d", split)
		assert.Equal(t, submitPender, got, "split %d", split)
	}
}

func TestFrameBuffer_Wraparound(t *testing.T) {
	// Capacity smaller than two frames forces the second across the boundary.
	b := NewFrameBuffer(len(sessionOpen) + 10)

	for i := 0; i < 5; i++ {
		require.NoError(t, b.AppendString(sessionOpen))
		got, ok := b.TryReadFrame()
		require.True(t, ok)
		assert.Equal(t, sessionOpen, got, "iteration %d", i)
	}
}

func TestFrameBuffer_MultipleFrames(t *testing.T) {
	b := NewFrameBuffer(1024)
	require.NoError(t, b.AppendString(sessionOpen+submitPender))

	first, ok := b.TryReadFrame()
	require.True(t, ok)
	assert.Equal(t, sessionOpen, first)

	second, ok := b.TryReadFrame()
	require.True(t, ok)
	assert.Equal(t, submitPender, second)
}

func TestFrameBuffer_DropsNoise(t *testing.T) {
	b := NewFrameBuffer(1024)
	require.NoError(t, b.AppendString("\r\nxx"+sessionOpen))

	got, ok := b.TryReadFrame()
	require.True(t, ok)
	assert.Equal(t, sessionOpen, got)
}

func TestFrameBuffer_Overflow(t *testing.T) {
	b := NewFrameBuffer(16)
	require.NoError(t, b.Append(make([]byte, 10)))

	err := b.Append(make([]byte, 7))
	require.Error(t, err)
	assert.True(t, errors.Is(err, util.ErrBufferOverflow))

	var oe *OverflowError
	require.True(t, errors.As(err, &oe))
	assert.True(t, oe.First)
	assert.Equal(t, 6, oe.Free)
	assert.Equal(t, 10, b.Len(), "overflowing chunk must be dropped whole")

	err = b.Append(make([]byte, 7))
	require.True(t, errors.As(err, &oe))
	assert.False(t, oe.First, "warning must fire once")

	b.ResetOverflowWarning()
	err = b.Append(make([]byte, 7))
	require.True(t, errors.As(err, &oe))
	assert.True(t, oe.First)

	// Exactly filling the buffer is allowed.
	require.NoError(t, b.Append(make([]byte, 6)))
	assert.Equal(t, 0, b.Free())
}

func TestFrameBuffer_Reset(t *testing.T) {
	b := NewFrameBuffer(64)
	require.NoError(t, b.AppendString("\x0201/000"))
	b.Reset()
	assert.Equal(t, 0, b.Len())
	assert.Equal(t, 64, b.Free())
}
