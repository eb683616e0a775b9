package protocol

import (
	"fmt"
	"sync"

	"github.com/go-smsc/emi-smsc/lib/util"
)

// DefaultBufferSize is the capacity of a connection's frame buffers.
const DefaultBufferSize = 10 * 1024

// OverflowError reports a chunk dropped because the buffer lacked room.
// First is set on the first overflow since the buffer was created or the
// warning was re-armed with ResetOverflowWarning.
type OverflowError struct {
	Chunk int
	Free  int
	First bool
}

// Error implements the error interface.
func (e *OverflowError) Error() string {
	return fmt.Sprintf("%v: %d byte chunk, %d bytes free", util.ErrBufferOverflow, e.Chunk, e.Free)
}

// Unwrap returns util.ErrBufferOverflow.
func (e *OverflowError) Unwrap() error {
	return util.ErrBufferOverflow
}

// FrameBuffer is a fixed-size circular byte buffer that yields complete
// frames. Bytes may arrive in arbitrary chunks; a frame is only returned
// once its end marker is present.
//
// FrameBuffer is safe for concurrent use.
type FrameBuffer struct {
	mu     sync.Mutex
	data   []byte
	start  int // read cursor
	size   int // bytes stored from start
	warned bool
}

// NewFrameBuffer creates a buffer with the given capacity.
// A non-positive capacity selects DefaultBufferSize.
func NewFrameBuffer(capacity int) *FrameBuffer {
	if capacity <= 0 {
		capacity = DefaultBufferSize
	}
	return &FrameBuffer{data: make([]byte, capacity)}
}

// Append copies p into the buffer. When free space is smaller than p the
// whole chunk is dropped and an *OverflowError is returned.
func (b *FrameBuffer) Append(p []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	free := len(b.data) - b.size
	if len(p) > free {
		first := !b.warned
		b.warned = true
		return &OverflowError{Chunk: len(p), Free: free, First: first}
	}

	end := (b.start + b.size) % len(b.data)
	n := copy(b.data[end:], p)
	copy(b.data, p[n:])
	b.size += len(p)
	return nil
}

// AppendString is Append for frame text.
func (b *FrameBuffer) AppendString(s string) error {
	return b.Append([]byte(s))
}

// TryReadFrame returns the next complete frame and advances the read cursor
// past it. It returns false when no end marker has arrived yet. Bytes
// preceding the start marker are discarded with the frame.
func (b *FrameBuffer) TryReadFrame() (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	capacity := len(b.data)
	for i := 0; i < b.size; i++ {
		if b.data[(b.start+i)%capacity] != ETX {
			continue
		}

		frame := make([]byte, i+1)
		n := copy(frame, b.data[b.start:min(b.start+i+1, capacity)])
		copy(frame[n:], b.data[:i+1-n])

		b.start = (b.start + i + 1) % capacity
		b.size -= i + 1

		for j, c := range frame {
			if c == STX {
				return string(frame[j:]), true
			}
		}
		return string(frame), true
	}
	return "", false
}

// ResetOverflowWarning re-arms the one-time overflow warning.
func (b *FrameBuffer) ResetOverflowWarning() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.warned = false
}

// Len returns the number of buffered bytes.
func (b *FrameBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.size
}

// Free returns the remaining capacity in bytes.
func (b *FrameBuffer) Free() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.data) - b.size
}

// Cap returns the buffer capacity.
func (b *FrameBuffer) Cap() int {
	return len(b.data)
}

// Reset discards all buffered bytes.
func (b *FrameBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.start, b.size = 0, 0
}
