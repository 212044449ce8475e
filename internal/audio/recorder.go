package audio

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"time"

	apperrors "github.com/nutriclinic/backoffice/pkg/errors"
)

// DefaultChunkInterval is how often the device is asked to emit an
// encoded chunk while recording.
const DefaultChunkInterval = 500 * time.Millisecond

// Device produces encoded audio from an exclusive input (microphone).
type Device interface {
	// Open acquires the input and starts emitting encoded chunks at
	// the given interval. Fails when the input cannot be opened
	// (permission denied, no device, already in use).
	Open(ctx context.Context, chunkInterval time.Duration) (Stream, error)
}

// Stream is a live capture session.
type Stream interface {
	// Next blocks until the next encoded chunk is available. Returns
	// the context error once the session is cancelled.
	Next(ctx context.Context) ([]byte, error)
	Close() error
}

type state int

const (
	stateIdle state = iota
	stateRecording
)

// Recorder buffers device chunks into a single encoded artifact.
// Lifecycle is Idle -> Recording -> Idle, via Stop (yielding the
// artifact exactly once) or Reset (discarding). Reusable across many
// recordings.
type Recorder struct {
	device   Device
	interval time.Duration

	mu     sync.Mutex
	state  state
	chunks [][]byte
	stream Stream
	cancel context.CancelFunc
	done   chan struct{}
}

type Option func(*Recorder)

func WithChunkInterval(d time.Duration) Option {
	return func(r *Recorder) { r.interval = d }
}

func NewRecorder(device Device, opts ...Option) *Recorder {
	r := &Recorder{
		device:   device,
		interval: DefaultChunkInterval,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start acquires the input device and begins buffering chunks. The
// buffer always starts empty, regardless of what a previous recording
// left behind.
func (r *Recorder) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == stateRecording {
		return apperrors.DeviceUnavailable(errors.New("input device already in use"))
	}

	stream, err := r.device.Open(ctx, r.interval)
	if err != nil {
		return apperrors.DeviceUnavailable(err)
	}

	// Recording outlives the caller's request context.
	runCtx, cancel := context.WithCancel(context.Background())

	r.stream = stream
	r.cancel = cancel
	r.done = make(chan struct{})
	r.chunks = nil
	r.state = stateRecording

	go r.buffer(runCtx, stream, r.done)
	return nil
}

func (r *Recorder) buffer(ctx context.Context, stream Stream, done chan struct{}) {
	defer close(done)
	for {
		chunk, err := stream.Next(ctx)
		if err != nil {
			return
		}
		if len(chunk) == 0 {
			continue
		}
		r.mu.Lock()
		r.chunks = append(r.chunks, chunk)
		r.mu.Unlock()
	}
}

// Stop finalizes buffering, releases the device and yields the
// artifact: all buffered chunks concatenated in capture order. Calling
// Stop while idle signals NotRecording.
func (r *Recorder) Stop() ([]byte, error) {
	r.mu.Lock()
	if r.state != stateRecording {
		r.mu.Unlock()
		return nil, apperrors.NotRecording()
	}
	cancel, done, stream := r.cancel, r.done, r.stream
	r.mu.Unlock()

	cancel()
	<-done
	stream.Close()

	r.mu.Lock()
	defer r.mu.Unlock()

	var buf bytes.Buffer
	for _, chunk := range r.chunks {
		buf.Write(chunk)
	}

	r.chunks = nil
	r.stream = nil
	r.cancel = nil
	r.done = nil
	r.state = stateIdle

	return buf.Bytes(), nil
}

// Reset discards any buffered audio and returns to idle. Safe to call
// at any time, including mid-recording.
func (r *Recorder) Reset() {
	r.mu.Lock()
	if r.state != stateRecording {
		r.chunks = nil
		r.mu.Unlock()
		return
	}
	cancel, done, stream := r.cancel, r.done, r.stream
	r.mu.Unlock()

	cancel()
	<-done
	stream.Close()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.chunks = nil
	r.stream = nil
	r.cancel = nil
	r.done = nil
	r.state = stateIdle
}

// Recording reports whether a capture session is active.
func (r *Recorder) Recording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state == stateRecording
}
