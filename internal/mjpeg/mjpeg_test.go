package mjpeg

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"
)

// threadSafeRecorder is a minimal http.ResponseWriter + http.Flusher that is safe to use across goroutines.
type threadSafeRecorder struct {
	mu     sync.Mutex
	header http.Header
	buf    bytes.Buffer
	status int
}

// Header returns the response headers.
func (r *threadSafeRecorder) Header() http.Header {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.header == nil {
		r.header = make(http.Header)
	}
	return r.header
}

// Write appends bytes to the response body.
func (r *threadSafeRecorder) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.buf.Write(p)
}

// WriteHeader sets the HTTP status code.
func (r *threadSafeRecorder) WriteHeader(statusCode int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status = statusCode
}

// Flush implements http.Flusher.
func (r *threadSafeRecorder) Flush() {}

// bodyString returns the current body as a string.
func (r *threadSafeRecorder) bodyString() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.buf.String()
}

// bodyBytes returns a copy of the current body as bytes.
func (r *threadSafeRecorder) bodyBytes() []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]byte(nil), r.buf.Bytes()...)
}

func mustEncode(t *testing.T, rgb []byte) []byte {
	t.Helper()
	jpg, err := EncodeRGB(rgb, 1, 1, 60)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	return jpg
}

// TestEncodeRGB validates the encoder output and its short-frame guard.
func TestEncodeRGB(t *testing.T) {
	t.Parallel()
	jpg := mustEncode(t, []byte{255, 0, 0})
	if !bytes.HasPrefix(jpg, []byte{0xff, 0xd8}) {
		t.Fatalf("expected JPEG SOI marker, got % x", jpg[:2])
	}
	if _, err := EncodeRGB([]byte{1, 2}, 1, 1, 60); !errors.Is(err, ErrShortFrame) {
		t.Fatalf("expected ErrShortFrame, got %v", err)
	}
}

// TestStreamHandlerWritesFrame validates the handler writes a multipart part when a last frame is available.
func TestStreamHandlerWritesFrame(t *testing.T) {
	t.Parallel()

	s := NewStream(0)
	jpg := mustEncode(t, []byte{0, 255, 0})
	s.Publish(jpg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://example/stream", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}

	rec := &threadSafeRecorder{}
	done := make(chan struct{})
	go func() {
		s.Handler(rec, req)
		close(done)
	}()

	deadline := time.NewTimer(500 * time.Millisecond)
	defer deadline.Stop()
	for !bytes.Contains(rec.bodyBytes(), []byte("--"+boundary)) {
		select {
		case <-deadline.C:
			cancel()
			<-done
			t.Fatalf("timed out waiting for mjpeg boundary, body=%q", rec.bodyString())
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	<-done

	if ct := rec.Header().Get("Content-Type"); ct != "multipart/x-mixed-replace; boundary="+boundary {
		t.Fatalf("unexpected content-type: %q", ct)
	}
	body := rec.bodyBytes()
	if !bytes.Contains(body, []byte("Content-Type: image/jpeg")) {
		t.Fatalf("expected jpeg part header, body=%q", rec.bodyString())
	}
	if !bytes.Contains(body, jpg) {
		t.Fatal("expected jpeg payload in body")
	}
	if s.Subscribers() != 0 {
		t.Fatalf("expected subscriber to be removed, got %d", s.Subscribers())
	}
}

// TestStreamPublishThrottle ensures a throttled publish updates the last frame without broadcasting.
func TestStreamPublishThrottle(t *testing.T) {
	t.Parallel()

	s := NewStream(time.Hour)
	ch := s.subscribe()
	defer s.unsubscribe(ch)

	jpgA := mustEncode(t, []byte{0, 0, 255})
	jpgB := mustEncode(t, []byte{255, 255, 0})

	s.Publish(jpgA)
	select {
	case got := <-ch:
		if !bytes.Equal(got, jpgA) {
			t.Fatal("expected first publish to broadcast jpgA")
		}
	case <-time.After(200 * time.Millisecond):
		t.Fatal("timed out waiting for first publish")
	}

	s.Publish(jpgB)
	select {
	case <-ch:
		t.Fatal("expected throttled publish to not broadcast immediately")
	case <-time.After(50 * time.Millisecond):
	}
	if !bytes.Equal(s.Last(), jpgB) {
		t.Fatal("expected last frame to update even when throttled")
	}
}

// TestStreamNextWaitsForPublish validates Next returns the frame published after the call.
func TestStreamNextWaitsForPublish(t *testing.T) {
	t.Parallel()

	s := NewStream(time.Hour)
	old := mustEncode(t, []byte{1, 1, 1})
	s.Publish(old)

	fresh := mustEncode(t, []byte{200, 100, 50})
	got := make(chan []byte, 1)
	go func() {
		jpg, err := s.Next(context.Background())
		if err != nil {
			got <- nil
			return
		}
		got <- jpg
	}()

	time.Sleep(20 * time.Millisecond)
	s.Publish(fresh)
	select {
	case jpg := <-got:
		if !bytes.Equal(jpg, fresh) {
			t.Fatal("expected Next to return the new frame")
		}
	case <-time.After(time.Second):
		t.Fatal("Next did not wake on publish")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := s.Next(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
}

// TestStreamPublishConcurrent churns publish/subscribe to catch races under -race.
func TestStreamPublishConcurrent(t *testing.T) {
	t.Parallel()

	s := NewStream(0)
	jpg := mustEncode(t, []byte{10, 20, 30})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 500; j++ {
				s.Publish(jpg)
			}
		}()
	}
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				ch := s.subscribe()
				select {
				case <-ch:
				default:
				}
				s.unsubscribe(ch)
			}
		}()
	}
	wg.Wait()
}
