// Package mjpeg broadcasts JPEG frames as a multipart MJPEG stream.
package mjpeg

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/jpeg"
	"net/http"
	"strconv"
	"sync"
	"time"
)

const boundary = "frame"

// ErrShortFrame is returned when a raw frame is smaller than its dimensions.
var ErrShortFrame = errors.New("mjpeg: raw frame shorter than width*height*3")

// Stream fans JPEG frames out to HTTP subscribers and snapshot waiters.
type Stream struct {
	mu          sync.RWMutex
	subs        map[chan []byte]struct{}
	last        []byte
	next        chan struct{}
	minInterval time.Duration
	lastPush    time.Time
}

// NewStream creates a stream that broadcasts at most once per minInterval.
func NewStream(minInterval time.Duration) *Stream {
	return &Stream{
		subs:        make(map[chan []byte]struct{}),
		next:        make(chan struct{}),
		minInterval: minInterval,
	}
}

// SetMinInterval changes the broadcast throttle.
func (s *Stream) SetMinInterval(d time.Duration) {
	s.mu.Lock()
	s.minInterval = d
	s.mu.Unlock()
}

// Publish stores jpg as the latest frame, wakes snapshot waiters and broadcasts
// to subscribers unless throttled.
func (s *Stream) Publish(jpg []byte) {
	now := time.Now()
	frame := append([]byte(nil), jpg...)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = frame
	close(s.next)
	s.next = make(chan struct{})
	if s.minInterval > 0 && now.Sub(s.lastPush) < s.minInterval {
		return
	}
	s.lastPush = now
	for ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- frame:
		default:
		}
	}
}

// Last returns a copy of the latest frame, nil before the first publish.
func (s *Stream) Last() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.last == nil {
		return nil
	}
	return append([]byte(nil), s.last...)
}

// Next waits for the next published frame.
func (s *Stream) Next(ctx context.Context) ([]byte, error) {
	s.mu.RLock()
	wait := s.next
	s.mu.RUnlock()
	select {
	case <-wait:
		return s.Last(), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Subscribers returns the number of connected stream clients.
func (s *Stream) Subscribers() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs)
}

// Handler serves the multipart stream until the client goes away.
func (s *Stream) Handler(w http.ResponseWriter, r *http.Request) {
	fl, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary="+boundary)
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Pragma", "no-cache")

	ch := s.subscribe()
	defer s.unsubscribe(ch)

	// Resend the latest frame on idle sources so clients keep a picture.
	keep := time.NewTicker(time.Second)
	defer keep.Stop()

	for {
		var jpg []byte
		select {
		case <-r.Context().Done():
			return
		case jpg = <-ch:
		case <-keep.C:
			jpg = s.Last()
		}
		if len(jpg) == 0 {
			continue
		}
		if err := writePart(w, jpg); err != nil {
			return
		}
		fl.Flush()
	}
}

// EncodeRGB encodes packed RGB24 pixels into a JPEG.
func EncodeRGB(rgb []byte, w, h, quality int) ([]byte, error) {
	if len(rgb) < w*h*3 {
		return nil, ErrShortFrame
	}
	if quality <= 0 || quality > 100 {
		quality = 80
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for p := 0; p < w*h; p++ {
		src, dst := p*3, p*4
		img.Pix[dst+0] = rgb[src+0]
		img.Pix[dst+1] = rgb[src+1]
		img.Pix[dst+2] = rgb[src+2]
		img.Pix[dst+3] = 0xff
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *Stream) subscribe() chan []byte {
	ch := make(chan []byte, 1)
	s.mu.Lock()
	s.subs[ch] = struct{}{}
	if len(s.last) > 0 {
		ch <- s.last
	}
	s.mu.Unlock()
	return ch
}

func (s *Stream) unsubscribe(ch chan []byte) {
	s.mu.Lock()
	delete(s.subs, ch)
	s.mu.Unlock()
}

func writePart(w http.ResponseWriter, jpg []byte) error {
	header := "\r\n--" + boundary + "\r\n" +
		"Content-Type: image/jpeg\r\n" +
		"Content-Length: " + strconv.Itoa(len(jpg)) + "\r\n\r\n"
	if _, err := w.Write([]byte(header)); err != nil {
		return err
	}
	_, err := w.Write(jpg)
	return err
}
