package testutil

import (
	"sync"

	"github.com/frudas24/webkvm/internal/control"
)

// FakeSender implements control.Sender and records sent messages for tests.
type FakeSender struct {
	mu   sync.Mutex
	msgs []control.Message
	// Err, when set, is returned from Send after recording nothing.
	Err error
}

// Ensure FakeSender implements the interface.
var _ control.Sender = (*FakeSender)(nil)

// Send records msg.
func (f *FakeSender) Send(msg control.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	f.msgs = append(f.msgs, msg)
	return nil
}

// Messages returns a copy of the recorded messages.
func (f *FakeSender) Messages() []control.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]control.Message, len(f.msgs))
	copy(out, f.msgs)
	return out
}

// Wire returns the recorded messages as "device/type payload" strings.
func (f *FakeSender) Wire() []string {
	msgs := f.Messages()
	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.String())
	}
	return out
}

// Reset drops recorded messages.
func (f *FakeSender) Reset() {
	f.mu.Lock()
	f.msgs = nil
	f.mu.Unlock()
}
