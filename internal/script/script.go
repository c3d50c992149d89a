// Package script loads scripted input sessions and replays them into a controller.
package script

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/frudas24/webkvm/internal/config"
	"github.com/frudas24/webkvm/internal/control"
	"gopkg.in/yaml.v3"
)

// Step is one event with an optional delay applied before it.
type Step struct {
	control.Event `yaml:",inline"`
	Delay         time.Duration `yaml:"delay,omitempty"`
}

// Script is a recorded input session.
type Script struct {
	// Viewport overrides the local viewport size, WIDTHxHEIGHT.
	Viewport string `yaml:"viewport,omitempty"`
	Steps    []Step `yaml:"events"`
}

var knownKinds = map[control.EventKind]bool{
	control.EventKeyDown:           true,
	control.EventKeyUp:             true,
	control.EventMouseDown:         true,
	control.EventMouseUp:           true,
	control.EventMouseMove:         true,
	control.EventWheel:             true,
	control.EventFocus:             true,
	control.EventBlur:              true,
	control.EventPointerLockChange: true,
	control.EventDialog:            true,
	control.EventPaste:             true,
}

// Load reads and validates a YAML script.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse decodes and validates a YAML script.
func Parse(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks event kinds, delays and the viewport.
func (s *Script) Validate() error {
	if s.Viewport != "" {
		if _, _, err := config.ParseResolution(s.Viewport); err != nil {
			return fmt.Errorf("viewport: %w", err)
		}
	}
	for i, step := range s.Steps {
		if !knownKinds[step.Kind] {
			return fmt.Errorf("event %d: unknown type %q", i, step.Kind)
		}
		if step.Delay < 0 {
			return fmt.Errorf("event %d: negative delay", i)
		}
		if step.Kind == control.EventKeyDown || step.Kind == control.EventKeyUp {
			if step.Key == "" {
				return fmt.Errorf("event %d: %s needs a key", i, step.Kind)
			}
		}
	}
	return nil
}

// ViewportSize returns the script viewport, ok=false when unset.
func (s *Script) ViewportSize() (control.Viewport, bool) {
	w, h, err := config.ParseResolution(s.Viewport)
	if err != nil {
		return control.Viewport{}, false
	}
	return control.Viewport{W: w, H: h}, true
}

// Play submits every step in order, honoring delays, until done or ctx ends.
func (s *Script) Play(ctx context.Context, submit func(context.Context, control.Event) error) error {
	for i, step := range s.Steps {
		if step.Delay > 0 {
			timer := time.NewTimer(step.Delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
		if err := submit(ctx, step.Event); err != nil {
			return fmt.Errorf("event %d: %w", i, err)
		}
	}
	return nil
}
