// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tui

import (
	"fmt"
	"io"
	"sync"
	"time"
)

var DefaultFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Progress draws a spinner followed by a "done/total label" counter on a
// single terminal line. Add may be called from many goroutines.
type Progress struct {
	out      io.Writer
	frames   []string
	interval time.Duration
	color    Colorizer
	label    string
	total    int

	mu      sync.Mutex
	done    int
	idx     int
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

type ProgressOption func(*Progress)

func WithFrames(frames []string) ProgressOption {
	return func(p *Progress) {
		if len(frames) > 0 {
			p.frames = frames
		}
	}
}

func WithInterval(d time.Duration) ProgressOption {
	return func(p *Progress) {
		if d > 0 {
			p.interval = d
		}
	}
}

func WithColor(c Colorizer) ProgressOption {
	return func(p *Progress) { p.color = c }
}

func NewProgress(out io.Writer, label string, total int, opts ...ProgressOption) *Progress {
	p := &Progress{
		out:      out,
		frames:   DefaultFrames,
		interval: 120 * time.Millisecond,
		label:    label,
		total:    total,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Progress) Start() {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	p.mu.Unlock()

	p.render()
	go p.loop()
}

// Add records n finished items.
func (p *Progress) Add(n int) {
	p.mu.Lock()
	p.done += n
	p.mu.Unlock()
}

// Done returns the number of finished items.
func (p *Progress) Done() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}

// Stop halts the spinner and erases its line.
func (p *Progress) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	stopCh, doneCh := p.stopCh, p.doneCh
	p.running = false
	p.mu.Unlock()

	close(stopCh)
	<-doneCh
	fmt.Fprint(p.out, "\r\033[K")
}

func (p *Progress) loop() {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			p.mu.Lock()
			p.idx = (p.idx + 1) % len(p.frames)
			p.mu.Unlock()
			p.render()
		case <-p.stopCh:
			close(p.doneCh)
			return
		}
	}
}

func (p *Progress) render() {
	p.mu.Lock()
	frame := p.frames[p.idx%len(p.frames)]
	line := fmt.Sprintf("%d/%d %s", p.done, p.total, p.label)
	p.mu.Unlock()
	fmt.Fprintf(p.out, "\r\033[K%s %s", p.color.Wrap(StyleDim, frame), line)
}
