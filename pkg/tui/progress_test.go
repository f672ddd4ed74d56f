// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tui

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"
)

type syncBuffer struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.String()
}

func TestProgress(t *testing.T) {
	var out syncBuffer
	p := NewProgress(&out, "lines", 4, WithFrames([]string{"*"}), WithInterval(time.Millisecond))
	p.Start()
	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.Add(1)
		}()
	}
	wg.Wait()
	p.Stop()

	if got := p.Done(); got != 4 {
		t.Errorf("Done() = %d, want 4", got)
	}
	s := out.String()
	if !strings.Contains(s, "* 0/4 lines") {
		t.Errorf("output %q missing initial frame", s)
	}
	if !strings.HasSuffix(s, "\r\033[K") {
		t.Errorf("output %q does not end by clearing the line", s)
	}
}

func TestProgressStopIdempotent(t *testing.T) {
	var out syncBuffer
	p := NewProgress(&out, "x", 1)
	p.Stop()
	if out.String() != "" {
		t.Errorf("Stop before Start wrote %q", out.String())
	}
}
