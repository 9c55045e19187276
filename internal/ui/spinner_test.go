package ui

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinnerRendersLatestMessage(t *testing.T) {
	var out syncBuffer
	s := NewSpinnerTo(&out)
	s.Start("Searching")
	s.Update("Page 1: 40 results")

	assert.Eventually(t, func() bool {
		return strings.Contains(out.String(), "Page 1: 40 results")
	}, time.Second, 10*time.Millisecond)

	s.Stop()
	assert.True(t, strings.HasSuffix(out.String(), "\r\033[K"))
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	var out syncBuffer
	s := NewSpinnerTo(&out)
	s.Stop()
	assert.Empty(t, out.String())

	s.Start("a")
	s.Start("b")
	s.Stop()
	s.Stop()
}
