package antivirus

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_SelectsScanner(t *testing.T) {
	assert.Equal(t, "noop", New("").Name())
	assert.Equal(t, "clamav", New("tcp://127.0.0.1:3310").Name())
}

func TestNoOpScanner(t *testing.T) {
	s := NewNoOpScanner()
	res := s.Scan(context.Background(), "cv.pdf", strings.NewReader("%PDF-1.4"))

	assert.False(t, res.Infected)
	assert.NoError(t, res.Error)
	assert.True(t, s.Available(context.Background()))
}
