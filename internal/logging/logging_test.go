package logging

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetLogger(t *testing.T) {
	var got []string
	original := SetLogger(func(format string, v ...interface{}) {
		got = append(got, fmt.Sprintf(format, v...))
	})
	defer SetLogger(original)
	Logf("hello %d", 1)
	assert.Equal(t, []string{"hello 1"}, got)

	SetLogger(nil)
	Logf("muted")
	assert.Len(t, got, 1, "no-op logger must not reach the previous logger")
}

func TestDebugf_Gated(t *testing.T) {
	var got []string
	original := SetLogger(func(format string, v ...interface{}) {
		got = append(got, fmt.Sprintf(format, v...))
	})
	defer func() {
		SetLogger(original)
		SetDebug(false)
	}()

	Debugf("hidden")
	assert.Empty(t, got)

	SetDebug(true)
	assert.True(t, DebugEnabled())
	Debugf("shown %s", "now")
	assert.Equal(t, []string{"[debug] shown now"}, got)
}

func TestSetLogger_ReturnsPrevious(t *testing.T) {
	first := SetLogger(nil)
	defer SetLogger(first)

	var hits int
	SetLogger(func(string, ...interface{}) { hits++ })
	muted := SetLogger(nil)
	muted("dropped")
	assert.Zero(t, hits)

	restored := SetLogger(muted)
	restored("counted")
	assert.Equal(t, 1, hits)
}
