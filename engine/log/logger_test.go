package log

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":   Debug,
		"INFO":    Info,
		"":        Info,
		"notice":  Notice,
		"warn":    Warning,
		"warning": Warning,
		"error":   Error,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestLevelFiltersOutput(t *testing.T) {
	var buf bytes.Buffer
	SetSink(&buf)
	defer func() {
		SetSink(os.Stderr)
		SetLevel(Notice)
	}()

	logger := New("test")
	SetLevel(Warning)
	logger.Infof("hidden %d", 1)
	logger.Warningf("shown %d", 2)

	out := buf.String()
	assert.NotContains(t, out, "hidden 1")
	assert.Contains(t, out, "shown 2")
	assert.Contains(t, out, "[test]")
}
