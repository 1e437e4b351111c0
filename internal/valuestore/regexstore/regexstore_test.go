package regexstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadWrite(t *testing.T) {
	data := []byte(`VERSION = "1.2.3"`)
	pattern := `VERSION = "([0-9.]+)"`

	v, err := Read(data, pattern)
	require.NoError(t, err)
	assert.Equal(t, "1.2.3", v)

	out, err := Write(data, pattern, "1.3.0")
	require.NoError(t, err)
	assert.Equal(t, `VERSION = "1.3.0"`, string(out))
}

func TestReadNoCaptureGroupErrors(t *testing.T) {
	_, err := Read([]byte("VERSION = 1.2.3"), `VERSION = [0-9.]+`)
	assert.Error(t, err)
}

func TestWriteOnlyReplacesFirstMatch(t *testing.T) {
	data := []byte("a=\"1.0.0\"\nb=\"1.0.0\"\n")
	out, err := Write(data, `a="([0-9.]+)"`, "2.0.0")
	require.NoError(t, err)
	assert.Equal(t, "a=\"2.0.0\"\nb=\"1.0.0\"\n", string(out))
}
