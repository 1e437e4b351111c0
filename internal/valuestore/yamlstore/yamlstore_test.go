package yamlstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadWriteUnquoted(t *testing.T) {
	data := []byte("name: widget\nversion: 1.2.3\nprivate: true\n")

	v, err := Read(data, []string{"version"})
	require.NoError(t, err)
	assert.Equal(t, "1.2.3", v)

	out, err := Write(data, []string{"version"}, "1.3.0")
	require.NoError(t, err)
	assert.Equal(t, "name: widget\nversion: 1.3.0\nprivate: true\n", string(out))
}

func TestReadWriteQuoted(t *testing.T) {
	data := []byte("version: \"1.2.3\"\nother: 'kept as-is'\n")

	out, err := Write(data, []string{"version"}, "2.0.0")
	require.NoError(t, err)
	assert.Equal(t, "version: \"2.0.0\"\nother: 'kept as-is'\n", string(out))
}

func TestReadNestedAndSequenceIndex(t *testing.T) {
	data := []byte("package:\n  version: 0.1.0\ndeps:\n  - a\n  - 0.2.0\n  - c\n")

	v, err := Read(data, []string{"package", "version"})
	require.NoError(t, err)
	assert.Equal(t, "0.1.0", v)

	v, err = Read(data, []string{"deps", "1"})
	require.NoError(t, err)
	assert.Equal(t, "0.2.0", v)
}

func TestReadMissingKeyErrors(t *testing.T) {
	_, err := Read([]byte("version: 1.0.0\n"), []string{"nope"})
	assert.Error(t, err)
}

func TestReadNonScalarErrors(t *testing.T) {
	_, err := Read([]byte("package:\n  version: 0.1.0\n"), []string{"package"})
	assert.Error(t, err)
}
