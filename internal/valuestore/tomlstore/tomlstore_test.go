package tomlstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadWriteRootTable(t *testing.T) {
	data := []byte("name = \"widget\"\nversion = \"1.2.3\"\n")

	v, err := Read(data, []string{"version"})
	require.NoError(t, err)
	assert.Equal(t, "1.2.3", v)

	out, err := Write(data, []string{"version"}, "1.3.0")
	require.NoError(t, err)
	assert.Equal(t, "name = \"widget\"\nversion = \"1.3.0\"\n", string(out))
}

func TestReadWriteNestedTable(t *testing.T) {
	data := []byte("[package]\nname = \"widget\"\nversion = \"0.1.0\"\n\n[dependencies]\nfoo = \"1.0\"\n")

	v, err := Read(data, []string{"package", "version"})
	require.NoError(t, err)
	assert.Equal(t, "0.1.0", v)

	out, err := Write(data, []string{"package", "version"}, "0.2.0")
	require.NoError(t, err)
	assert.Equal(t, "[package]\nname = \"widget\"\nversion = \"0.2.0\"\n\n[dependencies]\nfoo = \"1.0\"\n", string(out))
}

func TestWriteKeyNotFoundErrors(t *testing.T) {
	data := []byte("[package]\nname = \"widget\"\n")
	_, err := Write(data, []string{"package", "version"}, "0.2.0")
	assert.Error(t, err)
}

func TestReadNonStringValueErrors(t *testing.T) {
	data := []byte("[package]\nprivate = true\n")
	_, err := Read(data, []string{"package", "private"})
	assert.Error(t, err)
}
