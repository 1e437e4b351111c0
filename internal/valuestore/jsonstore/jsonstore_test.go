package jsonstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadWriteTopLevel(t *testing.T) {
	data := []byte(`{
  "name": "widget",
  "version": "1.2.3",
  "private": true
}
`)
	v, err := Read(data, []string{"version"})
	require.NoError(t, err)
	assert.Equal(t, "1.2.3", v)

	out, err := Write(data, []string{"version"}, "1.3.0")
	require.NoError(t, err)
	assert.Contains(t, string(out), `"version": "1.3.0"`)
	assert.Contains(t, string(out), `"name": "widget"`)
	assert.Contains(t, string(out), `"private": true`)

	v2, err := Read(out, []string{"version"})
	require.NoError(t, err)
	assert.Equal(t, "1.3.0", v2)
}

func TestReadNestedAndArrayIndex(t *testing.T) {
	data := []byte(`{"package": {"version": "0.1.0"}, "deps": ["a", "0.2.0", "c"]}`)

	v, err := Read(data, []string{"package", "version"})
	require.NoError(t, err)
	assert.Equal(t, "0.1.0", v)

	v, err = Read(data, []string{"deps", "1"})
	require.NoError(t, err)
	assert.Equal(t, "0.2.0", v)
}

func TestReadMissingKeyErrors(t *testing.T) {
	data := []byte(`{"version": "1.0.0"}`)
	_, err := Read(data, []string{"nope"})
	assert.Error(t, err)
}

func TestWritePreservesUnrelatedFormatting(t *testing.T) {
	data := []byte("{\n\t\"version\":    \"1.0.0\",\n\t\"other\": [1,2,3]\n}")
	out, err := Write(data, []string{"version"}, "2.0.0")
	require.NoError(t, err)
	assert.Equal(t, "{\n\t\"version\":    \"2.0.0\",\n\t\"other\": [1,2,3]\n}", string(out))
}
