package xmlstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadWriteTopLevelElement(t *testing.T) {
	data := []byte(`<project><version>1.2.3</version><name>widget</name></project>`)

	v, err := Read(data, []string{"project", "version"})
	require.NoError(t, err)
	assert.Equal(t, "1.2.3", v)

	out, err := Write(data, []string{"project", "version"}, "1.3.0")
	require.NoError(t, err)
	v2, err := Read(out, []string{"project", "version"})
	require.NoError(t, err)
	assert.Equal(t, "1.3.0", v2)

	name, err := Read(out, []string{"project", "name"})
	require.NoError(t, err)
	assert.Equal(t, "widget", name)
}

func TestReadRootElementItself(t *testing.T) {
	data := []byte(`<version>1.2.3</version>`)
	v, err := Read(data, []string{"version"})
	require.NoError(t, err)
	assert.Equal(t, "1.2.3", v)
}

func TestReadIndexedSibling(t *testing.T) {
	data := []byte(`<deps><dep>a</dep><dep>1.0.0</dep></deps>`)
	v, err := Read(data, []string{"deps", "dep#1"})
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", v)
}

func TestReadWrongRootErrors(t *testing.T) {
	data := []byte(`<project><version>1.0.0</version></project>`)
	_, err := Read(data, []string{"package", "version"})
	assert.Error(t, err)
}
