package semverx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/versio-release/versio/internal/model"
)

func TestParseRejectsPrereleaseAndMetadata(t *testing.T) {
	_, err := Parse("1.2.3-rc.1")
	require.Error(t, err)

	_, err = Parse("1.2.3+build.5")
	require.Error(t, err)

	v, err := Parse("1.2.3")
	require.NoError(t, err)
	assert.Equal(t, int64(1), v.Major())
}

func TestCanonicalStripsLeadingZeros(t *testing.T) {
	c, err := Canonical("01.02.03")
	require.NoError(t, err)
	assert.Equal(t, "1.2.3", c)
}

func TestBump(t *testing.T) {
	cases := []struct {
		size model.Size
		want string
	}{
		{model.SizeMajor, "2.0.0"},
		{model.SizeMinor, "1.3.0"},
		{model.SizePatch, "1.2.4"},
		{model.SizeNone, "1.2.3"},
	}
	for _, tc := range cases {
		got, err := Bump("1.2.3", tc.size)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got)
	}
}

func TestMaxSkipsUnparseable(t *testing.T) {
	best, ok := Max([]string{"1.0.0", "not-a-version", "1.2.0", "0.9.0"})
	require.True(t, ok)
	assert.Equal(t, "1.2.0", best)

	_, ok = Max(nil)
	assert.False(t, ok)
}

func TestGTE(t *testing.T) {
	ok, err := GTE("1.2.3", "1.2.3")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = GTE("1.2.2", "1.2.3")
	require.NoError(t, err)
	assert.False(t, ok)
}
