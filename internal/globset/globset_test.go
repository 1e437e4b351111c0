package globset

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchesDefaultIncludesEverythingUnderRoot(t *testing.T) {
	set := New("services/api", nil, nil)
	assert.True(t, set.Matches("services/api/main.go"))
	assert.True(t, set.Matches("services/api/pkg/handler.go"))
	assert.False(t, set.Matches("services/web/main.go"))
}

func TestMatchesExcludeOverridesInclude(t *testing.T) {
	set := New("services/api", []string{"**/*"}, []string{"**/*_test.go"})
	assert.True(t, set.Matches("services/api/main.go"))
	assert.False(t, set.Matches("services/api/main_test.go"))
}

func TestMatchesRootDot(t *testing.T) {
	set := New(".", []string{"*.md"}, nil)
	assert.True(t, set.Matches("README.md"))
	assert.False(t, set.Matches("docs/guide.md"))
}

func TestMatchesAny(t *testing.T) {
	set := New("libs/core", nil, nil)
	paths := map[string]struct{}{
		"services/api/main.go": {},
		"libs/core/util.go":    {},
	}
	assert.True(t, set.MatchesAny(paths))
	assert.False(t, set.MatchesAny(map[string]struct{}{"services/api/main.go": {}}))
}
