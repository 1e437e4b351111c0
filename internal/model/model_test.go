package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSizeMax(t *testing.T) {
	assert.Equal(t, SizeMinor, SizeNone.Max(SizeMinor))
	assert.Equal(t, SizeMajor, SizeMajor.Max(SizePatch))
	assert.Equal(t, SizeFail, SizeFail.Max(SizeMajor))
}

func TestParseSize(t *testing.T) {
	cases := map[string]Size{
		"fail":  SizeFail,
		"major": SizeMajor,
		"minor": SizeMinor,
		"patch": SizePatch,
		"none":  SizeNone,
		"":      SizeNone,
	}
	for in, want := range cases {
		got, err := ParseSize(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseSize("bogus")
	assert.Error(t, err)
}

func TestSizeMapSizeOf(t *testing.T) {
	m := SizeMap{
		ByType:      map[string]Size{"feat": SizeMinor, "fix": SizePatch},
		Breaking:    SizeMajor,
		Unparseable: SizeNone,
		CatchAll:    SizeNone,
	}
	assert.Equal(t, SizeMinor, m.SizeOf("feat", false))
	assert.Equal(t, SizeMajor, m.SizeOf("feat", true))
	assert.Equal(t, SizeNone, m.SizeOf("chore", false))
}

func TestSubdivisionRequiresDir(t *testing.T) {
	s := Subdivision{DirPattern: "v<>", Tops: []int{0, 1}}

	dir, required := s.RequiresDir(1)
	assert.False(t, required)
	assert.Equal(t, "", dir)

	dir, required = s.RequiresDir(2)
	assert.True(t, required)
	assert.Equal(t, "v2", dir)
}

func TestCommitSummary(t *testing.T) {
	c := Commit{Message: "fix: patch thing\n\nBREAKING CHANGE: removes old flag"}
	assert.Equal(t, "fix: patch thing", c.Summary())

	single := Commit{Message: "chore: no body"}
	assert.Equal(t, "chore: no body", single.Summary())
}

func TestPRGroupIsOtherAndNewestCommitTime(t *testing.T) {
	other := PRGroup{Title: "Other commits", Commits: []Commit{{CommitTime: 5}, {CommitTime: 9}, {CommitTime: 2}}}
	assert.True(t, other.IsOther())
	assert.Equal(t, int64(9), other.NewestCommitTime())

	named := PRGroup{Number: 42, Title: "Other commits"}
	assert.False(t, named.IsOther())
}

func TestPlanEntryForAndChanged(t *testing.T) {
	plan := Plan{Entries: []PlanEntry{
		{Project: Project{ID: 1}, CurrentVersion: "1.0.0", TargetVersion: "1.0.0"},
		{Project: Project{ID: 2}, CurrentVersion: "1.0.0", TargetVersion: "1.1.0"},
	}}

	e, ok := plan.EntryFor(2)
	require.True(t, ok)
	assert.Equal(t, "1.1.0", e.TargetVersion)

	_, ok = plan.EntryFor(99)
	assert.False(t, ok)

	assert.True(t, plan.Changed())
	assert.False(t, Plan{Entries: plan.Entries[:1]}.Changed())
}

func TestConfigProjectByID(t *testing.T) {
	cfg := Config{Projects: []Project{{ID: 1, Name: "api"}, {ID: 2, Name: "web"}}}

	p, ok := cfg.ProjectByID(2)
	require.True(t, ok)
	assert.Equal(t, "web", p.Name)

	_, ok = cfg.ProjectByID(99)
	assert.False(t, ok)
}
