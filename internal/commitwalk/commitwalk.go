// Package commitwalk implements CommitWalker: given prior-marker-commit and
// HEAD, produce the ordered commit set S = ancestors(HEAD) \
// ancestors(prior-marker-commit), oldest first, with each commit's changed
// paths (spec.md §4.4). Built on go-git/go-git/v5's object graph, the way
// golang-dep's source_manager.go walks a project's history when resolving
// versions -- except here the walk is over the repository's own commit
// graph rather than a dependency's.
package commitwalk

import (
	"sort"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/versio-release/versio/internal/model"
	"github.com/versio-release/versio/internal/verrors"
)

// Walk enumerates S = ancestors(headHash) \ ancestors(markerHash), oldest
// first. It returns *verrors.MarkerLostError when markerHash is not an
// ancestor of headHash.
func Walk(repo *git.Repository, markerHash, headHash string) ([]model.Commit, error) {
	headCommit, err := repo.CommitObject(plumbing.NewHash(headHash))
	if err != nil {
		return nil, err
	}

	ancestorsOfMarker := map[plumbing.Hash]bool{}
	if markerHash != "" {
		markerCommit, err := repo.CommitObject(plumbing.NewHash(markerHash))
		if err != nil {
			return nil, err
		}
		isAnc, err := markerCommit.IsAncestor(headCommit)
		if err != nil {
			return nil, err
		}
		if !isAnc && markerCommit.Hash != headCommit.Hash {
			return nil, &verrors.MarkerLostError{Marker: markerHash, Head: headHash}
		}
		if err := collectAncestors(markerCommit, ancestorsOfMarker); err != nil {
			return nil, err
		}
		ancestorsOfMarker[markerCommit.Hash] = true
	}

	reachable := map[plumbing.Hash]*object.Commit{}
	if err := collectReachable(headCommit, reachable); err != nil {
		return nil, err
	}

	var result []model.Commit
	for hash, c := range reachable {
		if ancestorsOfMarker[hash] {
			continue
		}
		paths, err := changedPaths(c)
		if err != nil {
			return nil, err
		}
		result = append(result, toModelCommit(c, paths))
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CommitTime != result[j].CommitTime {
			return result[i].CommitTime < result[j].CommitTime
		}
		return result[i].Hash < result[j].Hash
	})
	return result, nil
}

func collectAncestors(start *object.Commit, seen map[plumbing.Hash]bool) error {
	if seen[start.Hash] {
		return nil
	}
	seen[start.Hash] = true
	return start.Parents().ForEach(func(p *object.Commit) error {
		return collectAncestors(p, seen)
	})
}

func collectReachable(start *object.Commit, seen map[plumbing.Hash]*object.Commit) error {
	if _, ok := seen[start.Hash]; ok {
		return nil
	}
	seen[start.Hash] = start
	return start.Parents().ForEach(func(p *object.Commit) error {
		return collectReachable(p, seen)
	})
}

// changedPaths computes the symmetric diff against the first parent for an
// ordinary commit, or against the first parent for a merge -- per spec.md
// §4.4 both cases use the first parent.
func changedPaths(c *object.Commit) (map[string]struct{}, error) {
	paths := map[string]struct{}{}
	tree, err := c.Tree()
	if err != nil {
		return nil, err
	}
	if c.NumParents() == 0 {
		err = tree.Files().ForEach(func(f *object.File) error {
			paths[f.Name] = struct{}{}
			return nil
		})
		return paths, err
	}
	parent, err := c.Parent(0)
	if err != nil {
		return nil, err
	}
	parentTree, err := parent.Tree()
	if err != nil {
		return nil, err
	}
	changes, err := parentTree.Diff(tree)
	if err != nil {
		return nil, err
	}
	for _, change := range changes {
		if change.From.Name != "" {
			paths[change.From.Name] = struct{}{}
		}
		if change.To.Name != "" {
			paths[change.To.Name] = struct{}{}
		}
	}
	return paths, nil
}

func toModelCommit(c *object.Commit, paths map[string]struct{}) model.Commit {
	parents := make([]string, 0, c.NumParents())
	for _, h := range c.ParentHashes {
		parents = append(parents, h.String())
	}
	return model.Commit{
		Hash:         c.Hash.String(),
		Author:       model.Identity{Name: c.Author.Name, Email: c.Author.Email},
		Committer:    model.Identity{Name: c.Committer.Name, Email: c.Committer.Email},
		CommitTime:   c.Committer.When.Unix(),
		Message:      c.Message,
		Parents:      parents,
		ChangedPaths: paths,
	}
}
