// Package prstitch implements PRStitcher (smart-level only): grouping
// commits into pull requests via google/go-github, and unsquashing
// squash-merged PRs back into their source commits when those commits are
// still reachable on the remote (spec.md §4.5).
package prstitch

import (
	"context"
	"sort"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/google/go-github/v64/github"

	"github.com/versio-release/versio/internal/commitwalk"
	"github.com/versio-release/versio/internal/model"
)

// Client is the subset of go-github's API PRStitcher needs, so tests can
// supply a fake without spinning up an HTTP server.
type Client interface {
	ListPullRequestsWithCommit(ctx context.Context, owner, repo, sha string) ([]*github.PullRequest, error)
}

// githubClient adapts *github.Client to Client.
type githubClient struct{ inner *github.Client }

func NewGitHubClient(inner *github.Client) Client { return &githubClient{inner: inner} }

func (c *githubClient) ListPullRequestsWithCommit(ctx context.Context, owner, repoName, sha string) ([]*github.PullRequest, error) {
	prs, _, err := c.inner.PullRequests.ListPullRequestsWithCommit(ctx, owner, repoName, sha, nil)
	return prs, err
}

// Stitch groups commits into PRGroups, performing the unsquash transform
// for squash-merge commits whose PR's source commits are still reachable
// via a remote-tracking ref in repo.
func Stitch(ctx context.Context, client Client, repo *git.Repository, owner, repoName string, commits []model.Commit) ([]model.PRGroup, error) {
	byNumber := map[int]*model.PRGroup{}
	var other []model.Commit

	for _, c := range commits {
		prs, err := client.ListPullRequestsWithCommit(ctx, owner, repoName, c.Hash)
		if err != nil || len(prs) == 0 {
			other = append(other, c)
			continue
		}
		pr := prs[0]
		number := pr.GetNumber()
		group, ok := byNumber[number]
		if !ok {
			group = &model.PRGroup{Number: number, Title: pr.GetTitle(), URL: pr.GetHTMLURL()}
			byNumber[number] = group
		}

		if source, ok := unsquash(repo, pr); ok {
			group.Commits = mergeUnique(group.Commits, source)
			group.BestEffort = false
		} else {
			group.Commits = mergeUnique(group.Commits, []model.Commit{c})
			if pr.GetState() == "" || pr.GetHead().GetRepo() == nil {
				group.BestEffort = true
			}
		}
	}

	groups := make([]model.PRGroup, 0, len(byNumber)+1)
	for _, g := range byNumber {
		sort.Slice(g.Commits, func(i, j int) bool { return g.Commits[i].CommitTime < g.Commits[j].CommitTime })
		groups = append(groups, *g)
	}
	if len(other) > 0 {
		sort.Slice(other, func(i, j int) bool { return other[i].CommitTime < other[j].CommitTime })
		groups = append(groups, model.PRGroup{Title: "Other commits", Commits: other})
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].NewestCommitTime() < groups[j].NewestCommitTime()
	})
	return groups, nil
}

// unsquash returns pr's source commits from its remote-tracking head ref,
// when that ref still exists -- the squash commit's replacement set.
func unsquash(repo *git.Repository, pr *github.PullRequest) ([]model.Commit, bool) {
	head := pr.GetHead()
	if head.GetRef() == "" || head.GetRepo() == nil {
		return nil, false
	}
	refName := plumbing.NewRemoteReferenceName("origin", head.GetRef())
	ref, err := repo.Reference(refName, true)
	if err != nil {
		return nil, false
	}
	base := pr.GetBase()
	baseRefName := plumbing.NewRemoteReferenceName("origin", base.GetRef())
	baseRef, err := repo.Reference(baseRefName, true)
	if err != nil {
		return nil, false
	}
	commits, err := commitwalk.Walk(repo, baseRef.Hash().String(), ref.Hash().String())
	if err != nil || len(commits) == 0 {
		return nil, false
	}
	return commits, true
}

func mergeUnique(existing, add []model.Commit) []model.Commit {
	seen := map[string]bool{}
	for _, c := range existing {
		seen[c.Hash] = true
	}
	for _, c := range add {
		if !seen[c.Hash] {
			existing = append(existing, c)
			seen[c.Hash] = true
		}
	}
	return existing
}

// Singleton produces the remote-level fallback: each commit is its own
// group, with sizes aggregated identically (spec.md §9 "Pull-request
// grouping is an enrichment, not a source of truth").
func Singleton(commits []model.Commit) []model.PRGroup {
	groups := make([]model.PRGroup, 0, len(commits))
	for _, c := range commits {
		groups = append(groups, model.PRGroup{Commits: []model.Commit{c}})
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].NewestCommitTime() < groups[j].NewestCommitTime()
	})
	return groups
}
