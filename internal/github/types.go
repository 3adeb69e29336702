package github

import "time"

// RepoRef is the normalized repository identity extracted from an input URL.
type RepoRef struct {
	Owner string
	Name  string
	URL   string
}

// FullName returns the owner/name pair.
func (r RepoRef) FullName() string {
	return r.Owner + "/" + r.Name
}

// Owner identifies the account that owns a repository.
type Owner struct {
	Login     string `json:"login"`
	AvatarURL string `json:"avatar_url"`
}

// RepositoryMetadata stores base repository attributes plus enrichment counts.
//
// Enrichment fields (Contributors, Commits, Languages, PullRequests, Releases)
// hold their zero value when the corresponding sub-fetch failed. Languages is
// never nil.
type RepositoryMetadata struct {
	Name          string     `json:"name"`
	Description   string     `json:"description"`
	Stars         int        `json:"stars"`
	Forks         int        `json:"forks"`
	Language      string     `json:"language"`
	Topics        []string   `json:"topics"`
	CreatedAt     *time.Time `json:"created_at,omitempty"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
	OpenIssues    int        `json:"open_issues"`
	Watchers      int        `json:"watchers"`
	SizeKB        int        `json:"size_kb"`
	DefaultBranch string     `json:"default_branch"`
	Owner         Owner      `json:"owner"`
	URL           string     `json:"url"`

	Contributors int            `json:"contributors"`
	Commits      int            `json:"commits"`
	Languages    map[string]int `json:"languages"`
	PullRequests int            `json:"pull_requests"`
	Releases     int            `json:"releases"`
}

// RepoData is the normalized payload produced by one repository fetch.
type RepoData struct {
	Meta   RepositoryMetadata
	Readme string
}
