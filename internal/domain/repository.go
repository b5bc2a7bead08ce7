// Package domain contains the core data structures and domain logic for the application.
package domain

import "fmt"

// Repository is the subset of a GitHub repository record the tool works with.
// Parent is only set for forks.
type Repository struct {
	Owner         string
	Name          string
	DefaultBranch string
	Archived      bool
	Private       bool
	Fork          bool
	Parent        *RepositoryRef
	HTMLURL       string
}

// RepositoryRef identifies a repository by owner and name.
type RepositoryRef struct {
	Owner string
	Name  string
}

func (r RepositoryRef) String() string {
	return fmt.Sprintf("%s/%s", r.Owner, r.Name)
}

// Ref returns the owner/name pair of the repository.
func (r *Repository) Ref() RepositoryRef {
	return RepositoryRef{Owner: r.Owner, Name: r.Name}
}

// ManifestMatch is a single code search hit for a manifest file.
type ManifestMatch struct {
	Repository RepositoryRef
	Path       string
}

// ManifestFile is the content of a manifest together with its blob SHA.
// The SHA must be sent back when the file is updated.
type ManifestFile struct {
	Path    string
	Content []byte
	SHA     string
}
