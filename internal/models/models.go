package models

import (
	"time"
)

// FactKindColleague marks a fact carrying one candidate's collaboration score
const FactKindColleague = "colleague"

// Repo identifies the analysed repository
type Repo struct {
	Rehash string `json:"rehash" yaml:"rehash" db:"rehash"`
	Path   string `json:"path,omitempty" yaml:"path,omitempty" db:"path"`
}

// Author is a contributor identity as reported to the sink
type Author struct {
	Name  string `json:"name,omitempty" yaml:"name,omitempty"`
	Email string `json:"email" yaml:"email"`
}

// Fact is one scored record handed to a reporting sink
type Fact struct {
	ID          string    `json:"id" yaml:"id" db:"id"`
	BatchID     string    `json:"batch_id" yaml:"batch_id" db:"batch_id"`
	RepoRehash  string    `json:"repo_rehash" yaml:"repo_rehash" db:"repo_rehash"`
	Kind        string    `json:"kind" yaml:"kind" db:"kind"`
	Value       string    `json:"value" yaml:"value" db:"value"` // candidate email
	Score       float64   `json:"score" yaml:"score" db:"score"`
	AuthorEmail string    `json:"author_email" yaml:"author_email" db:"author_email"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at" db:"created_at"`
}
