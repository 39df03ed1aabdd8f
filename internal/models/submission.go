// internal/models/submission.go
package models

import (
	"fmt"
	"regexp"
	"strings"
)

var walletPattern = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)

// Submission is a proposed code change plus metadata, immutable once received.
type Submission struct {
	ID            string `json:"id,omitempty"`
	Title         string `json:"title"`
	Author        string `json:"author"`
	Repo          string `json:"repo"`
	WalletAddress string `json:"walletAddress"`
	Diff          string `json:"diff"`
	FilesChanged  int    `json:"filesChanged"`
	Additions     int    `json:"additions"`
	Deletions     int    `json:"deletions"`
}

// LineCount is the total changed-line count used by pricing and impact scoring.
func (s *Submission) LineCount() int {
	return s.Additions + s.Deletions
}

// Validate rejects a malformed submission before it enters the pipeline.
func (s *Submission) Validate() error {
	var missing []string
	if strings.TrimSpace(s.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(s.Author) == "" {
		missing = append(missing, "author")
	}
	if strings.TrimSpace(s.Repo) == "" {
		missing = append(missing, "repo")
	}
	if strings.TrimSpace(s.Diff) == "" {
		missing = append(missing, "diff")
	}
	if len(missing) > 0 {
		return fmt.Errorf("submission missing required fields: %s", strings.Join(missing, ", "))
	}
	if s.WalletAddress != "" && !walletPattern.MatchString(s.WalletAddress) {
		return fmt.Errorf("submission wallet address %q is not a valid 0x address", s.WalletAddress)
	}
	return nil
}
