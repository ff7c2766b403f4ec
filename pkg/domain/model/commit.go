package model

import "strings"

// NoChangesMessage is returned by commit analysis when the diff summary lists no files
const NoChangesMessage = "No changes detected to generate commit message for"

var (
	configMarkers = []string{"config", ".json", ".yaml", ".yml"}
	docMarkers    = []string{"README", ".md", "doc"}
)

// CommitChanges summarizes a diff for commit message authoring
type CommitChanges struct {
	Insertions   int            `json:"insertions"`
	Deletions    int            `json:"deletions"`
	FilesChanged int            `json:"files_changed"`
	Files        []DiffFileStat `json:"files"`
}

// CommitSuggestions are heuristic hints for choosing a conventional commit type
type CommitSuggestions struct {
	HasNewFiles      bool `json:"has_new_files"`
	HasDeletedFiles  bool `json:"has_deleted_files"`
	HasConfigChanges bool `json:"has_config_changes"`
	HasDocChanges    bool `json:"has_doc_changes"`
}

// CommitAnalysis is the result of analyzing a working tree for a commit message.
// Message is set and the other fields are nil when nothing changed.
type CommitAnalysis struct {
	Message     string             `json:"message,omitempty"`
	Changes     *CommitChanges     `json:"changes,omitempty"`
	Suggestions *CommitSuggestions `json:"suggestions,omitempty"`
}

// HasChanges reports whether the analysis found any changed file
func (a *CommitAnalysis) HasChanges() bool {
	return a.Changes != nil
}

// NewCommitAnalysis builds the analysis for a diff summary
func NewCommitAnalysis(summary *DiffSummary) *CommitAnalysis {
	if summary == nil || len(summary.Files) == 0 {
		return &CommitAnalysis{Message: NoChangesMessage}
	}

	files := make([]DiffFileStat, len(summary.Files))
	copy(files, summary.Files)

	return &CommitAnalysis{
		Changes: &CommitChanges{
			Insertions:   summary.Insertions,
			Deletions:    summary.Deletions,
			FilesChanged: len(files),
			Files:        files,
		},
		Suggestions: NewCommitSuggestions(files),
	}
}

// NewCommitSuggestions evaluates every heuristic independently over the file list
func NewCommitSuggestions(files []DiffFileStat) *CommitSuggestions {
	var s CommitSuggestions
	for _, f := range files {
		if f.Insertions > 0 && f.Deletions == 0 {
			s.HasNewFiles = true
		}
		if f.Deletions > 0 && f.Insertions == 0 {
			s.HasDeletedFiles = true
		}
		if containsAny(f.File, configMarkers) {
			s.HasConfigChanges = true
		}
		if containsAny(f.File, docMarkers) {
			s.HasDocChanges = true
		}
	}
	return &s
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}
