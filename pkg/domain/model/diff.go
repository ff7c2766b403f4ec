package model

// DiffFileStat is one file entry of a diff summary
type DiffFileStat struct {
	File       string `json:"file"`
	Insertions int    `json:"insertions"`
	Deletions  int    `json:"deletions"`
	Binary     bool   `json:"binary"`
}

// DiffSummary holds aggregate statistics of a working tree diff
type DiffSummary struct {
	Insertions int            `json:"insertions"`
	Deletions  int            `json:"deletions"`
	Files      []DiffFileStat `json:"files"`
}

// FileDiff is the unified diff text of a single changed file
type FileDiff struct {
	File string `json:"file"`
	Diff string `json:"diff"`
}

// DiffRequest is the input of diff based tools
type DiffRequest struct {
	RootDir string `json:"root_dir"`
}
