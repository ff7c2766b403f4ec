package model

// MarkdownWriteRequest is the input of the markdown writer
type MarkdownWriteRequest struct {
	FilePath string `json:"file_path"`
	Content  string `json:"content"`
	Title    string `json:"title,omitempty"`
}

// Render returns the text to be written, prefixed with a level-1 heading when Title is set
func (r *MarkdownWriteRequest) Render() string {
	if r.Title == "" {
		return r.Content
	}
	return "# " + r.Title + "\n\n" + r.Content
}

// MarkdownWriteResult reports the outcome of a markdown write.
// Failures are carried in Error instead of being returned as Go errors.
type MarkdownWriteResult struct {
	Success       bool   `json:"success"`
	FilePath      string `json:"file_path"`
	Message       string `json:"message,omitempty"`
	ContentLength int    `json:"content_length,omitempty"`
	Error         string `json:"error,omitempty"`
}
