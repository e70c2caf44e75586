package models

// Preview is the rendered content of a document.
// Err is set when the content could not be shown; FallbackURL always points
// at the file so it can be opened directly.
type Preview struct {
	Document    Document
	Viewer      string
	FallbackURL string
	Text        string     // text and json viewers
	Rows        [][]string // table viewer
	Err         error
}

// External reports whether the content must be opened outside the terminal
func (p *Preview) External() bool {
	return p.Err == nil && p.Text == "" && p.Rows == nil
}
