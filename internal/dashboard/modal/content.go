// Package modal routes every dialog request through the one shared dialog.
package modal

// Content is the active dialog payload. Exactly one variant is active at a
// time; a new request replaces the previous one.
type Content interface {
	kind() string
}

// RatingConfirmation acknowledges a saved rating.
type RatingConfirmation struct {
	MovieID int
	Rating  int
}

// LocalExplanation explains a personalised pick by local id.
type LocalExplanation struct {
	MovieID int
}

// CatalogExplanation explains a catalogue movie by external id.
type CatalogExplanation struct {
	TMDBID int
	Title  string
}

// TrailerSearch links to an external trailer search.
type TrailerSearch struct {
	Title string
}

// RagAnswer answers a free-text question.
type RagAnswer struct {
	Question string
}

func (RatingConfirmation) kind() string { return "rating_confirmation" }
func (LocalExplanation) kind() string { return "local_explanation" }
func (CatalogExplanation) kind() string { return "catalog_explanation" }
func (TrailerSearch) kind() string { return "trailer_search" }
func (RagAnswer) kind() string { return "rag_answer" }

// Kind names the variant for logging.
func Kind(c Content) string {
	if c == nil {
		return ""
	}
	return c.kind()
}
