package notes

import (
	"strings"

	"github.com/dmitrijs2005/gophnotes/internal/client/models"
)

// Filter returns the notes whose title or content contains term, ignoring
// case, in collection order. An empty term matches everything. The result
// never aliases collection.
func Filter(collection []models.Note, term string) []models.Note {
	out := make([]models.Note, 0, len(collection))
	needle := strings.ToLower(term)
	for _, n := range collection {
		if needle == "" ||
			strings.Contains(strings.ToLower(n.Title), needle) ||
			strings.Contains(strings.ToLower(n.Content), needle) {
			out = append(out, n)
		}
	}
	return out
}
