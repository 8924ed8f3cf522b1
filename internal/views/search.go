package views

import "fmt"

// searchView matches the term literally against title and authors. An empty
// term runs no query.
func searchView(req Request) *Payload {
	p := newPayload(Search, "🔍 Search Books by Name or Author")
	if req.Query == "" {
		p.message(LevelInfo, "Enter book title or author name.", "")
		return p
	}

	found, err := datasetOf(req).FilterContains([]string{ColTitle, ColAuthors}, req.Query)
	if err != nil {
		p.fail(err)
		return p
	}
	p.markdown(fmt.Sprintf("Results for: **%s**", req.Query))
	p.table("", found.Limit(searchLimit))
	return p
}
