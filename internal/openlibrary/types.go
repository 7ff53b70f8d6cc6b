package openlibrary

import (
	"bytes"
	"encoding/json"
)

// SearchResponse matches search.json.
type SearchResponse struct {
	NumFound int         `json:"numFound"`
	Start    int         `json:"start"`
	Docs     []SearchDoc `json:"docs"`
}

// SearchDoc is one work in a search response.
type SearchDoc struct {
	Key                 string   `json:"key"` // "/works/OL45804W"
	Title               string   `json:"title"`
	AuthorNames         []string `json:"author_name"`
	AuthorKeys          []string `json:"author_key"`
	CoverEditionKey     string   `json:"cover_edition_key"`
	CoverID             int64    `json:"cover_i"`
	RatingsAverage      *float64 `json:"ratings_average"`
	RatingsCount        *int     `json:"ratings_count"`
	FirstPublishYear    *int     `json:"first_publish_year"`
	Languages           []string `json:"language"`
	NumberOfPagesMedian *int     `json:"number_of_pages_median"`
	EditionCount        int      `json:"edition_count"`
}

// Work matches works/{id}.json. Only the fields this service reads are kept.
type Work struct {
	Key         string      `json:"key"`
	Title       string      `json:"title"`
	Description Description `json:"description"`
	Covers      []int64     `json:"covers"`
}

// Description is a work description. OpenLibrary sends it either as a plain
// string or as {"type": "/type/text", "value": "..."}.
type Description struct {
	Value *string
}

func (d *Description) UnmarshalJSON(data []byte) error {
	d.Value = nil
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		d.Value = &s
	case '{':
		var obj struct {
			Value *string `json:"value"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		d.Value = obj.Value
	}
	// null, numbers, arrays: no description
	return nil
}

func (d Description) MarshalJSON() ([]byte, error) {
	if d.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*d.Value)
}
