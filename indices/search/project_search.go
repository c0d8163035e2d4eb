package search

import (
	"context"
	"skillbridge/client/es"
	"skillbridge/indices"

	"github.com/fundwit/go-commons/types"
)

var (
	SearchProjectIDsFunc = SearchProjectIDs

	MaxSearchHits = 1000
)

// SearchProjectIDs runs a free-text query over the project index and returns the matching ids,
// best match first.
func SearchProjectIDs(ctx context.Context, text string) ([]types.ID, error) {
	/*
		{
			"size": 1000,
			"_source": false,
			"query": {
				"multi_match": {"query": "xxx", "fields": ["title^2", "description", "requiredSkills"], "operator": "AND"}
			}
		}
	*/
	query := es.H{
		"size":    MaxSearchHits,
		"_source": false,
		"query": es.H{"multi_match": es.H{
			"query":    text,
			"fields":   []string{"title^2", "description", "requiredSkills"},
			"operator": "AND",
		}},
	}
	r, err := es.SearchFunc(ctx, indices.ProjectIndexName, query)
	if err != nil {
		return nil, err
	}
	return r.Hits.IDs()
}
