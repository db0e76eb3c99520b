package repository

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fekuna/omnipos-marketplace-service/internal/pkg/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// elasticStub answers the info and search endpoints with total matching
// documents of which only the listed ids are returned.
func elasticStub(t *testing.T, total int, ids ...string) *ESRepository {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		if strings.HasSuffix(r.URL.Path, "/_search") {
			hits := make([]string, len(ids))
			for i, id := range ids {
				hits[i] = fmt.Sprintf(`{"_id": %q, "_score": 1}`, id)
			}
			fmt.Fprintf(w, `{"hits": {"total": {"value": %d, "relation": "eq"}, "hits": [%s]}}`,
				total, strings.Join(hits, ","))
			return
		}
		fmt.Fprint(w, `{"version": {"number": "8.19.0", "build_flavor": "default"}, "tagline": "You Know, for Search"}`)
	}))
	t.Cleanup(srv.Close)

	client, err := search.NewClient(&search.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return NewESRepository(client, "products")
}

func TestMatchIDs(t *testing.T) {
	ids, complete, err := elasticStub(t, 2, "a", "b").MatchIDs(context.Background(), "pump")
	require.NoError(t, err)
	assert.True(t, complete)
	assert.Equal(t, []string{"a", "b"}, ids)

	ids, complete, err = elasticStub(t, 1500, "a", "b").MatchIDs(context.Background(), "pump")
	require.NoError(t, err)
	assert.False(t, complete, "more documents match than were returned")
	assert.Len(t, ids, 2)
}
