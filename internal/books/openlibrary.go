package books

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Metadata is what the lookup service promises back: enough to display a
// book and nothing more.
type Metadata struct {
	Title          string
	Author         string
	CoverURL       string
	FirstPublished int
}

// MetadataClient looks up book metadata from the Open Library search API.
type MetadataClient struct {
	baseURL string
	client  *http.Client
}

// NewMetadataClient creates a client for the given base URL
// (e.g. "https://openlibrary.org").
func NewMetadataClient(baseURL string) *MetadataClient {
	return &MetadataClient{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type searchResponse struct {
	Docs []struct {
		Title            string   `json:"title"`
		AuthorName       []string `json:"author_name"`
		CoverID          int      `json:"cover_i"`
		FirstPublishYear int      `json:"first_publish_year"`
	} `json:"docs"`
}

// Lookup returns metadata for the best match on title (and author, if given).
// A miss is an error; callers that can proceed without metadata should treat
// it as optional.
func (c *MetadataClient) Lookup(ctx context.Context, title, author string) (*Metadata, error) {
	params := url.Values{}
	params.Set("title", title)
	if author != "" {
		params.Set("author", author)
	}
	params.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search.json?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("metadata lookup failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("metadata service returned status %d", resp.StatusCode)
	}

	var search searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&search); err != nil {
		return nil, fmt.Errorf("failed to decode metadata response: %w", err)
	}
	if len(search.Docs) == 0 {
		return nil, fmt.Errorf("no match for %q", title)
	}

	doc := search.Docs[0]
	meta := &Metadata{
		Title:          doc.Title,
		FirstPublished: doc.FirstPublishYear,
	}
	if len(doc.AuthorName) > 0 {
		meta.Author = doc.AuthorName[0]
	}
	if doc.CoverID != 0 {
		meta.CoverURL = fmt.Sprintf("https://covers.openlibrary.org/b/id/%d-M.jpg", doc.CoverID)
	}
	return meta, nil
}
