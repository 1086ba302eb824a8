// Package anilist implements the metadata-catalog port against the AniList
// GraphQL API. The catalog is treated as unreliable: one bounded call per
// lookup, no retries, the caller degrades on any failure.
package anilist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/avolkov/mediaseek/internal/core/domain"
)

const DefaultEndpoint = "https://graphql.anilist.co"

const titleSearchQuery = `query ($search: String, $perPage: Int) {
  Page(page: 1, perPage: $perPage) {
    media(search: $search, type: ANIME) {
      title {
        romaji
        english
        native
      }
    }
  }
}`

type Client struct {
	endpoint   string
	httpClient *http.Client
}

func New(endpoint string, timeout time.Duration) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		endpoint:   strings.TrimRight(endpoint, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// SearchTitles returns up to limit catalog entries whose titles match term.
func (c *Client) SearchTitles(ctx context.Context, term string, limit int) ([]domain.CandidateTitle, error) {
	if limit <= 0 {
		limit = 10
	}

	payload := map[string]any{
		"query": titleSearchQuery,
		"variables": map[string]any{
			"search":  term,
			"perPage": limit,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal catalog request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create catalog request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, formatCatalogHTTPError(resp)
	}

	var response struct {
		Data struct {
			Page struct {
				Media []struct {
					Title struct {
						Romaji  string `json:"romaji"`
						English string `json:"english"`
						Native  string `json:"native"`
					} `json:"title"`
				} `json:"media"`
			} `json:"Page"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("decode catalog response: %w", err)
	}

	titles := make([]domain.CandidateTitle, 0, len(response.Data.Page.Media))
	for _, media := range response.Data.Page.Media {
		titles = append(titles, domain.CandidateTitle{
			Romaji:  media.Title.Romaji,
			English: media.Title.English,
			Native:  media.Title.Native,
		})
	}
	return titles, nil
}

func formatCatalogHTTPError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		return fmt.Errorf("catalog status: %s", resp.Status)
	}
	return fmt.Errorf("catalog status: %s: %s", resp.Status, msg)
}
