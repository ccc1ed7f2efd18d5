// Package places is a small client for Google Places API (New).
//
// The browser never sees the API key: the server calls Google with
// X-Goog-Api-Key and hands back only the fields the app uses. Any failure
// on Google's side becomes an apperror.Upstream (502) so its details stay
// in the logs; an unknown place id becomes apperror.NotFound.
package places

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sakif/pawpoll/internal/apperror"
	"github.com/sakif/pawpoll/internal/model"
)

const (
	DefaultBaseURL = "https://places.googleapis.com/v1"

	// detailsFieldMask limits the details response (and Google's billing
	// tier) to what a vote or comment snapshot needs.
	detailsFieldMask = "id,displayName,formattedAddress"

	serviceName = "places service"
)

// Client calls the places API. The zero value is not usable; use New.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// New returns a Client for apiKey. baseURL may be empty for Google's
// production endpoint; tests point it at an httptest server.
func New(apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// wire shapes of the Google responses

type localizedText struct {
	Text string `json:"text"`
}

type autocompleteResponse struct {
	Suggestions []struct {
		PlacePrediction *struct {
			PlaceID          string        `json:"placeId"`
			Text             localizedText `json:"text"`
			StructuredFormat struct {
				MainText      localizedText `json:"mainText"`
				SecondaryText localizedText `json:"secondaryText"`
			} `json:"structuredFormat"`
		} `json:"placePrediction"`
	} `json:"suggestions"`
}

type detailsResponse struct {
	ID               string        `json:"id"`
	DisplayName      localizedText `json:"displayName"`
	FormattedAddress string        `json:"formattedAddress"`
}

// Autocomplete returns place suggestions for free-text input. Query
// predictions (non-place hits) are skipped.
func (c *Client) Autocomplete(ctx context.Context, input string) ([]model.PlaceSuggestion, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, apperror.ValidationFailed("input", "input is required")
	}

	body, err := json.Marshal(map[string]string{"input": input})
	if err != nil {
		return nil, fmt.Errorf("places: encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/places:autocomplete", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("places: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var resp autocompleteResponse
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}

	out := make([]model.PlaceSuggestion, 0, len(resp.Suggestions))
	for _, s := range resp.Suggestions {
		p := s.PlacePrediction
		if p == nil || p.PlaceID == "" {
			continue
		}
		out = append(out, model.PlaceSuggestion{
			PlaceID:       p.PlaceID,
			Text:          p.Text.Text,
			MainText:      p.StructuredFormat.MainText.Text,
			SecondaryText: p.StructuredFormat.SecondaryText.Text,
		})
	}
	return out, nil
}

// Details returns the id, name and address of one place.
func (c *Client) Details(ctx context.Context, placeID string) (*model.Place, error) {
	placeID = strings.TrimSpace(placeID)
	if placeID == "" {
		return nil, apperror.ValidationFailed("placeId", "place id is required")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/places/"+url.PathEscape(placeID), nil)
	if err != nil {
		return nil, fmt.Errorf("places: building request: %w", err)
	}
	req.Header.Set("X-Goog-FieldMask", detailsFieldMask)

	var resp detailsResponse
	if err := c.do(req, &resp); err != nil {
		if errors.Is(err, errNotFound) {
			return nil, apperror.NotFound("place", placeID)
		}
		return nil, err
	}

	return &model.Place{
		ID:               resp.ID,
		DisplayName:      resp.DisplayName.Text,
		FormattedAddress: resp.FormattedAddress,
	}, nil
}

var errNotFound = errors.New("places: not found")

// do sends req with the API key and decodes a 200 JSON body into out.
func (c *Client) do(req *http.Request, out any) error {
	if c.apiKey == "" {
		return apperror.Upstream(serviceName, errors.New("GOOGLE_MAPS_API_KEY is not configured"))
	}
	req.Header.Set("X-Goog-Api-Key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return apperror.Upstream(serviceName, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return errNotFound
	case resp.StatusCode != http.StatusOK:
		// Keep a bounded slice of Google's error body for the logs.
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return apperror.Upstream(serviceName,
			fmt.Errorf("status %d: %s", resp.StatusCode, bytes.TrimSpace(msg)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperror.Upstream(serviceName, fmt.Errorf("decoding response: %w", err))
	}
	return nil
}
