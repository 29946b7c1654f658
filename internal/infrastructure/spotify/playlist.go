package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ASongADay/internal/catalog"
	"ASongADay/internal/config"
	"ASongADay/internal/domain"
)

const playlistPageLimit = 100

// PlaylistCatalog lists the tracks of one playlist using the client
// credentials grant.
type PlaylistCatalog struct {
	accountsURL  string
	apiURL       string
	playlistID   string
	clientID     string
	clientSecret string
	http         *http.Client
}

var _ catalog.Strategy = (*PlaylistCatalog)(nil)

// NewPlaylistCatalog builds a catalog from configuration.
func NewPlaylistCatalog(cfg config.SpotifyConfig, httpClient *http.Client) *PlaylistCatalog {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &PlaylistCatalog{
		accountsURL:  strings.TrimSuffix(cfg.AccountsURL, "/"),
		apiURL:       strings.TrimSuffix(cfg.APIURL, "/"),
		playlistID:   cfg.PlaylistID,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		http:         httpClient,
	}
}

// Name identifies the strategy inside the registry.
func (p *PlaylistCatalog) Name() string {
	return config.CatalogSpotify
}

type playlistPage struct {
	Items []struct {
		AddedAt string `json:"added_at"`
		Track   *struct {
			Name    string `json:"name"`
			URI     string `json:"uri"`
			Artists []struct {
				Name string `json:"name"`
			} `json:"artists"`
			Album struct {
				Name string `json:"name"`
			} `json:"album"`
			ExternalURLs struct {
				Spotify string `json:"spotify"`
			} `json:"external_urls"`
		} `json:"track"`
	} `json:"items"`
	Next string `json:"next"`
}

// Fetch returns every track of the playlist, following the next links.
func (p *PlaylistCatalog) Fetch(ctx context.Context) ([]domain.Candidate, error) {
	token, err := p.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("limit", fmt.Sprint(playlistPageLimit))
	next := fmt.Sprintf("%s/v1/playlists/%s/tracks?%s", p.apiURL, url.PathEscape(p.playlistID), query.Encode())

	var candidates []domain.Candidate
	for next != "" {
		var page playlistPage
		if err := p.get(ctx, next, token, &page); err != nil {
			return nil, err
		}

		for _, item := range page.Items {
			if item.Track == nil || item.Track.Name == "" {
				continue
			}
			artists := make([]string, 0, len(item.Track.Artists))
			for _, a := range item.Track.Artists {
				artists = append(artists, a.Name)
			}
			candidates = append(candidates, domain.Candidate{
				Title:        item.Track.Name,
				Contributors: artists,
				Collection:   item.Track.Album.Name,
				ID:           item.Track.URI,
				URL:          item.Track.ExternalURLs.Spotify,
				Timestamp:    item.AddedAt,
			})
		}
		next = page.Next
	}

	return candidates, nil
}

func (p *PlaylistCatalog) accessToken(ctx context.Context) (string, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.accountsURL+"/api/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(p.clientID, p.clientSecret)

	var tok struct {
		AccessToken string `json:"access_token"`
	}
	if err := p.do(req, "catalog-token", &tok); err != nil {
		return "", err
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("catalog token response without access_token")
	}
	return tok.AccessToken, nil
}

func (p *PlaylistCatalog) get(ctx context.Context, pageURL, token string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return p.do(req, "catalog", v)
}

func (p *PlaylistCatalog) do(req *http.Request, endpoint string, v any) error {
	resp, err := p.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s request: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &domain.APIError{Endpoint: endpoint, Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}
