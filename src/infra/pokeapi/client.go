// Package pokeapi is a small client for the public PokeAPI catalogue. It is
// used to seed an empty collection at boot.
package pokeapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"pokedex/src/core/domain"
	"pokedex/src/core/ports"
	"pokedex/src/infra/config"
)

var (
	_ ports.SpeciesSource   = (*Client)(nil)
	_ ports.ExternalService = (*Client)(nil)
)

// Client fetches species from PokeAPI.
type Client struct {
	baseURL     string
	concurrency int
	http        *http.Client
	log         *slog.Logger
}

// New creates a client from the seed configuration.
func New(cfg config.SeedConfig, log *slog.Logger) *Client {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		concurrency: concurrency,
		http:        &http.Client{Timeout: 30 * time.Second},
		log:         log,
	}
}

type namedResource struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type listResponse struct {
	Results []namedResource `json:"results"`
}

type detailResponse struct {
	Name    string `json:"name"`
	Sprites struct {
		FrontDefault *string `json:"front_default"`
		Other        map[string]struct {
			FrontDefault *string `json:"front_default"`
		} `json:"other"`
	} `json:"sprites"`
	Types []struct {
		Type namedResource `json:"type"`
	} `json:"types"`
	Abilities []struct {
		Ability namedResource `json:"ability"`
	} `json:"abilities"`
	Stats []struct {
		BaseStat int           `json:"base_stat"`
		Stat     namedResource `json:"stat"`
	} `json:"stats"`
}

// Health checks that the catalogue answers.
func (c *Client) Health(ctx context.Context) error {
	var out listResponse
	return c.getJSON(ctx, c.baseURL+"/pokemon?limit=1", &out)
}

// FetchSpecies lists the first limit species and fetches their details with
// bounded concurrency. Results keep the catalogue order. A species whose
// detail request fails is logged and left out.
func (c *Client) FetchSpecies(ctx context.Context, limit int) ([]domain.PokemonInput, error) {
	var list listResponse
	if err := c.getJSON(ctx, c.baseURL+"/pokemon?limit="+strconv.Itoa(limit), &list); err != nil {
		return nil, fmt.Errorf("list species: %w", err)
	}

	results := make([]*domain.PokemonInput, len(list.Results))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, res := range list.Results {
		i, res := i, res
		g.Go(func() error {
			var detail detailResponse
			if err := c.getJSON(gctx, res.URL, &detail); err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				c.log.Warn("species detail failed", "name", res.Name, "error", err)
				return nil
			}
			in := toInput(detail)
			results[i] = &in
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]domain.PokemonInput, 0, len(results))
	for _, in := range results {
		if in != nil {
			out = append(out, *in)
		}
	}
	c.log.Info("species fetched", "requested", len(list.Results), "fetched", len(out))
	return out, nil
}

func (c *Client) getJSON(ctx context.Context, rawURL string, dst any) error {
	if _, err := url.ParseRequestURI(rawURL); err != nil {
		return fmt.Errorf("invalid url %q: %w", rawURL, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("GET %s: unexpected status %d", rawURL, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode %s: %w", rawURL, err)
	}
	return nil
}

func toInput(d detailResponse) domain.PokemonInput {
	in := domain.PokemonInput{Name: d.Name}
	if d.Sprites.FrontDefault != nil {
		in.ThumbnailURL = *d.Sprites.FrontDefault
	}
	if art, ok := d.Sprites.Other["official-artwork"]; ok && art.FrontDefault != nil {
		in.LargeImageURL = *art.FrontDefault
	}
	for _, t := range d.Types {
		in.Types = append(in.Types, t.Type.Name)
	}
	for _, a := range d.Abilities {
		in.Abilities = append(in.Abilities, a.Ability.Name)
	}
	for _, s := range d.Stats {
		switch s.Stat.Name {
		case "hp":
			in.Stats.HP = s.BaseStat
		case "attack":
			in.Stats.Attack = s.BaseStat
		case "defense":
			in.Stats.Defense = s.BaseStat
		case "special-attack":
			in.Stats.SpecialAttack = s.BaseStat
		case "special-defense":
			in.Stats.SpecialDefense = s.BaseStat
		case "speed":
			in.Stats.Speed = s.BaseStat
		}
	}
	return in
}
