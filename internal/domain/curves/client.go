package curves

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nmorabowen/constitutiveRelationshipsApp/internal/domain/materials"
)

// Client talks to the ConstitutiveRelationships curve service.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type curveRequest struct {
	Kind   string             `json:"kind"`
	Name   string             `json:"name"`
	Params map[string]float64 `json:"params"`
	Color  string             `json:"color"`
}

type errorBody struct {
	Error string `json:"error"`
}

// Curve asks the service for m's backbone.
func (c *Client) Curve(ctx context.Context, m materials.Material) (*Curve, error) {
	params := m.Params
	if params == nil {
		params = map[string]float64{}
	}
	body, err := json.Marshal(curveRequest{Kind: string(m.Kind), Name: m.Name, Params: params, Color: m.Color})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/curves", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("curve service: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		var eb errorBody
		if json.Unmarshal(data, &eb) == nil && eb.Error != "" {
			return nil, fmt.Errorf("curve service returned %s: %s", resp.Status, eb.Error)
		}
		return nil, fmt.Errorf("curve service returned %s", resp.Status)
	}

	var out Curve
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode curve: %w", err)
	}
	if err := out.Check(); err != nil {
		return nil, err
	}
	if out.Name == "" {
		out.Name = m.Name
	}
	if out.Color == "" {
		out.Color = m.Color
	}
	return &out, nil
}

// maxParallel bounds concurrent requests to the curve service.
const maxParallel = 4

// Curves fetches one curve per material, in the order of ms. The first
// failure cancels the remaining requests.
func (c *Client) Curves(ctx context.Context, ms []materials.Material) ([]Curve, error) {
	out := make([]Curve, len(ms))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallel)
	for i, m := range ms {
		i, m := i, m
		g.Go(func() error {
			cv, err := c.Curve(gctx, m)
			if err != nil {
				return fmt.Errorf("%s: %w", m.Name, err)
			}
			out[i] = *cv
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
