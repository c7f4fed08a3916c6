// Package inference talks to an embedding model served over HTTP. The
// server owns the network weights and compute device; this client only
// ships pixel batches and reads back probabilities and embeddings.
package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/kozaktomas/face-tagger/internal/recognize"
)

const defaultBaseURL = "http://localhost:8000"

// ErrUnavailable means the inference server could not be reached or has no
// model loaded. Surfaced at construction so a missing model fails fast.
var ErrUnavailable = errors.New("inference server unavailable")

// ModelInfo describes the served model: its class labels and the tensor
// shape every Infer call must honor.
type ModelInfo struct {
	Name        string   `json:"name"`
	Classes     []string `json:"classes"`
	InputWidth  int      `json:"input_width"`
	InputHeight int      `json:"input_height"`
	BatchSize   int      `json:"batch_size"`
	FeatureDim  int      `json:"feature_dim"`
}

// Client implements recognize.Model over HTTP.
type Client struct {
	baseURL string
	client  *http.Client
	info    ModelInfo
}

type inferRegion struct {
	Width  int       `json:"width"`
	Height int       `json:"height"`
	Pixels []float32 `json:"pixels"`
}

type inferRequest struct {
	Regions []inferRegion `json:"regions"`
}

type inferResponse struct {
	Probabilities [][]float32 `json:"probabilities"`
	Features      [][]float32 `json:"features"`
}

// NewClient connects to the inference server and fetches the model
// description. An unreachable server or a missing model fails construction
// with ErrUnavailable.
func NewClient(ctx context.Context, baseURL string) (*Client, error) {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/model", nil)
	if err != nil {
		return nil, fmt.Errorf("create model info request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read model info: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, &c.info); err != nil {
		return nil, fmt.Errorf("parse model info: %w", err)
	}
	if c.info.BatchSize < 1 || c.info.InputWidth < 1 || c.info.InputHeight < 1 {
		return nil, fmt.Errorf("%w: server reported invalid model shape %+v", ErrUnavailable, c.info)
	}

	log.Debugf("connected to inference server %s: model %q, batch %d, input %dx%d",
		c.baseURL, c.info.Name, c.info.BatchSize, c.info.InputWidth, c.info.InputHeight)
	return c, nil
}

// Info returns the served model's description.
func (c *Client) Info() ModelInfo {
	return c.info
}

// Infer runs one batch through the server. The batch must hold exactly
// BatchSize regions of the model's input shape; violations are reported
// before any network traffic. Failures are not retried.
func (c *Client) Infer(batch []recognize.Region) ([][]float32, [][]float32, error) {
	if len(batch) != c.info.BatchSize {
		return nil, nil, fmt.Errorf("%w: got %d regions, model requires %d",
			recognize.ErrShapeMismatch, len(batch), c.info.BatchSize)
	}

	regions := make([]inferRegion, len(batch))
	for i, region := range batch {
		if region.Width != c.info.InputWidth || region.Height != c.info.InputHeight {
			return nil, nil, fmt.Errorf("%w: region %d is %dx%d, model requires %dx%d",
				recognize.ErrShapeMismatch, i, region.Width, region.Height,
				c.info.InputWidth, c.info.InputHeight)
		}
		regions[i] = inferRegion{
			Width:  region.Width,
			Height: region.Height,
			Pixels: region.Pix,
		}
	}

	payload, err := json.Marshal(inferRequest{Regions: regions})
	if err != nil {
		return nil, nil, fmt.Errorf("encode batch: %w", err)
	}

	// No timeout here: a long-running forward pass runs to completion.
	// Callers wanting deadlines wrap the whole detect call externally.
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, c.baseURL+"/infer", bytes.NewReader(payload))
	if err != nil {
		return nil, nil, fmt.Errorf("create infer request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", recognize.ErrInference, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: read response: %v", recognize.ErrInference, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("%w: status %d: %s", recognize.ErrInference, resp.StatusCode, string(body))
	}

	var out inferResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, nil, fmt.Errorf("%w: parse response: %v", recognize.ErrInference, err)
	}
	if len(out.Probabilities) != len(batch) || len(out.Features) != len(batch) {
		return nil, nil, fmt.Errorf("%w: server returned %d probabilities and %d features for %d regions",
			recognize.ErrInference, len(out.Probabilities), len(out.Features), len(batch))
	}

	return out.Probabilities, out.Features, nil
}
