package inference

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kozaktomas/face-tagger/internal/recognize"
)

func testServer(t *testing.T, inferStatus int) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/model", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ModelInfo{
			Name:        "test-model",
			Classes:     []string{"ant", "bee"},
			InputWidth:  8,
			InputHeight: 8,
			BatchSize:   2,
			FeatureDim:  2,
		})
	})
	mux.HandleFunc("/infer", func(w http.ResponseWriter, r *http.Request) {
		if inferStatus != http.StatusOK {
			http.Error(w, "inference failed", inferStatus)
			return
		}
		var req inferRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		resp := inferResponse{}
		for _, region := range req.Regions {
			resp.Probabilities = append(resp.Probabilities, []float32{0.7, 0.3})
			resp.Features = append(resp.Features, []float32{region.Pixels[0], 1})
		}
		json.NewEncoder(w).Encode(resp)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func batchOf(n int, v float32) []recognize.Region {
	batch := make([]recognize.Region, n)
	for i := range batch {
		batch[i] = recognize.ZeroRegion(8, 8)
		for j := range batch[i].Pix {
			batch[i].Pix[j] = v
		}
	}
	return batch
}

func TestNewClientFetchesModelInfo(t *testing.T) {
	server := testServer(t, http.StatusOK)

	client, err := NewClient(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("NewClient() error: %v", err)
	}

	info := client.Info()
	if info.Name != "test-model" || info.BatchSize != 2 || info.InputWidth != 8 {
		t.Errorf("unexpected model info: %+v", info)
	}
}

func TestNewClientUnavailable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close() // connection refused

	_, err := NewClient(context.Background(), server.URL)
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("NewClient() returned %v, want ErrUnavailable", err)
	}
}

func TestNewClientMissingModel(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(server.Close)

	_, err := NewClient(context.Background(), server.URL)
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("NewClient() returned %v, want ErrUnavailable", err)
	}
}

func TestInfer(t *testing.T) {
	server := testServer(t, http.StatusOK)
	client, err := NewClient(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("NewClient() error: %v", err)
	}

	probs, feats, err := client.Infer(batchOf(2, 42))
	if err != nil {
		t.Fatalf("Infer() error: %v", err)
	}
	if len(probs) != 2 || len(feats) != 2 {
		t.Fatalf("Infer() returned %d probs and %d features, want 2 each", len(probs), len(feats))
	}
	if feats[0][0] != 42 {
		t.Errorf("feature derives from %v, want 42", feats[0][0])
	}
}

func TestInferShapeValidation(t *testing.T) {
	server := testServer(t, http.StatusOK)
	client, err := NewClient(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("NewClient() error: %v", err)
	}

	// Wrong batch size.
	_, _, err = client.Infer(batchOf(3, 1))
	if !errors.Is(err, recognize.ErrShapeMismatch) {
		t.Errorf("oversized batch returned %v, want ErrShapeMismatch", err)
	}

	// Wrong region dimensions.
	batch := []recognize.Region{recognize.ZeroRegion(4, 4), recognize.ZeroRegion(8, 8)}
	_, _, err = client.Infer(batch)
	if !errors.Is(err, recognize.ErrShapeMismatch) {
		t.Errorf("mis-shaped region returned %v, want ErrShapeMismatch", err)
	}
}

func TestInferServerError(t *testing.T) {
	server := testServer(t, http.StatusInternalServerError)
	client, err := NewClient(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("NewClient() error: %v", err)
	}

	_, _, err = client.Infer(batchOf(2, 1))
	if !errors.Is(err, recognize.ErrInference) {
		t.Errorf("server failure returned %v, want ErrInference", err)
	}
}

func TestClientSatisfiesModelInterface(t *testing.T) {
	var _ recognize.Model = (*Client)(nil)
}
