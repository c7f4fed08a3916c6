package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	_ "golang.org/x/image/bmp"

	"github.com/kozaktomas/face-tagger/internal/gallery"
	"github.com/kozaktomas/face-tagger/internal/inference"
	"github.com/kozaktomas/face-tagger/internal/recognize"
)

var identifyCmd = &cobra.Command{
	Use:   "identify <image>",
	Short: "Identify faces in an image",
	Long: `Identify faces in an image against the configured gallery.

Face locations come from a detector output file (--faces, JSON array of
{"bbox": [x1, y1, x2, y2]} objects). Without one, the whole image is treated
as a single face crop.

Without a gallery the command falls back to ranking the model's own class
probabilities and prints the top K classes per face.

Examples:
  # Identify pre-detected faces
  face-tagger identify photo.jpg --faces detections.json

  # Treat the image as one face crop, print JSON
  face-tagger identify crop.jpg --json`,
	Args: cobra.ExactArgs(1),
	RunE: runIdentify,
}

func init() {
	rootCmd.AddCommand(identifyCmd)

	identifyCmd.Flags().String("faces", "", "JSON file with detected face bounding boxes")
	identifyCmd.Flags().Float64("threshold", -1, "Override the configured score threshold")
	identifyCmd.Flags().Bool("json", false, "Print the tagged faces as JSON")
}

func runIdentify(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if th := mustGetFloat64(cmd, "threshold"); th >= 0 {
		cfg.Recognizer.ScoreThreshold = th
	}

	img, err := decodeImage(args[0])
	if err != nil {
		return err
	}

	faces, err := loadFaces(mustGetString(cmd, "faces"), img)
	if err != nil {
		return err
	}

	ctx := context.Background()
	client, err := inference.NewClient(ctx, cfg.Model.URL)
	if err != nil {
		return err
	}

	var g *gallery.Gallery
	if cfg.Gallery.Path != "" {
		g, err = gallery.Load(cfg.Gallery.Path)
		if err != nil {
			return err
		}
	} else {
		fmt.Fprintln(os.Stderr, "No gallery configured, ranking model classes instead.")
	}

	info := client.Info()
	rec := recognize.New(client, g, info.Classes, recognize.Options{
		BatchSize:      info.BatchSize,
		InputWidth:     info.InputWidth,
		InputHeight:    info.InputHeight,
		ScoreThreshold: cfg.Recognizer.ScoreThreshold,
		TopK:           cfg.Recognizer.TopK,
	})

	result, err := rec.Detect(img, faces)
	if err != nil {
		return err
	}
	faces = rec.TagFaces(faces, result)

	if mustGetBool(cmd, "json") {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(faces)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FACE\tNAME\tSCORE\tBEST CANDIDATES")
	fmt.Fprintln(w, "----\t----\t-----\t---------------")
	for i, face := range faces {
		name := face.Name
		score := fmt.Sprintf("%.3f", face.Score)
		if name == "" {
			name = "(unidentified)"
			score = "-"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", i, name, score, formatCandidates(result.Candidates[i], 3))
	}
	return w.Flush()
}

func decodeImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode image %s: %w", path, err)
	}
	return img, nil
}

// loadFaces reads detector output from path, or falls back to a single
// whole-image face when no path is given.
func loadFaces(path string, img image.Image) ([]recognize.Face, error) {
	if path == "" {
		b := img.Bounds()
		return []recognize.Face{{
			BBox: []float64{float64(b.Min.X), float64(b.Min.Y), float64(b.Max.X), float64(b.Max.Y)},
		}}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read faces file: %w", err)
	}
	var faces []recognize.Face
	if err := json.Unmarshal(data, &faces); err != nil {
		return nil, fmt.Errorf("parse faces file %s: %w", path, err)
	}
	return faces, nil
}

func formatCandidates(candidates []recognize.Candidate, n int) string {
	if len(candidates) < n {
		n = len(candidates)
	}
	out := ""
	for i := 0; i < n; i++ {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("%s=%.3f", candidates[i].Name, candidates[i].Score)
	}
	return out
}
