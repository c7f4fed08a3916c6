package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-tagger/internal/gallery"
	"github.com/kozaktomas/face-tagger/internal/inference"
	"github.com/kozaktomas/face-tagger/internal/recognize"
)

var galleryBuildCmd = &cobra.Command{
	Use:   "build <dir>",
	Short: "Build a gallery from a directory of labeled face crops",
	Long: `Build a reference gallery from a directory of face crops, one image
per identity, named <identity>.jpg (or .png/.bmp). Every crop is run through
the embedding model and the resulting embedding is stored under the
identity name.

Examples:
  # Build gallery.json from ./people/*.jpg
  face-tagger gallery build ./people --out gallery.json`,
	Args: cobra.ExactArgs(1),
	RunE: runGalleryBuild,
}

func init() {
	galleryCmd.AddCommand(galleryBuildCmd)

	galleryBuildCmd.Flags().String("out", "gallery.json", "Output gallery file")
}

func runGalleryBuild(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	out := mustGetString(cmd, "out")

	ctx := context.Background()
	client, err := inference.NewClient(ctx, cfg.Model.URL)
	if err != nil {
		return err
	}
	info := client.Info()

	paths, err := listCrops(args[0])
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no face crops found in %s", args[0])
	}

	bar := progressbar.NewOptions(len(paths),
		progressbar.OptionSetDescription("Reading crops"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionFullWidth(),
	)

	names := make([]string, 0, len(paths))
	regions := make([]recognize.Region, 0, len(paths))
	for _, path := range paths {
		img, err := decodeImage(path)
		if err != nil {
			return err
		}
		names = append(names, strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
		regions = append(regions, recognize.RegionFromImage(img, nil, info.InputWidth, info.InputHeight))
		_ = bar.Add(1)
	}
	fmt.Println()

	rec := recognize.New(client, nil, info.Classes, recognize.Options{
		BatchSize:   info.BatchSize,
		InputWidth:  info.InputWidth,
		InputHeight: info.InputHeight,
	})

	fmt.Printf("Extracting embeddings for %d identities...\n", len(regions))
	_, features, err := rec.ExtractFeatures(regions)
	if err != nil {
		return err
	}

	g := gallery.New()
	for i, name := range names {
		g.Add(name, features[i])
	}
	if err := g.Save(out); err != nil {
		return err
	}

	fmt.Printf("Saved %d identities to %s\n", g.Len(), out)
	return nil
}

// listCrops returns image files in dir, sorted by name.
func listCrops(dir string) ([]string, error) {
	var paths []string
	for _, pattern := range []string{"*.jpg", "*.jpeg", "*.png", "*.bmp"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("list crops in %s: %w", dir, err)
		}
		paths = append(paths, matches...)
	}
	sort.Strings(paths)
	return paths, nil
}
