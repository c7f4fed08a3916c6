package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-tagger/internal/gallery"
)

var galleryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List identities in the gallery",
	Args:  cobra.NoArgs,
	RunE:  runGalleryList,
}

func init() {
	galleryCmd.AddCommand(galleryListCmd)
}

func runGalleryList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Gallery.Path == "" {
		return fmt.Errorf("no gallery configured, set FACE_TAGGER_GALLERY or gallery.path")
	}

	g, err := gallery.Load(cfg.Gallery.Path)
	if err != nil {
		return err
	}

	if g.Len() == 0 {
		fmt.Println("Gallery is empty.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tDIMENSION")
	fmt.Fprintln(w, "----\t---------")
	for _, entry := range g.Entries() {
		fmt.Fprintf(w, "%s\t%d\n", entry.Name, len(entry.Embedding))
	}
	return w.Flush()
}
