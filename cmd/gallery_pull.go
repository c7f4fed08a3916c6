package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-tagger/internal/gallery"
)

var galleryPullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Pull a gallery from PostgreSQL",
	Long: `Pull identity embeddings from a PostgreSQL table with pgvector and
save them as a local gallery file. The table needs (name text, embedding
vector) columns; the table name comes from FACE_TAGGER_DB_TABLE.`,
	Args: cobra.NoArgs,
	RunE: runGalleryPull,
}

func init() {
	galleryCmd.AddCommand(galleryPullCmd)

	galleryPullCmd.Flags().String("out", "gallery.json", "Output gallery file")
}

func runGalleryPull(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Database.URL == "" {
		return fmt.Errorf("no database configured, set DATABASE_URL")
	}

	ctx := context.Background()
	db, err := gallery.OpenPostgres(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer db.Close()

	g, err := gallery.LoadPostgres(ctx, db, cfg.Database.Table)
	if err != nil {
		return err
	}

	out := mustGetString(cmd, "out")
	if err := g.Save(out); err != nil {
		return err
	}

	fmt.Printf("Pulled %d identities from table %s into %s\n", g.Len(), cfg.Database.Table, out)
	return nil
}
