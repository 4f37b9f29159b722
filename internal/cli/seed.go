package cli

import (
	"fmt"

	"github.com/gofiber/fiber/v2/log"
	"github.com/spf13/cobra"

	"github.com/bewear-pt/storefront/app/repository"
	"github.com/bewear-pt/storefront/internal/pkg/cache"
	"github.com/bewear-pt/storefront/internal/pkg/catalog"
	"github.com/bewear-pt/storefront/internal/pkg/database"
)

// openCatalog is replaced in tests.
var openCatalog = func() (repository.CatalogRepository, error) {
	db, err := database.Open(database.LoadConfig())
	if err != nil {
		return nil, err
	}
	return repository.NewCatalogRepository(db), nil
}

// forgetCatalogCache is replaced in tests.
var forgetCatalogCache = func() (int, error) {
	return cache.ForgetCatalog(cache.GetClient())
}

// NewSeedCommand creates the seed command that upserts a catalog YAML file.
func NewSeedCommand(_ *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed <catalog.yaml>",
		Short: "Create or update categories, products and variants from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openCatalog()
			if err != nil {
				return err
			}
			stats, err := catalog.SeedFile(repo, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d categories, %d products, %d variants\n", stats.Categories, stats.Products, stats.Variants)

			// Listings expire after the cache TTL, so a Redis outage only warns.
			if dropped, err := forgetCatalogCache(); err != nil {
				log.Warnf("[Seed] Could not clear the catalog cache: %v", err)
			} else if dropped > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d cached catalog pages\n", dropped)
			}
			return nil
		},
	}
}
