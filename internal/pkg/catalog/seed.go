// Package catalog loads the product catalog from a YAML file into the database.
package catalog

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"github.com/gofiber/fiber/v2/log"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"github.com/bewear-pt/storefront/app/models"
	"github.com/bewear-pt/storefront/app/repository"
	"github.com/bewear-pt/storefront/internal/pkg/money"
)

// File is the YAML layout of a catalog seed.
type File struct {
	Categories []Category `yaml:"categories"`
}

type Category struct {
	Name     string    `yaml:"name"`
	Slug     string    `yaml:"slug"`
	Products []Product `yaml:"products"`
}

type Product struct {
	Name        string    `yaml:"name"`
	Slug        string    `yaml:"slug"`
	Description string    `yaml:"description"`
	Variants    []Variant `yaml:"variants"`
}

type Variant struct {
	Name  string `yaml:"name"`
	Slug  string `yaml:"slug"`
	Color string `yaml:"color"`
	// Price in euros, "19.90" or "19,90".
	Price string `yaml:"price"`
	Image string `yaml:"image"`
}

// Parse decodes a seed and converts it into models with slugs and prices filled in.
func Parse(r io.Reader) ([]models.Category, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("catalog seed is empty")
		}
		return nil, fmt.Errorf("decode catalog seed: %w", err)
	}

	out := make([]models.Category, 0, len(f.Categories))
	for _, c := range f.Categories {
		if strings.TrimSpace(c.Name) == "" {
			return nil, errors.New("category without name")
		}
		category := models.Category{Name: strings.TrimSpace(c.Name), Slug: slugOr(c.Slug, c.Name)}
		for _, p := range c.Products {
			if strings.TrimSpace(p.Name) == "" {
				return nil, fmt.Errorf("category %s: product without name", category.Slug)
			}
			product := models.Product{
				Name:        strings.TrimSpace(p.Name),
				Slug:        slugOr(p.Slug, p.Name),
				Description: strings.TrimSpace(p.Description),
			}
			for _, v := range p.Variants {
				cents, err := money.ParseEUR(v.Price)
				if err != nil {
					return nil, fmt.Errorf("product %s: %w", product.Slug, err)
				}
				name := strings.TrimSpace(v.Name)
				if name == "" {
					name = product.Name
				}
				product.Variants = append(product.Variants, models.ProductVariant{
					Name:         name,
					Slug:         slugOr(v.Slug, product.Slug+" "+name),
					Color:        strings.TrimSpace(v.Color),
					PriceInCents: cents,
					ImageURL:     strings.TrimSpace(v.Image),
				})
			}
			category.Products = append(category.Products, product)
		}
		out = append(out, category)
	}
	return out, nil
}

// Stats counts what a seed run wrote.
type Stats struct {
	Categories int
	Products   int
	Variants   int
}

// Seed upserts every category of the seed by slug. Running it twice is a no-op.
func Seed(repo repository.CatalogRepository, categories []models.Category) (Stats, error) {
	var stats Stats
	for i := range categories {
		c := &categories[i]
		if err := repo.UpsertCategory(c); err != nil {
			return stats, fmt.Errorf("upsert category %s: %w", c.Slug, err)
		}
		stats.Categories++
		for _, p := range c.Products {
			stats.Products++
			stats.Variants += len(p.Variants)
		}
		log.Infof("[Catalog] Seeded category %s (%d products)", c.Slug, len(c.Products))
	}
	return stats, nil
}

// SeedFile parses and seeds the file at path.
func SeedFile(repo repository.CatalogRepository, path string) (Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return Stats{}, err
	}
	defer f.Close()

	categories, err := Parse(f)
	if err != nil {
		return Stats{}, err
	}
	return Seed(repo, categories)
}

func slugOr(slug, name string) string {
	if s := strings.TrimSpace(slug); s != "" {
		return s
	}
	return Slugify(name)
}

// Slugify lowercases s, strips accents and joins words with dashes,
// e.g. "Camisola Básica" becomes "camisola-basica".
func Slugify(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	plain, _, err := transform.String(t, s)
	if err != nil {
		plain = s
	}

	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(plain) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
