package seeders

import (
	"context"
	"fmt"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/internal/kernel"
	"github.com/shashiranjanraj/storefront/pkg/logger"
)

func init() {
	Register("admin", seedAdmin)
	Register("categories", seedCategories)
	Register("products", seedProducts)
}

var demoCategories = []string{"Lighting", "Furniture", "Kitchen", "Garden"}

type demoProduct struct {
	title    string
	price    float64
	stock    int
	category string
}

var demoProducts = []demoProduct{
	{"Brass Desk Lamp", 49.90, 12, "Lighting"},
	{"Paper Pendant Shade", 24.00, 30, "Lighting"},
	{"Oak Side Table", 129.00, 4, "Furniture"},
	{"Linen Armchair", 349.00, 0, "Furniture"},
	{"Cast Iron Skillet", 39.50, 18, "Kitchen"},
	{"Ceramic Pour Over", 22.00, 9, "Kitchen"},
	{"Terracotta Planter", 15.00, 40, "Garden"},
	{"Folding Garden Chair", 59.00, 7, "Garden"},
}

func seedAdmin(ctx context.Context, s kernel.Services) error {
	created, err := s.Auth.EnsureAdmin(ctx, config.AdminEmail(), config.AdminPassword())
	if err != nil {
		return err
	}
	if created {
		logger.Info("seed: admin account created", "email", config.AdminEmail())
	}
	return nil
}

func seedCategories(ctx context.Context, s kernel.Services) error {
	existing, err := categoryIDs(ctx, s)
	if err != nil {
		return err
	}
	for _, name := range demoCategories {
		if _, ok := existing[name]; ok {
			continue
		}
		if _, err := s.Categories.Create(ctx, models.CategoryInput{Name: name}); err != nil {
			return err
		}
	}
	return nil
}

// seedProducts only fills an empty catalog.
func seedProducts(ctx context.Context, s kernel.Services) error {
	page, err := s.Catalog.ListProducts(ctx, 1, 1)
	if err != nil {
		return err
	}
	if page.Total > 0 {
		return nil
	}

	ids, err := categoryIDs(ctx, s)
	if err != nil {
		return err
	}
	for i, p := range demoProducts {
		category, ok := ids[p.category]
		if !ok {
			return fmt.Errorf("category %q is missing, run the categories seeder first", p.category)
		}
		title, price, stock := p.title, p.price, p.stock
		_, err := s.Catalog.CreateProduct(ctx, models.ProductInput{
			Title:    &title,
			Price:    &price,
			Stock:    &stock,
			Category: &category,
			Images:   []string{fmt.Sprintf("https://picsum.photos/seed/storefront-%d/600/600", i+1)},
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// categoryIDs maps category names to ids.
func categoryIDs(ctx context.Context, s kernel.Services) (map[string]string, error) {
	list, err := s.Categories.List(ctx)
	if err != nil {
		return nil, err
	}
	ids := make(map[string]string, len(list))
	for _, c := range list {
		ids[c.Name] = c.ID
	}
	return ids, nil
}
