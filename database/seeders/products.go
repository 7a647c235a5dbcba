package seeders

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
)

// DemoCatalogSize is how many products SeedCatalog creates.
const DemoCatalogSize = 20

var (
	demoCategories = []string{"Shoes", "Perfumes", "Trousers", "Shirts", "T-Shirts", "Accessories"}
	demoSizes      = []string{"S", "M", "L", "XL"}
	demoColors     = []string{"black", "white", "navy", "olive", "sand", "burgundy", "grey"}
	demoAdjectives = []string{"Classic", "Rustic", "Sleek", "Handmade", "Refined", "Ergonomic", "Modern"}
	demoMaterials  = []string{"Cotton", "Leather", "Linen", "Wool", "Suede", "Denim"}
)

func init() {
	Register("products", SeedCatalog)
}

// SeedCatalog fills an empty catalog with deterministic demo products.
// A catalog that already has products is left alone.
func SeedCatalog(ctx context.Context, store *repositories.Store) error {
	n, err := store.Products.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	for i := 0; i < DemoCatalogSize; i++ {
		p := demoProduct(i)
		if err := store.Products.Create(ctx, &p); err != nil {
			return fmt.Errorf("create %q: %w", p.Name, err)
		}
	}
	return nil
}

func demoProduct(i int) models.Product {
	category := demoCategories[i%len(demoCategories)]
	name := fmt.Sprintf("%s %s %s",
		demoAdjectives[i%len(demoAdjectives)],
		demoMaterials[i%len(demoMaterials)],
		category,
	)

	return models.Product{
		Name:        name,
		Description: fmt.Sprintf("The %s, cut for everyday wear.", name),
		Price:       decimal.New(int64(1999+i*350), -2),
		Category:    category,
		Images: []string{
			fmt.Sprintf("https://picsum.photos/seed/storefront-%d-a/640/480", i),
			fmt.Sprintf("https://picsum.photos/seed/storefront-%d-b/640/480", i),
		},
		Rating:  float64(1 + i%5),
		Reviews: []models.Review{},
		Sizes:   append([]string(nil), demoSizes...),
		Colors: []string{
			demoColors[i%len(demoColors)],
			demoColors[(i+2)%len(demoColors)],
			demoColors[(i+4)%len(demoColors)],
		},
		InStock: i%4 != 3,
	}
}
