package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"

	"github.com/fitmirror/fitmirror-backend/internal/db"
	"github.com/fitmirror/fitmirror-backend/internal/logger"
	"github.com/fitmirror/fitmirror-backend/internal/repos"
	"github.com/fitmirror/fitmirror-backend/internal/types"
)

// Seeds the catalog: the size chart, the store's color set and a minimal
// men's/women's clothing set where every garment comes in slim, regular and
// oversize fits. Re-running replaces the catalog wholesale.

type productConfig struct {
	product types.Product
	colors  []string
}

func main() {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Error("Postgres auto migration failed", "error", err)
		os.Exit(1)
	}
	thePG := postgresService.DB()

	sizeRepo := repos.NewSizeRepo(thePG, log)
	colorRepo := repos.NewColorRepo(thePG, log)
	productRepo := repos.NewProductRepo(thePG, log)
	variantRepo := repos.NewProductVariantRepo(thePG, log)

	ctx := context.Background()

	log.Info("Clearing existing catalog...")
	for _, model := range []interface{}{
		&types.Recommendation{},
		&types.Inventory{},
		&types.ProductVariant{},
		&types.Product{},
		&types.Color{},
		&types.Size{},
	} {
		if err := thePG.WithContext(ctx).Where("1 = 1").Delete(model).Error; err != nil {
			log.Error("Failed to clear table", "error", err)
			os.Exit(1)
		}
	}

	log.Info("Seeding size chart...")
	sizes := []*types.Size{
		{Name: "S", ChestMin: 85, ChestMax: 92, WaistMin: 70, WaistMax: 77, ShoulderMin: 40, ShoulderMax: 43, HeightMin: 160, HeightMax: 170, SortOrder: 1},
		{Name: "M", ChestMin: 93, ChestMax: 100, WaistMin: 78, WaistMax: 85, ShoulderMin: 44, ShoulderMax: 47, HeightMin: 168, HeightMax: 178, SortOrder: 2},
		{Name: "L", ChestMin: 101, ChestMax: 108, WaistMin: 86, WaistMax: 93, ShoulderMin: 48, ShoulderMax: 51, HeightMin: 175, HeightMax: 185, SortOrder: 3},
		{Name: "XL", ChestMin: 109, ChestMax: 116, WaistMin: 94, WaistMax: 101, ShoulderMin: 52, ShoulderMax: 55, HeightMin: 180, HeightMax: 190, SortOrder: 4},
		{Name: "XXL", ChestMin: 117, ChestMax: 125, WaistMin: 102, WaistMax: 110, ShoulderMin: 56, ShoulderMax: 60, HeightMin: 185, HeightMax: 195, SortOrder: 5},
	}
	if _, err := sizeRepo.Create(ctx, nil, sizes); err != nil {
		log.Error("Failed to seed sizes", "error", err)
		os.Exit(1)
	}

	log.Info("Seeding colors...")
	colors := []*types.Color{
		{Name: "Crisp White", HexCode: "#FFFFFF", Category: "neutral"},
		{Name: "Sky Blue", HexCode: "#87CEEB", Category: "light"},
		{Name: "Light Gray", HexCode: "#D3D3D3", Category: "neutral"},
		{Name: "Classic Blue Denim", HexCode: "#1560BD", Category: "medium"},
		{Name: "Light Wash Blue", HexCode: "#6B8FAF", Category: "light"},
		{Name: "Dark Indigo", HexCode: "#2B1B72", Category: "dark"},
		{Name: "Classic Black Leather", HexCode: "#1C1C1C", Category: "dark"},
		{Name: "Vintage Brown", HexCode: "#654321", Category: "medium"},
		{Name: "Cognac Tan", HexCode: "#9A463D", Category: "medium"},
		{Name: "Ivory Cream", HexCode: "#FFFFF0", Category: "light"},
		{Name: "Blush Pink", HexCode: "#FFB6C1", Category: "light"},
		{Name: "Soft Lavender", HexCode: "#E6E6FA", Category: "light"},
		{Name: "Coral Rose", HexCode: "#FF7F7F", Category: "warm"},
		{Name: "Sunny Yellow", HexCode: "#FFD700", Category: "warm"},
		{Name: "Ocean Teal", HexCode: "#20B2AA", Category: "cool"},
		{Name: "Charcoal Gray", HexCode: "#36454F", Category: "neutral"},
		{Name: "Camel Beige", HexCode: "#C19A6B", Category: "neutral"},
		{Name: "Navy Classic", HexCode: "#000080", Category: "dark"},
	}
	if _, err := colorRepo.Create(ctx, nil, colors); err != nil {
		log.Error("Failed to seed colors", "error", err)
		os.Exit(1)
	}
	colorByName := make(map[string]*types.Color, len(colors))
	for _, c := range colors {
		colorByName[c.Name] = c
	}

	shirtColors := []string{"Crisp White", "Sky Blue", "Light Gray"}
	denimColors := []string{"Classic Blue Denim", "Light Wash Blue", "Dark Indigo"}
	leatherColors := []string{"Classic Black Leather", "Vintage Brown", "Cognac Tan"}
	blouseColors := []string{"Ivory Cream", "Blush Pink", "Soft Lavender"}
	dressColors := []string{"Coral Rose", "Sunny Yellow", "Ocean Teal"}
	trouserColors := []string{"Charcoal Gray", "Camel Beige", "Navy Classic"}

	configs := []productConfig{
		{types.Product{Name: "Slim Fit Cotton Shirt", Category: "shirt", FitType: types.FitSlim, Gender: types.GenderMen, Price: 54.99, Description: "Modern slim fit cotton shirt for a sleek, tailored look."}, shirtColors},
		{types.Product{Name: "Classic Cotton Shirt", Category: "shirt", FitType: types.FitRegular, Gender: types.GenderMen, Price: 49.99, Description: "A timeless classic cotton shirt perfect for any occasion."}, shirtColors},
		{types.Product{Name: "Relaxed Cotton Shirt", Category: "shirt", FitType: types.FitOversize, Gender: types.GenderMen, Price: 52.99, Description: "Comfortable relaxed fit cotton shirt with extra room for ease of movement."}, shirtColors},
		{types.Product{Name: "Slim Fit Jeans", Category: "pants", FitType: types.FitSlim, Gender: types.GenderMen, Price: 84.99, Description: "Modern slim fit denim jeans with a streamlined silhouette."}, denimColors},
		{types.Product{Name: "Casual Denim Jeans", Category: "pants", FitType: types.FitRegular, Gender: types.GenderMen, Price: 79.99, Description: "Comfortable denim jeans with a classic fit for everyday wear."}, denimColors},
		{types.Product{Name: "Loose Fit Jeans", Category: "pants", FitType: types.FitOversize, Gender: types.GenderMen, Price: 82.99, Description: "Relaxed loose fit jeans with a streetwear-inspired silhouette."}, denimColors},
		{types.Product{Name: "Fitted Leather Jacket", Category: "jacket", FitType: types.FitSlim, Gender: types.GenderMen, Price: 219.99, Description: "Sleek fitted leather jacket with a modern cut."}, leatherColors},
		{types.Product{Name: "Leather Jacket", Category: "jacket", FitType: types.FitRegular, Gender: types.GenderMen, Price: 199.99, Description: "Premium leather jacket with a classic design."}, leatherColors},
		{types.Product{Name: "Oversized Leather Jacket", Category: "jacket", FitType: types.FitOversize, Gender: types.GenderMen, Price: 229.99, Description: "Bold oversized leather jacket with extra room for layering."}, leatherColors},
		{types.Product{Name: "Fitted Blouse", Category: "shirt", FitType: types.FitSlim, Gender: types.GenderWomen, Price: 59.99, Description: "Elegant fitted blouse with a tailored silhouette."}, blouseColors},
		{types.Product{Name: "Elegant Blouse", Category: "shirt", FitType: types.FitRegular, Gender: types.GenderWomen, Price: 54.99, Description: "Sophisticated blouse with delicate details for office and evening wear."}, blouseColors},
		{types.Product{Name: "Oversized Blouse", Category: "shirt", FitType: types.FitOversize, Gender: types.GenderWomen, Price: 56.99, Description: "Flowy oversized blouse with relaxed draping."}, blouseColors},
		{types.Product{Name: "Fitted Summer Dress", Category: "dress", FitType: types.FitSlim, Gender: types.GenderWomen, Price: 94.99, Description: "Form-fitting summer dress that accentuates the silhouette."}, dressColors},
		{types.Product{Name: "Summer Dress", Category: "dress", FitType: types.FitRegular, Gender: types.GenderWomen, Price: 89.99, Description: "Light and breezy summer dress with a flattering silhouette."}, dressColors},
		{types.Product{Name: "Flowy Summer Dress", Category: "dress", FitType: types.FitOversize, Gender: types.GenderWomen, Price: 92.99, Description: "Airy flowy dress with a relaxed, bohemian-inspired fit."}, dressColors},
		{types.Product{Name: "Slim Trousers", Category: "pants", FitType: types.FitSlim, Gender: types.GenderWomen, Price: 79.99, Description: "Tailored slim fit trousers with stretch fabric for all-day comfort."}, trouserColors},
		{types.Product{Name: "High-Waist Trousers", Category: "pants", FitType: types.FitRegular, Gender: types.GenderWomen, Price: 74.99, Description: "Flattering high-waist trousers versatile from office to casual."}, trouserColors},
		{types.Product{Name: "Wide-Leg Trousers", Category: "pants", FitType: types.FitOversize, Gender: types.GenderWomen, Price: 77.99, Description: "Trendy wide-leg trousers with a relaxed, flowing silhouette."}, trouserColors},
	}

	log.Info("Seeding products and variants...")
	variantCount := 0
	// Variants span S, M and L; the larger sizes stay chart-only until stocked.
	variantSizes := sizes[:3]
	for i := range configs {
		product := configs[i].product
		created, err := productRepo.Create(ctx, nil, []*types.Product{&product})
		if err != nil {
			log.Error("Failed to seed product", "name", product.Name, "error", err)
			os.Exit(1)
		}
		productID := created[0].ID

		var variants []*types.ProductVariant
		counter := 1
		for _, size := range variantSizes {
			for _, colorName := range configs[i].colors {
				color, ok := colorByName[colorName]
				if !ok {
					log.Warn("Color not found", "name", colorName)
					continue
				}
				variants = append(variants, &types.ProductVariant{
					ProductID: productID,
					SizeID:    size.ID,
					ColorID:   color.ID,
					SKU:       fmt.Sprintf("%s-%s-%s-%d", productID, size.Name, color.ID, counter),
					Inventory: &types.Inventory{
						Quantity:          10 + rand.Intn(16),
						LowStockThreshold: 5,
					},
				})
				counter++
			}
		}
		if _, err := variantRepo.Create(ctx, nil, variants); err != nil {
			log.Error("Failed to seed variants", "product", product.Name, "error", err)
			os.Exit(1)
		}
		variantCount += len(variants)
	}

	log.Info("Catalog seeded",
		"products", len(configs),
		"sizes", len(sizes),
		"colors", len(colors),
		"variants", variantCount,
	)
}
