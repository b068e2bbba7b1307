package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/rs/zerolog"

	"telegram-storefront-bot/internal/config"
	pg "telegram-storefront-bot/internal/infra/db/postgres"
	"telegram-storefront-bot/internal/usecase"

	"telegram-storefront-bot/internal/domain/model"
)

// Seeds a small demo catalog: two locations, two manufacturers, a couple of
// categories and localized products with opening stock.
func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, false)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 4)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	logger := zerolog.Nop()
	tm := pg.NewTxManager(pool)

	catalogUC := usecase.NewCatalogUseCase(
		pg.NewPostgresCategoryRepo(pool),
		pg.NewPostgresManufacturerRepo(pool),
		pg.NewPostgresLocationRepo(pool),
		&logger,
	)
	productUC := usecase.NewProductUseCase(pg.NewPostgresProductRepo(pool), &logger)
	stockUC := usecase.NewStockUseCase(pg.NewPostgresStockRepo(pool), tm, &logger)

	// If products already exist, do nothing.
	existing, total, err := productUC.List(ctx, 0, 1)
	if err != nil {
		log.Fatalf("list products: %v", err)
	}
	if len(existing) > 0 {
		fmt.Printf("%d products already present. No changes.\n", total)
		return
	}

	city, err := catalogUC.CreateLocation(ctx, "Downtown", "12 Main St")
	if err != nil {
		log.Fatalf("create location: %v", err)
	}
	suburb, err := catalogUC.CreateLocation(ctx, "Northside", "301 Hill Rd")
	if err != nil {
		log.Fatalf("create location: %v", err)
	}

	roasters, err := catalogUC.CreateManufacturer(ctx, "Aurora Roasters")
	if err != nil {
		log.Fatalf("create manufacturer: %v", err)
	}
	teahouse, err := catalogUC.CreateManufacturer(ctx, "Willow Teahouse")
	if err != nil {
		log.Fatalf("create manufacturer: %v", err)
	}

	coffee, err := catalogUC.CreateCategory(ctx, "Coffee")
	if err != nil {
		log.Fatalf("create category: %v", err)
	}
	tea, err := catalogUC.CreateCategory(ctx, "Tea")
	if err != nil {
		log.Fatalf("create category: %v", err)
	}

	seed := []struct {
		Manufacturer int64
		Category     int64
		SKU          string
		CostMinor    int64
		Variation    string
		NameEN       string
		NameRU       string
		NamePL       string
		Stock        map[int64]int // location -> quantity
	}{
		{
			Manufacturer: roasters.ID, Category: coffee.ID,
			SKU: "COF-ESP-250", CostMinor: 1450, Variation: "250g",
			NameEN: "Espresso Blend", NameRU: "Эспрессо-смесь", NamePL: "Mieszanka espresso",
			Stock: map[int64]int{city.ID: 24, suburb.ID: 10},
		},
		{
			Manufacturer: roasters.ID, Category: coffee.ID,
			SKU: "COF-ETH-250", CostMinor: 1690, Variation: "250g",
			NameEN: "Ethiopia Single Origin", NameRU: "Эфиопия моносорт", NamePL: "Etiopia single origin",
			Stock: map[int64]int{city.ID: 12},
		},
		{
			Manufacturer: teahouse.ID, Category: tea.ID,
			SKU: "TEA-SEN-100", CostMinor: 980, Variation: "100g",
			NameEN: "Sencha Green Tea", NameRU: "Зеленый чай сенча", NamePL: "Zielona herbata sencha",
			Stock: map[int64]int{suburb.ID: 30},
		},
	}

	for _, s := range seed {
		p, err := model.NewProduct(s.Manufacturer, s.CostMinor)
		if err != nil {
			log.Fatalf("product %q: %v", s.SKU, err)
		}
		cat := s.Category
		p.CategoryID = &cat
		p.SKU = s.SKU
		p.Variation = s.Variation
		p.Localizations = []model.Localization{
			{LanguageCode: "en", Name: s.NameEN},
			{LanguageCode: "ru", Name: s.NameRU},
			{LanguageCode: "pl", Name: s.NamePL},
		}

		created, err := productUC.Create(ctx, p)
		if err != nil {
			log.Fatalf("create product %q: %v", s.SKU, err)
		}
		for locID, qty := range s.Stock {
			if _, err := stockUC.Set(ctx, 0, created.ID, locID, qty); err != nil {
				log.Fatalf("set stock for %q: %v", s.SKU, err)
			}
		}
		fmt.Printf("seeded: %s (id=%d, price=%d minor)\n", s.SKU, created.ID, s.CostMinor)
	}

	fmt.Println("✅ Seeding complete.")
}
