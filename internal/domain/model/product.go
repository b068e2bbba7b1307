package model

import (
	"strings"
	"time"

	"telegram-storefront-bot/internal/domain"
)

// Product is the sellable item. Display text lives in per-language
// localizations; the product row itself only carries trade data.
// CostMinor is the price in minor currency units (cents).
type Product struct {
	ID             int64
	ManufacturerID int64
	CategoryID     *int64
	CostMinor      int64
	SKU            string
	ImageURL       string
	Variation      string
	CreatedAt      time.Time
	UpdatedAt      time.Time

	// Loaded on demand by the repository.
	Localizations []Localization
	Manufacturer  *Manufacturer
	Category      *Category
	Stocks        []StockRecord
}

func NewProduct(manufacturerID int64, costMinor int64) (*Product, error) {
	if manufacturerID <= 0 || costMinor < 0 {
		return nil, domain.ErrInvalidArgument
	}
	return &Product{
		ManufacturerID: manufacturerID,
		CostMinor:      costMinor,
		CreatedAt:      time.Now(),
	}, nil
}

func (p *Product) IsZero() bool { return p == nil || p.ID == 0 }

// LocalizedName returns the name for lang, falling back to the first
// localization available, then to an empty string.
func (p *Product) LocalizedName(lang string) string {
	if loc := p.Localization(lang); loc != nil {
		return loc.Name
	}
	if len(p.Localizations) > 0 {
		return p.Localizations[0].Name
	}
	return ""
}

func (p *Product) Localization(lang string) *Localization {
	for i := range p.Localizations {
		if p.Localizations[i].LanguageCode == lang {
			return &p.Localizations[i]
		}
	}
	return nil
}

// Localization is per-language display text attached to a product.
type Localization struct {
	ProductID    int64
	LanguageCode string
	Name         string
	Description  string
}

func NewLocalization(productID int64, lang, name, description string) (*Localization, error) {
	lang = strings.ToLower(strings.TrimSpace(lang))
	name = strings.TrimSpace(name)
	if productID <= 0 || lang == "" || name == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &Localization{
		ProductID:    productID,
		LanguageCode: lang,
		Name:         name,
		Description:  strings.TrimSpace(description),
	}, nil
}
