package postgres

import (
	"context"
	"errors"
	"fmt"

	"telegram-storefront-bot/internal/domain"
	"telegram-storefront-bot/internal/domain/model"
	"telegram-storefront-bot/internal/domain/ports/repository"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

var _ repository.ProductRepository = (*PostgresProductRepo)(nil)

// PostgresProductRepo persists products and their localizations. Order-item
// references are checked through the order repository's count, injected here
// to keep the delete guard in one round trip.
type PostgresProductRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresProductRepo(pool *pgxpool.Pool) *PostgresProductRepo {
	return &PostgresProductRepo{pool: pool}
}

const productColumns = `id, manufacturer_id, category_id, cost_minor, sku, image_url, variation, created_at, updated_at`

func scanProduct(row pgx.Row) (*model.Product, error) {
	var p model.Product
	err := row.Scan(&p.ID, &p.ManufacturerID, &p.CategoryID, &p.CostMinor,
		&p.SKU, &p.ImageURL, &p.Variation, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *PostgresProductRepo) Create(ctx context.Context, tx repository.Tx, p *model.Product) error {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	const sql = `
INSERT INTO products (manufacturer_id, category_id, cost_minor, sku, image_url, variation, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, created_at, updated_at;
`
	if err := ex.QueryRow(ctx, sql,
		p.ManufacturerID, p.CategoryID, p.CostMinor, p.SKU, p.ImageURL, p.Variation, p.CreatedAt,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		if isForeignKeyViolation(err) {
			return domain.ErrInvalidArgument
		}
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

func (r *PostgresProductRepo) FindByID(ctx context.Context, tx repository.Tx, id int64, withDetails bool) (*model.Product, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	p, err := scanProduct(ex.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1;`, id))
	if err != nil {
		return nil, err
	}
	if !withDetails {
		return p, nil
	}

	if p.Localizations, err = r.ListLocalizations(ctx, tx, id); err != nil {
		return nil, err
	}

	const mfgSQL = `SELECT id, name, created_at, updated_at FROM manufacturers WHERE id = $1;`
	var m model.Manufacturer
	if err := ex.QueryRow(ctx, mfgSQL, p.ManufacturerID).Scan(&m.ID, &m.Name, &m.CreatedAt, &m.UpdatedAt); err == nil {
		p.Manufacturer = &m
	}

	if p.CategoryID != nil {
		const catSQL = `SELECT id, name, created_at, updated_at FROM categories WHERE id = $1;`
		var c model.Category
		if err := ex.QueryRow(ctx, catSQL, *p.CategoryID).Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt); err == nil {
			p.Category = &c
		}
	}

	const stockSQL = `
SELECT s.product_id, s.location_id, s.quantity, s.updated_at,
       l.id, l.name, l.address, l.created_at, l.updated_at
  FROM product_stock s
  JOIN locations l ON l.id = s.location_id
 WHERE s.product_id = $1
 ORDER BY l.name;
`
	rows, err := ex.Query(ctx, stockSQL, id)
	if err != nil {
		return nil, fmt.Errorf("load product stock: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var s model.StockRecord
		var l model.Location
		if err := rows.Scan(&s.ProductID, &s.LocationID, &s.Quantity, &s.UpdatedAt,
			&l.ID, &l.Name, &l.Address, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, err
		}
		s.Location = &l
		p.Stocks = append(p.Stocks, s)
	}
	return p, rows.Err()
}

func (r *PostgresProductRepo) List(ctx context.Context, tx repository.Tx, offset, limit int) ([]*model.Product, int, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, 0, err
	}
	var total int
	if err := ex.QueryRow(ctx, `SELECT COUNT(1) FROM products;`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	rows, err := ex.Query(ctx, `SELECT `+productColumns+` FROM products ORDER BY id LIMIT $1 OFFSET $2;`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var out []*model.Product
	ids := make([]int64, 0, limit)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
		ids = append(ids, p.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if len(ids) == 0 {
		return out, total, nil
	}

	// Attach localizations in a single pass.
	const locSQL = `
SELECT product_id, language_code, name, description
  FROM product_localizations
 WHERE product_id = ANY($1)
 ORDER BY product_id, language_code;
`
	locRows, err := ex.Query(ctx, locSQL, ids)
	if err != nil {
		return nil, 0, fmt.Errorf("list localizations: %w", err)
	}
	defer locRows.Close()

	byID := make(map[int64]*model.Product, len(out))
	for _, p := range out {
		byID[p.ID] = p
	}
	for locRows.Next() {
		var loc model.Localization
		if err := locRows.Scan(&loc.ProductID, &loc.LanguageCode, &loc.Name, &loc.Description); err != nil {
			return nil, 0, err
		}
		if p, ok := byID[loc.ProductID]; ok {
			p.Localizations = append(p.Localizations, loc)
		}
	}
	return out, total, locRows.Err()
}

func (r *PostgresProductRepo) Update(ctx context.Context, tx repository.Tx, id int64, upd repository.ProductUpdate) (*model.Product, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}

	p, err := scanProduct(ex.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1 FOR UPDATE;`, id))
	if err != nil {
		// FOR UPDATE outside a tx degrades to a plain read on the pool path.
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	if upd.ManufacturerID != nil {
		p.ManufacturerID = *upd.ManufacturerID
	}
	if upd.CategoryID != nil {
		if *upd.CategoryID == 0 {
			p.CategoryID = nil
		} else {
			p.CategoryID = upd.CategoryID
		}
	}
	if upd.CostMinor != nil {
		p.CostMinor = *upd.CostMinor
	}
	if upd.SKU != nil {
		p.SKU = *upd.SKU
	}
	if upd.ImageURL != nil {
		p.ImageURL = *upd.ImageURL
	}
	if upd.Variation != nil {
		p.Variation = *upd.Variation
	}

	const sql = `
UPDATE products
   SET manufacturer_id = $2,
       category_id     = $3,
       cost_minor      = $4,
       sku             = $5,
       image_url       = $6,
       variation       = $7,
       updated_at      = NOW()
 WHERE id = $1
RETURNING updated_at;
`
	if err := ex.QueryRow(ctx, sql,
		p.ID, p.ManufacturerID, p.CategoryID, p.CostMinor, p.SKU, p.ImageURL, p.Variation,
	).Scan(&p.UpdatedAt); err != nil {
		if isForeignKeyViolation(err) {
			return nil, domain.ErrInvalidArgument
		}
		return nil, fmt.Errorf("update product: %w", err)
	}
	return p, nil
}

func (r *PostgresProductRepo) Delete(ctx context.Context, tx repository.Tx, id int64) error {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}

	// Ordered products stay; order history references them.
	var cnt int
	if err := ex.QueryRow(ctx, `SELECT COUNT(1) FROM order_items WHERE product_id = $1;`, id).Scan(&cnt); err != nil {
		return fmt.Errorf("count product order items: %w", err)
	}
	if cnt > 0 {
		return domain.ErrInUse
	}

	// Localizations, stock and cart lines cascade at DB level.
	ct, err := ex.Exec(ctx, `DELETE FROM products WHERE id = $1;`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrInUse
		}
		return fmt.Errorf("delete product: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PostgresProductRepo) UpsertLocalization(ctx context.Context, tx repository.Tx, loc *model.Localization) error {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	const sql = `
INSERT INTO product_localizations (product_id, language_code, name, description)
VALUES ($1, $2, $3, $4)
ON CONFLICT (product_id, language_code) DO UPDATE
  SET name        = EXCLUDED.name,
      description = EXCLUDED.description;
`
	if _, err := ex.Exec(ctx, sql, loc.ProductID, loc.LanguageCode, loc.Name, loc.Description); err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("upsert localization: %w", err)
	}
	return nil
}

func (r *PostgresProductRepo) ListLocalizations(ctx context.Context, tx repository.Tx, productID int64) ([]model.Localization, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	const sql = `
SELECT product_id, language_code, name, description
  FROM product_localizations
 WHERE product_id = $1
 ORDER BY language_code;
`
	rows, err := ex.Query(ctx, sql, productID)
	if err != nil {
		return nil, fmt.Errorf("list localizations: %w", err)
	}
	defer rows.Close()

	var out []model.Localization
	for rows.Next() {
		var loc model.Localization
		if err := rows.Scan(&loc.ProductID, &loc.LanguageCode, &loc.Name, &loc.Description); err != nil {
			return nil, err
		}
		out = append(out, loc)
	}
	return out, rows.Err()
}

func (r *PostgresProductRepo) FindLocalization(ctx context.Context, tx repository.Tx, productID int64, lang string) (*model.Localization, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	const sql = `
SELECT product_id, language_code, name, description
  FROM product_localizations
 WHERE product_id = $1 AND language_code = $2;
`
	var loc model.Localization
	if err := ex.QueryRow(ctx, sql, productID, lang).Scan(&loc.ProductID, &loc.LanguageCode, &loc.Name, &loc.Description); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find localization: %w", err)
	}
	return &loc, nil
}
