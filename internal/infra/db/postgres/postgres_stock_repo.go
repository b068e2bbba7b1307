package postgres

import (
	"context"
	"errors"
	"fmt"

	"telegram-storefront-bot/internal/domain"
	"telegram-storefront-bot/internal/domain/model"
	"telegram-storefront-bot/internal/domain/ports/repository"
	"telegram-storefront-bot/internal/infra/metrics"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

var _ repository.StockRepository = (*PostgresStockRepo)(nil)

type PostgresStockRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresStockRepo(pool *pgxpool.Pool) *PostgresStockRepo {
	return &PostgresStockRepo{pool: pool}
}

const stockColumns = `product_id, location_id, quantity, updated_at`

func scanStock(row pgx.Row) (*model.StockRecord, error) {
	var s model.StockRecord
	err := row.Scan(&s.ProductID, &s.LocationID, &s.Quantity, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *PostgresStockRepo) Get(ctx context.Context, tx repository.Tx, productID, locationID int64) (*model.StockRecord, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	const sql = `SELECT ` + stockColumns + ` FROM product_stock WHERE product_id = $1 AND location_id = $2;`
	return scanStock(ex.QueryRow(ctx, sql, productID, locationID))
}

// GetForUpdate locks the stock row for the remainder of the surrounding
// transaction. Callers must hold a tx; the lock is meaningless on the pool.
func (r *PostgresStockRepo) GetForUpdate(ctx context.Context, tx repository.Tx, productID, locationID int64) (*model.StockRecord, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	const sql = `SELECT ` + stockColumns + ` FROM product_stock WHERE product_id = $1 AND location_id = $2 FOR UPDATE;`
	return scanStock(ex.QueryRow(ctx, sql, productID, locationID))
}

// Adjust applies delta to the (product, location) quantity under a row lock.
// A missing record is created when delta is positive. Decrementing a missing
// record, or driving an existing quantity below zero, fails with
// domain.ErrInsufficientStock and leaves the row untouched.
func (r *PostgresStockRepo) Adjust(ctx context.Context, tx repository.Tx, productID, locationID int64, delta int) (*model.StockRecord, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}

	s, err := r.GetForUpdate(ctx, tx, productID, locationID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		if delta < 0 {
			metrics.IncStockShortfall()
			return nil, domain.ErrInsufficientStock
		}
		const insSQL = `
INSERT INTO product_stock (product_id, location_id, quantity, updated_at)
VALUES ($1, $2, $3, NOW())
RETURNING ` + stockColumns + `;`
		s, err = scanStock(ex.QueryRow(ctx, insSQL, productID, locationID, delta))
		if err != nil {
			if isForeignKeyViolation(err) {
				return nil, domain.ErrNotFound
			}
			return nil, fmt.Errorf("create stock record: %w", err)
		}
		metrics.IncStockAdjustment("increase")
		return s, nil
	}

	next := s.Quantity + delta
	if next < 0 {
		metrics.IncStockShortfall()
		return nil, domain.ErrInsufficientStock
	}

	const updSQL = `
UPDATE product_stock
   SET quantity = $3, updated_at = NOW()
 WHERE product_id = $1 AND location_id = $2
RETURNING ` + stockColumns + `;`
	s, err = scanStock(ex.QueryRow(ctx, updSQL, productID, locationID, next))
	if err != nil {
		return nil, fmt.Errorf("adjust stock: %w", err)
	}
	if delta >= 0 {
		metrics.IncStockAdjustment("increase")
	} else {
		metrics.IncStockAdjustment("decrease")
	}
	return s, nil
}

// Set overwrites the quantity, creating the record when absent.
func (r *PostgresStockRepo) Set(ctx context.Context, tx repository.Tx, productID, locationID int64, quantity int) (*model.StockRecord, error) {
	if quantity < 0 {
		return nil, domain.ErrInvalidArgument
	}
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	const sql = `
INSERT INTO product_stock (product_id, location_id, quantity, updated_at)
VALUES ($1, $2, $3, NOW())
ON CONFLICT (product_id, location_id) DO UPDATE
  SET quantity = EXCLUDED.quantity, updated_at = NOW()
RETURNING ` + stockColumns + `;`
	s, err := scanStock(ex.QueryRow(ctx, sql, productID, locationID, quantity))
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("set stock: %w", err)
	}
	metrics.IncStockAdjustment("set")
	return s, nil
}

func (r *PostgresStockRepo) ListByProduct(ctx context.Context, tx repository.Tx, productID int64) ([]model.StockRecord, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	const sql = `
SELECT s.product_id, s.location_id, s.quantity, s.updated_at,
       l.id, l.name, l.address, l.created_at, l.updated_at
  FROM product_stock s
  JOIN locations l ON l.id = s.location_id
 WHERE s.product_id = $1
 ORDER BY l.name;
`
	rows, err := ex.Query(ctx, sql, productID)
	if err != nil {
		return nil, fmt.Errorf("list stock by product: %w", err)
	}
	defer rows.Close()

	var out []model.StockRecord
	for rows.Next() {
		var s model.StockRecord
		var l model.Location
		if err := rows.Scan(&s.ProductID, &s.LocationID, &s.Quantity, &s.UpdatedAt,
			&l.ID, &l.Name, &l.Address, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, err
		}
		s.Location = &l
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *PostgresStockRepo) TotalUnits(ctx context.Context, tx repository.Tx) (int, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return 0, err
	}
	var total int
	if err := ex.QueryRow(ctx, `SELECT COALESCE(SUM(quantity), 0) FROM product_stock;`).Scan(&total); err != nil {
		return 0, fmt.Errorf("total stock units: %w", err)
	}
	return total, nil
}

// LocationsWithStock lists locations that have at least one unit of anything
// on hand, the entry points of the storefront browse flow.
func (r *PostgresStockRepo) LocationsWithStock(ctx context.Context, tx repository.Tx) ([]*model.Location, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	const sql = `
SELECT DISTINCT l.id, l.name, l.address, l.created_at, l.updated_at
  FROM locations l
  JOIN product_stock s ON s.location_id = l.id AND s.quantity > 0
 ORDER BY l.name;
`
	rows, err := ex.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("locations with stock: %w", err)
	}
	defer rows.Close()

	var out []*model.Location
	for rows.Next() {
		var l model.Location
		if err := rows.Scan(&l.ID, &l.Name, &l.Address, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, &l)
	}
	return out, rows.Err()
}

func (r *PostgresStockRepo) ManufacturersByLocation(ctx context.Context, tx repository.Tx, locationID int64) ([]*model.Manufacturer, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	const sql = `
SELECT DISTINCT m.id, m.name, m.created_at, m.updated_at
  FROM manufacturers m
  JOIN products p      ON p.manufacturer_id = m.id
  JOIN product_stock s ON s.product_id = p.id AND s.location_id = $1 AND s.quantity > 0
 ORDER BY m.name;
`
	rows, err := ex.Query(ctx, sql, locationID)
	if err != nil {
		return nil, fmt.Errorf("manufacturers by location: %w", err)
	}
	defer rows.Close()

	var out []*model.Manufacturer
	for rows.Next() {
		var m model.Manufacturer
		if err := rows.Scan(&m.ID, &m.Name, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}

func (r *PostgresStockRepo) ProductsByManufacturerAtLocation(ctx context.Context, tx repository.Tx, manufacturerID, locationID int64) ([]*model.Product, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	const sql = `
SELECT p.id, p.manufacturer_id, p.category_id, p.cost_minor, p.sku, p.image_url, p.variation,
       p.created_at, p.updated_at,
       m.id, m.name, m.created_at, m.updated_at,
       s.product_id, s.location_id, s.quantity, s.updated_at
  FROM products p
  JOIN manufacturers m ON m.id = p.manufacturer_id
  JOIN product_stock s ON s.product_id = p.id AND s.location_id = $2 AND s.quantity > 0
 WHERE p.manufacturer_id = $1
 ORDER BY p.id;
`
	rows, err := ex.Query(ctx, sql, manufacturerID, locationID)
	if err != nil {
		return nil, fmt.Errorf("products by manufacturer at location: %w", err)
	}
	defer rows.Close()

	var out []*model.Product
	ids := make([]int64, 0, 16)
	for rows.Next() {
		var p model.Product
		var m model.Manufacturer
		var s model.StockRecord
		if err := rows.Scan(&p.ID, &p.ManufacturerID, &p.CategoryID, &p.CostMinor, &p.SKU, &p.ImageURL, &p.Variation,
			&p.CreatedAt, &p.UpdatedAt,
			&m.ID, &m.Name, &m.CreatedAt, &m.UpdatedAt,
			&s.ProductID, &s.LocationID, &s.Quantity, &s.UpdatedAt); err != nil {
			return nil, err
		}
		p.Manufacturer = &m
		p.Stocks = append(p.Stocks, s)
		out = append(out, &p)
		ids = append(ids, p.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return out, nil
	}

	const locSQL = `
SELECT product_id, language_code, name, description
  FROM product_localizations
 WHERE product_id = ANY($1)
 ORDER BY product_id, language_code;
`
	locRows, err := ex.Query(ctx, locSQL, ids)
	if err != nil {
		return nil, fmt.Errorf("browse localizations: %w", err)
	}
	defer locRows.Close()

	byID := make(map[int64]*model.Product, len(out))
	for _, p := range out {
		byID[p.ID] = p
	}
	for locRows.Next() {
		var loc model.Localization
		if err := locRows.Scan(&loc.ProductID, &loc.LanguageCode, &loc.Name, &loc.Description); err != nil {
			return nil, err
		}
		if p, ok := byID[loc.ProductID]; ok {
			p.Localizations = append(p.Localizations, loc)
		}
	}
	return out, locRows.Err()
}
