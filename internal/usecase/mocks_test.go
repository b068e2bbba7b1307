//go:build !integration

package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"telegram-storefront-bot/internal/domain"
	"telegram-storefront-bot/internal/domain/model"
	"telegram-storefront-bot/internal/domain/ports/repository"

	"github.com/jackc/pgx/v4"
)

// ---- Transaction manager (pass-through) ----

type fakeTxManager struct{}

func (f *fakeTxManager) WithTx(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	return fn(ctx, repository.NoTX)
}

// ---- In-memory user repository ----

type memUserRepo struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*model.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{nextID: 1, byID: map[int64]*model.User{}}
}

func (r *memUserRepo) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ex := range r.byID {
		if ex.TelegramID == u.TelegramID {
			u.ID = ex.ID
			cp := *u
			r.byID[ex.ID] = &cp
			return nil
		}
	}
	u.ID = r.nextID
	r.nextID++
	cp := *u
	r.byID[u.ID] = &cp
	return nil
}

func (r *memUserRepo) FindByTelegramID(ctx context.Context, tx repository.Tx, tgID int64) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.TelegramID == tgID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memUserRepo) FindByID(ctx context.Context, tx repository.Tx, id int64) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) List(ctx context.Context, tx repository.Tx, filter repository.UserFilter, offset, limit int) ([]*model.User, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []*model.User
	for _, u := range r.byID {
		switch filter {
		case repository.UsersBlocked:
			if !u.IsBlocked {
				continue
			}
		case repository.UsersActive:
			if u.IsBlocked {
				continue
			}
		}
		cp := *u
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	total := len(all)
	if offset >= len(all) {
		return nil, total, nil
	}
	all = all[offset:]
	if limit < len(all) {
		all = all[:limit]
	}
	return all, total, nil
}

func (r *memUserRepo) Count(ctx context.Context, tx repository.Tx) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID), nil
}

func (r *memUserRepo) SetBlocked(ctx context.Context, tx repository.Tx, id int64, blocked bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.IsBlocked = blocked
	return nil
}

func (r *memUserRepo) SetLanguage(ctx context.Context, tx repository.Tx, id int64, lang string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.Language = lang
	return nil
}

// ---- In-memory product repository ----

type memProductRepo struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*model.Product
}

func newMemProductRepo() *memProductRepo {
	return &memProductRepo{nextID: 1, byID: map[int64]*model.Product{}}
}

func (r *memProductRepo) Create(ctx context.Context, tx repository.Tx, p *model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.ID = r.nextID
	r.nextID++
	cp := *p
	r.byID[p.ID] = &cp
	return nil
}

func (r *memProductRepo) FindByID(ctx context.Context, tx repository.Tx, id int64, withDetails bool) (*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *memProductRepo) List(ctx context.Context, tx repository.Tx, offset, limit int) ([]*model.Product, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []*model.Product
	for _, p := range r.byID {
		cp := *p
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	total := len(all)
	if offset >= len(all) {
		return nil, total, nil
	}
	all = all[offset:]
	if limit < len(all) {
		all = all[:limit]
	}
	return all, total, nil
}

func (r *memProductRepo) Update(ctx context.Context, tx repository.Tx, id int64, upd repository.ProductUpdate) (*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if upd.CostMinor != nil {
		p.CostMinor = *upd.CostMinor
	}
	if upd.SKU != nil {
		p.SKU = *upd.SKU
	}
	cp := *p
	return &cp, nil
}

func (r *memProductRepo) Delete(ctx context.Context, tx repository.Tx, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *memProductRepo) UpsertLocalization(ctx context.Context, tx repository.Tx, loc *model.Localization) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[loc.ProductID]
	if !ok {
		return domain.ErrNotFound
	}
	for i := range p.Localizations {
		if p.Localizations[i].LanguageCode == loc.LanguageCode {
			p.Localizations[i] = *loc
			return nil
		}
	}
	p.Localizations = append(p.Localizations, *loc)
	return nil
}

func (r *memProductRepo) ListLocalizations(ctx context.Context, tx repository.Tx, productID int64) ([]model.Localization, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[productID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return append([]model.Localization(nil), p.Localizations...), nil
}

func (r *memProductRepo) FindLocalization(ctx context.Context, tx repository.Tx, productID int64, lang string) (*model.Localization, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[productID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	for i := range p.Localizations {
		if p.Localizations[i].LanguageCode == lang {
			cp := p.Localizations[i]
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

// ---- In-memory stock repository ----

type stockKey struct {
	product  int64
	location int64
}

type memStockRepo struct {
	mu      sync.Mutex
	records map[stockKey]*model.StockRecord
}

func newMemStockRepo() *memStockRepo {
	return &memStockRepo{records: map[stockKey]*model.StockRecord{}}
}

func (r *memStockRepo) seed(productID, locationID int64, qty int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[stockKey{productID, locationID}] = &model.StockRecord{
		ProductID: productID, LocationID: locationID, Quantity: qty, UpdatedAt: time.Now(),
	}
}

func (r *memStockRepo) Get(ctx context.Context, tx repository.Tx, productID, locationID int64) (*model.StockRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[stockKey{productID, locationID}]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (r *memStockRepo) GetForUpdate(ctx context.Context, tx repository.Tx, productID, locationID int64) (*model.StockRecord, error) {
	return r.Get(ctx, tx, productID, locationID)
}

func (r *memStockRepo) Adjust(ctx context.Context, tx repository.Tx, productID, locationID int64, delta int) (*model.StockRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := stockKey{productID, locationID}
	rec, ok := r.records[key]
	if !ok {
		if delta < 0 {
			return nil, domain.ErrInsufficientStock
		}
		rec = &model.StockRecord{ProductID: productID, LocationID: locationID}
		r.records[key] = rec
	}
	if rec.Quantity+delta < 0 {
		return nil, domain.ErrInsufficientStock
	}
	rec.Quantity += delta
	rec.UpdatedAt = time.Now()
	cp := *rec
	return &cp, nil
}

func (r *memStockRepo) Set(ctx context.Context, tx repository.Tx, productID, locationID int64, quantity int) (*model.StockRecord, error) {
	if quantity < 0 {
		return nil, domain.ErrInvalidArgument
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	key := stockKey{productID, locationID}
	rec := &model.StockRecord{ProductID: productID, LocationID: locationID, Quantity: quantity, UpdatedAt: time.Now()}
	r.records[key] = rec
	cp := *rec
	return &cp, nil
}

func (r *memStockRepo) ListByProduct(ctx context.Context, tx repository.Tx, productID int64) ([]model.StockRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.StockRecord
	for _, rec := range r.records {
		if rec.ProductID == productID {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (r *memStockRepo) TotalUnits(ctx context.Context, tx repository.Tx) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := 0
	for _, rec := range r.records {
		total += rec.Quantity
	}
	return total, nil
}

func (r *memStockRepo) LocationsWithStock(ctx context.Context, tx repository.Tx) ([]*model.Location, error) {
	return nil, nil
}

func (r *memStockRepo) ManufacturersByLocation(ctx context.Context, tx repository.Tx, locationID int64) ([]*model.Manufacturer, error) {
	return nil, nil
}

func (r *memStockRepo) ProductsByManufacturerAtLocation(ctx context.Context, tx repository.Tx, manufacturerID, locationID int64) ([]*model.Product, error) {
	return nil, nil
}

// ---- In-memory order and cart repositories ----

type memOrderRepo struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*model.Order
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{nextID: 1, byID: map[int64]*model.Order{}}
}

func (r *memOrderRepo) Create(ctx context.Context, tx repository.Tx, o *model.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o.ID = r.nextID
	r.nextID++
	for i := range o.Items {
		o.Items[i].ID = int64(i + 1)
		o.Items[i].OrderID = o.ID
	}
	cp := *o
	cp.Items = append([]model.OrderItem(nil), o.Items...)
	r.byID[o.ID] = &cp
	return nil
}

func (r *memOrderRepo) FindByID(ctx context.Context, tx repository.Tx, id int64) (*model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *o
	cp.Items = append([]model.OrderItem(nil), o.Items...)
	return &cp, nil
}

func (r *memOrderRepo) ListByUser(ctx context.Context, tx repository.Tx, userID int64, offset, limit int) ([]*model.Order, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []*model.Order
	for _, o := range r.byID {
		if o.UserID == userID {
			cp := *o
			all = append(all, &cp)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return page(all, offset, limit)
}

func (r *memOrderRepo) List(ctx context.Context, tx repository.Tx, status model.OrderStatus, offset, limit int) ([]*model.Order, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []*model.Order
	for _, o := range r.byID {
		if status != "" && o.Status != status {
			continue
		}
		cp := *o
		cp.Items = append([]model.OrderItem(nil), o.Items...)
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return page(all, offset, limit)
}

func page(all []*model.Order, offset, limit int) ([]*model.Order, int, error) {
	total := len(all)
	if offset >= len(all) {
		return nil, total, nil
	}
	all = all[offset:]
	if limit < len(all) {
		all = all[:limit]
	}
	return all, total, nil
}

func (r *memOrderRepo) UpdateStatus(ctx context.Context, tx repository.Tx, id int64, from, to model.OrderStatus, comment string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	if o.Status != from {
		return domain.ErrInvalidStatusTransition
	}
	o.Status = to
	if comment != "" {
		o.Comment = comment
	}
	o.UpdatedAt = time.Now()
	return nil
}

func (r *memOrderRepo) CountByStatus(ctx context.Context, tx repository.Tx) (map[model.OrderStatus]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[model.OrderStatus]int)
	for _, o := range r.byID {
		out[o.Status]++
	}
	return out, nil
}

func (r *memOrderRepo) CountItemsByProduct(ctx context.Context, tx repository.Tx, productID int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, o := range r.byID {
		for _, it := range o.Items {
			if it.ProductID == productID {
				n++
			}
		}
	}
	return n, nil
}

type memCartRepo struct {
	mu     sync.Mutex
	nextID int64
	items  []*model.CartItem
}

func newMemCartRepo() *memCartRepo {
	return &memCartRepo{nextID: 1}
}

func (r *memCartRepo) AddItem(ctx context.Context, tx repository.Tx, item *model.CartItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ex := range r.items {
		if ex.UserID == item.UserID && ex.ProductID == item.ProductID && ex.LocationID == item.LocationID {
			ex.Quantity += item.Quantity
			item.ID = ex.ID
			item.Quantity = ex.Quantity
			return nil
		}
	}
	item.ID = r.nextID
	r.nextID++
	cp := *item
	r.items = append(r.items, &cp)
	return nil
}

func (r *memCartRepo) Items(ctx context.Context, tx repository.Tx, userID int64) ([]*model.CartItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.CartItem
	for _, it := range r.items {
		if it.UserID == userID {
			cp := *it
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memCartRepo) RemoveItem(ctx context.Context, tx repository.Tx, userID, itemID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, it := range r.items {
		if it.ID == itemID && it.UserID == userID {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *memCartRepo) Clear(ctx context.Context, tx repository.Tx, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var remaining []*model.CartItem
	for _, it := range r.items {
		if it.UserID != userID {
			remaining = append(remaining, it)
		}
	}
	r.items = remaining
	return nil
}

// ---- In-memory Locker ----

type mockLocker struct {
	mu    sync.Mutex
	held  map[string]string
	ErrOn map[string]error
}

func newMockLocker() *mockLocker {
	return &mockLocker{held: map[string]string{}, ErrOn: map[string]error{}}
}

func (l *mockLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err, ok := l.ErrOn[key]; ok {
		return "", err
	}
	if _, ok := l.held[key]; ok {
		return "", domain.ErrCheckoutInProgress
	}
	token := "tok"
	l.held[key] = token
	return token, nil
}

func (l *mockLocker) Unlock(ctx context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] == token {
		delete(l.held, key)
	}
	return nil
}
