package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"telegram-storefront-bot/internal/domain"
	"telegram-storefront-bot/internal/domain/model"
	"telegram-storefront-bot/internal/domain/ports/repository"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeDomainErr maps expected domain failures onto HTTP status codes and
// treats everything else as a 500.
func (s *Server) writeDomainErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		http.Error(w, "Not found", http.StatusNotFound)
	case errors.Is(err, domain.ErrInvalidArgument):
		http.Error(w, "Invalid request", http.StatusBadRequest)
	case errors.Is(err, domain.ErrAlreadyExists):
		http.Error(w, "Already exists", http.StatusConflict)
	case errors.Is(err, domain.ErrInUse):
		http.Error(w, "Record is in use", http.StatusConflict)
	case errors.Is(err, domain.ErrInsufficientStock):
		http.Error(w, "Insufficient stock", http.StatusConflict)
	case errors.Is(err, domain.ErrInvalidStatusTransition):
		http.Error(w, "Invalid status transition", http.StatusConflict)
	default:
		s.log.Error().Err(err).Msg("web handler failure")
		http.Error(w, "Internal error", http.StatusInternalServerError)
	}
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func pageParams(r *http.Request) (offset, limit int) {
	offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return offset, limit
}

// listResponse is the shared envelope for paginated collections.
type listResponse struct {
	Data   any `json:"data"`
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// ===== session =====

type loginRequest struct {
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if s.cfg.AdminPassword == "" || req.Password != s.cfg.AdminPassword {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	token, err := s.auth.Mint(w)
	if err != nil {
		s.writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (s *Server) handleLogout(w http.ResponseWriter, _ *http.Request) {
	s.auth.Clear(w)
	w.WriteHeader(http.StatusNoContent)
}

// ===== stats =====

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	snap, err := s.stats.Snapshot(r.Context())
	if err != nil {
		s.writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// ===== products =====

type productPayload struct {
	ManufacturerID int64  `json:"manufacturer_id"`
	CategoryID     *int64 `json:"category_id"`
	CostMinor      int64  `json:"cost_minor"`
	SKU            string `json:"sku"`
	ImageURL       string `json:"image_url"`
	Variation      string `json:"variation"`

	Localizations []struct {
		Lang        string `json:"lang"`
		Name        string `json:"name"`
		Description string `json:"description"`
	} `json:"localizations"`
}

func (s *Server) handleProductList(w http.ResponseWriter, r *http.Request) {
	offset, limit := pageParams(r)
	products, total, err := s.prods.List(r.Context(), offset, limit)
	if err != nil {
		s.writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Data: products, Total: total, Limit: limit, Offset: offset})
}

func (s *Server) handleProductCreate(w http.ResponseWriter, r *http.Request) {
	var req productPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	p, err := model.NewProduct(req.ManufacturerID, req.CostMinor)
	if err != nil {
		s.writeDomainErr(w, err)
		return
	}
	p.CategoryID = req.CategoryID
	p.SKU = req.SKU
	p.ImageURL = req.ImageURL
	p.Variation = req.Variation
	for _, l := range req.Localizations {
		p.Localizations = append(p.Localizations, model.Localization{
			LanguageCode: l.Lang, Name: l.Name, Description: l.Description,
		})
	}

	created, err := s.prods.Create(r.Context(), p)
	if err != nil {
		s.writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleProductGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http.Error(w, "Invalid product ID", http.StatusBadRequest)
		return
	}
	p, err := s.prods.GetDetailed(r.Context(), id)
	if err != nil {
		s.writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleProductUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http.Error(w, "Invalid product ID", http.StatusBadRequest)
		return
	}
	var req repository.ProductUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	p, err := s.prods.Update(r.Context(), id, req)
	if err != nil {
		s.writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleProductDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http.Error(w, "Invalid product ID", http.StatusBadRequest)
		return
	}
	if err := s.prods.Delete(r.Context(), id); err != nil {
		s.writeDomainErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleProductLocalization(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http.Error(w, "Invalid product ID", http.StatusBadRequest)
		return
	}
	lang := chi.URLParam(r, "lang")
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := s.prods.SetLocalization(r.Context(), id, lang, req.Name, req.Description); err != nil {
		s.writeDomainErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleProductStock(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http.Error(w, "Invalid product ID", http.StatusBadRequest)
		return
	}
	records, err := s.stock.ListByProduct(r.Context(), id)
	if err != nil {
		s.writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": records})
}

// ===== stock =====

type stockChangeRequest struct {
	ProductID  int64 `json:"product_id"`
	LocationID int64 `json:"location_id"`
	Delta      int   `json:"delta"`
	Quantity   int   `json:"quantity"`
}

func (s *Server) handleStockAdjust(w http.ResponseWriter, r *http.Request) {
	var req stockChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	// Dashboard edits carry no Telegram actor.
	rec, err := s.stock.Adjust(r.Context(), 0, req.ProductID, req.LocationID, req.Delta)
	if err != nil {
		s.writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleStockSet(w http.ResponseWriter, r *http.Request) {
	var req stockChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	rec, err := s.stock.Set(r.Context(), 0, req.ProductID, req.LocationID, req.Quantity)
	if err != nil {
		s.writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// ===== orders =====

func (s *Server) handleOrderList(w http.ResponseWriter, r *http.Request) {
	offset, limit := pageParams(r)
	status := model.OrderStatus(r.URL.Query().Get("status"))
	orders, total, err := s.orders.List(r.Context(), status, offset, limit)
	if err != nil {
		s.writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Data: orders, Total: total, Limit: limit, Offset: offset})
}

func (s *Server) handleOrderGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http.Error(w, "Invalid order ID", http.StatusBadRequest)
		return
	}
	o, err := s.orders.Get(r.Context(), id)
	if err != nil {
		s.writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (s *Server) handleOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http.Error(w, "Invalid order ID", http.StatusBadRequest)
		return
	}
	var req struct {
		Status  string `json:"status"`
		Comment string `json:"comment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	o, err := s.orders.UpdateStatus(r.Context(), id, model.OrderStatus(req.Status), req.Comment)
	if err != nil {
		s.writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// ===== users =====

func (s *Server) handleUserList(w http.ResponseWriter, r *http.Request) {
	offset, limit := pageParams(r)
	filter := repository.UserFilter(r.URL.Query().Get("filter"))
	if filter == "" {
		filter = repository.UsersAll
	}
	users, total, err := s.users.List(r.Context(), filter, offset, limit)
	if err != nil {
		s.writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Data: users, Total: total, Limit: limit, Offset: offset})
}

func (s *Server) handleUserBlocked(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}
	var req struct {
		Blocked bool `json:"blocked"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := s.users.SetBlocked(r.Context(), id, req.Blocked); err != nil {
		s.writeDomainErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ===== catalog =====

func (s *Server) handleLocationList(w http.ResponseWriter, r *http.Request) {
	offset, limit := pageParams(r)
	locs, total, err := s.catalog.ListLocations(r.Context(), offset, limit)
	if err != nil {
		s.writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Data: locs, Total: total, Limit: limit, Offset: offset})
}

func (s *Server) handleCategoryList(w http.ResponseWriter, r *http.Request) {
	offset, limit := pageParams(r)
	cats, total, err := s.catalog.ListCategories(r.Context(), offset, limit)
	if err != nil {
		s.writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Data: cats, Total: total, Limit: limit, Offset: offset})
}

func (s *Server) handleManufacturerList(w http.ResponseWriter, r *http.Request) {
	offset, limit := pageParams(r)
	mfgs, total, err := s.catalog.ListManufacturers(r.Context(), offset, limit)
	if err != nil {
		s.writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Data: mfgs, Total: total, Limit: limit, Offset: offset})
}
