package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/poiesic/catalogit/core"
)

const (
	defaultPageSize = 20
	maxPageSize     = 500
)

// productRequest carries the mutable fields for create and update.
type productRequest struct {
	Category string `json:"category"`
	Name     string `json:"name"`
}

// productResponse is the API rendering of a single record.
type productResponse struct {
	ID       uint64 `json:"id"`
	Category string `json:"category"`
	Name     string `json:"name"`
}

// productListResponse is one page of records plus paging metadata.
type productListResponse struct {
	Products      []productResponse `json:"products"`
	Page          int               `json:"page"`
	Size          int               `json:"size"`
	TotalElements uint64            `json:"total_elements"`
	TotalPages    int               `json:"total_pages"`
	Sort          string            `json:"sort"`
}

// categoryListResponse wraps the distinct category values.
type categoryListResponse struct {
	Categories []string `json:"categories"`
}

func toProductResponse(p *core.Product) productResponse {
	return productResponse{ID: uint64(p.Id), Category: p.Category, Name: p.Name}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// productsHandler serves the collection routes:
// POST /products and GET /products?category=&page=&size=.
func (a *App) productsHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		a.createProduct(w, r)
	case http.MethodGet:
		a.listProducts(w, r)
	default:
		WriteJSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
	}
}

func (a *App) createProduct(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeProductRequest(w, r)
	if !ok {
		return
	}

	product, err := a.Catalog.Create(r.Context(), req.Category, req.Name)
	if err != nil {
		a.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toProductResponse(product))
}

func (a *App) listProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	category := q.Get("category")
	if category == "" {
		WriteJSONError(w, http.StatusBadRequest, "validation_error", "category is required")
		return
	}

	page, ok := intQueryParam(w, q.Get("page"), "page", 0)
	if !ok {
		return
	}
	size, ok := intQueryParam(w, q.Get("size"), "size", defaultPageSize)
	if !ok {
		return
	}
	if page < 0 {
		WriteJSONError(w, http.StatusBadRequest, "validation_error", "page must be >= 0")
		return
	}
	if size <= 0 || size > maxPageSize {
		WriteJSONError(w, http.StatusBadRequest, "validation_error", "size must be between 1 and 500")
		return
	}

	result, err := a.Catalog.ListByCategory(r.Context(), category, page, size)
	if err != nil {
		a.writeDomainError(w, r, err)
		return
	}

	products := make([]productResponse, 0, len(result.Items))
	for _, item := range result.Items {
		products = append(products, toProductResponse(item))
	}
	writeJSON(w, http.StatusOK, productListResponse{
		Products:      products,
		Page:          result.PageNumber,
		Size:          result.PageSize,
		TotalElements: result.TotalElements,
		TotalPages:    result.TotalPages,
		Sort:          result.Sort.String(),
	})
}

// productHandler serves the item routes:
// GET, PUT and DELETE on /products/{id}.
func (a *App) productHandler(w http.ResponseWriter, r *http.Request) {
	idStr := strings.TrimPrefix(r.URL.Path, "/products/")
	if idStr == "" || strings.Contains(idStr, "/") {
		WriteJSONError(w, http.StatusNotFound, "not_found", "")
		return
	}
	rawID, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "validation_error", "id must be a positive integer")
		return
	}
	id := core.ID(rawID)

	switch r.Method {
	case http.MethodGet:
		product, err := a.Catalog.GetByID(r.Context(), id)
		if err != nil {
			a.writeDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toProductResponse(product))

	case http.MethodPut:
		req, ok := decodeProductRequest(w, r)
		if !ok {
			return
		}
		product, err := a.Catalog.Update(r.Context(), id, req.Category, req.Name)
		if err != nil {
			a.writeDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toProductResponse(product))

	case http.MethodDelete:
		if err := a.Catalog.Delete(r.Context(), id); err != nil {
			a.writeDomainError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		WriteJSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
	}
}

func (a *App) categoriesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteJSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
		return
	}

	categories, err := a.Catalog.ListCategories(r.Context())
	if err != nil {
		a.writeDomainError(w, r, err)
		return
	}
	if categories == nil {
		categories = []string{}
	}
	writeJSON(w, http.StatusOK, categoryListResponse{Categories: categories})
}

func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"uptime": time.Since(a.started).Truncate(time.Second).String(),
	})
}

func decodeProductRequest(w http.ResponseWriter, r *http.Request) (productRequest, bool) {
	ct := r.Header.Get("Content-Type")
	if !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		WriteJSONError(w, http.StatusUnsupportedMediaType, "unsupported_media_type", "expected application/json")
		return productRequest{}, false
	}
	var req productRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return productRequest{}, false
	}
	return req, true
}

func intQueryParam(w http.ResponseWriter, raw, name string, def int) (int, bool) {
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "validation_error", name+" must be an integer")
		return 0, false
	}
	return n, true
}
