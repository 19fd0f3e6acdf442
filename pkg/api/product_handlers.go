package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/inventoryhq/catalog/pkg/apperr"
	"github.com/inventoryhq/catalog/pkg/httputil"
	"github.com/inventoryhq/catalog/pkg/observability"
)

// ProductHandlers serves the product CRUD endpoints
type ProductHandlers struct {
	store  ProductStore
	logger *observability.Logger
}

// NewProductHandlers creates the product handlers
func NewProductHandlers(store ProductStore, logger *observability.Logger) *ProductHandlers {
	return &ProductHandlers{store: store, logger: logger}
}

// RegisterRoutes registers the product routes on the router
func (h *ProductHandlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/products", h.create).Methods("POST")
	router.HandleFunc("/api/products", h.list).Methods("GET")
	router.HandleFunc("/api/products/{id}", h.get).Methods("GET")
	router.HandleFunc("/api/products/{id}", h.update).Methods("PUT")
	router.HandleFunc("/api/products/{id}", h.delete).Methods("DELETE")
}

// create handles POST /api/products
func (h *ProductHandlers) create(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	product := req.ToProduct()
	if err := h.store.Create(r.Context(), product); err != nil {
		h.logStoreError(r, err)
		httputil.WriteAppError(w, err)
		return
	}

	h.logger.WithField("product_id", product.ID).Info("product created")
	httputil.WriteCreated(w, product)
}

// list handles GET /api/products
func (h *ProductHandlers) list(w http.ResponseWriter, r *http.Request) {
	products, err := h.store.List(r.Context())
	if err != nil {
		h.logStoreError(r, err)
		httputil.WriteAppError(w, err)
		return
	}
	httputil.WriteSuccess(w, products)
}

// get handles GET /api/products/{id}
func (h *ProductHandlers) get(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	product, err := h.store.Get(r.Context(), id)
	if err != nil {
		h.logStoreError(r, err)
		httputil.WriteAppError(w, err)
		return
	}
	httputil.WriteSuccess(w, product)
}

// update handles PUT /api/products/{id}
func (h *ProductHandlers) update(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	var req ProductRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	product := req.ToProduct()
	product.ID = id
	if err := h.store.Update(r.Context(), product); err != nil {
		h.logStoreError(r, err)
		httputil.WriteAppError(w, err)
		return
	}

	h.logger.WithField("product_id", product.ID).Info("product updated")
	httputil.WriteSuccess(w, product)
}

// delete handles DELETE /api/products/{id}
func (h *ProductHandlers) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	if err := h.store.Delete(r.Context(), id); err != nil {
		h.logStoreError(r, err)
		httputil.WriteAppError(w, err)
		return
	}

	h.logger.WithField("product_id", id).Info("product deleted")
	httputil.WriteNoContent(w)
}

// logStoreError logs unexpected store failures; expected domain errors
// (not found, conflicts) pass through silently.
func (h *ProductHandlers) logStoreError(r *http.Request, err error) {
	if apperr.IsConflict(err) || apperr.IsNotFound(err) {
		return
	}
	h.logger.WithFields(map[string]interface{}{
		"method": r.Method,
		"path":   r.URL.Path,
	}).WithError(err).Error("product store operation failed")
}
