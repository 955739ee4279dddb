package http

import (
	"context"
	"net/http"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/server/model"
	"go.uber.org/zap"
)

type Catalog interface {
	GetAllProducts(ctx context.Context) ([]*model.Product, error)
}

type ProductHandler struct {
	catalog Catalog
	glyph   string
	logger  *zap.Logger
}

func NewProductHandler(catalog Catalog, glyph string, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{catalog: catalog, glyph: glyph, logger: logger}
}

func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.GetAllProducts(r.Context())
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		out = append(out, domain.Product{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			Price:       domain.FormatAmount(h.glyph, p.Price),
			Image:       p.Image,
		})
	}
	respondJSON(w, http.StatusOK, out)
}
