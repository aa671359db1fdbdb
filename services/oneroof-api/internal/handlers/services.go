package handlers

import (
	"net/http"
	"strings"

	"github.com/daddycoders/oneroof/services/oneroof-api/internal/catalog"
	"github.com/daddycoders/oneroof/services/oneroof-api/internal/model"
)

type ServicesHandler struct {
	catalog *catalog.Reader
}

func NewServicesHandler(reader *catalog.Reader) *ServicesHandler {
	return &ServicesHandler{catalog: reader}
}

type serviceItem struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	ImageURL    string  `json:"image_url"`
	Price       float64 `json:"price"`
	Available   bool    `json:"available"`
}

func toServiceItem(s model.Service) serviceItem {
	return serviceItem{
		ID:          s.ID,
		Name:        s.Name,
		Description: s.Description,
		ImageURL:    s.ImageURL,
		Price:       s.Price,
		Available:   s.Available,
	}
}

func (h *ServicesHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	services, err := h.catalog.ListServices(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	items := make([]serviceItem, 0, len(services))
	for _, s := range services {
		items = append(items, toServiceItem(s))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"total":    len(items),
		"services": items,
	})
}

// Get serves /api/v1/services/{id}.
func (h *ServicesHandler) Get(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/v1/services/")
	if id == "" || strings.Contains(id, "/") {
		http.Error(w, "service id required", http.StatusBadRequest)
		return
	}

	svc, err := h.catalog.GetService(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toServiceItem(*svc))
}
