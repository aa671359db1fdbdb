// Package catalog reads the externally managed collection of bookable
// services. No ordering is applied; the store's insertion order is
// preserved, and failures propagate without retries.
package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/daddycoders/oneroof/libs/appwrite"
	"github.com/daddycoders/oneroof/services/oneroof-api/internal/model"
)

type Reader struct {
	gw *appwrite.Client
}

func NewReader(gw *appwrite.Client) *Reader {
	return &Reader{gw: gw}
}

type serviceDoc struct {
	ID          string  `json:"$id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Image       string  `json:"image"`
	Price       float64 `json:"price"`
	Available   bool    `json:"available"`
}

func (r *Reader) toModel(doc serviceDoc) (model.Service, error) {
	if doc.Price < 0 {
		return model.Service{}, fmt.Errorf("%w: service %s has negative price", model.ErrCatalogFetch, doc.ID)
	}
	imageURL := doc.Image
	if imageURL != "" && !strings.HasPrefix(imageURL, "http") {
		// Bare storage file ids resolve to the bucket's view URL.
		imageURL = r.gw.FileViewURL(imageURL)
	}
	return model.Service{
		ID:          doc.ID,
		Name:        doc.Name,
		Description: doc.Description,
		ImageURL:    imageURL,
		Price:       doc.Price,
		Available:   doc.Available,
	}, nil
}

func (r *Reader) ListServices(ctx context.Context) ([]model.Service, error) {
	var list struct {
		Total     int          `json:"total"`
		Documents []serviceDoc `json:"documents"`
	}
	cfg := r.gw.Config()
	if err := r.gw.ListDocuments(ctx, cfg.ServicesCollectionID, nil, &list); err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrCatalogFetch, err)
	}
	services := make([]model.Service, 0, len(list.Documents))
	for _, doc := range list.Documents {
		svc, err := r.toModel(doc)
		if err != nil {
			return nil, err
		}
		services = append(services, svc)
	}
	return services, nil
}

func (r *Reader) GetService(ctx context.Context, id string) (*model.Service, error) {
	var doc serviceDoc
	cfg := r.gw.Config()
	if err := r.gw.GetDocument(ctx, cfg.ServicesCollectionID, id, &doc); err != nil {
		if appwrite.IsNotFound(err) {
			return nil, fmt.Errorf("%w: %s", model.ErrServiceNotFound, id)
		}
		return nil, fmt.Errorf("%w: %w", model.ErrCatalogFetch, err)
	}
	svc, err := r.toModel(doc)
	if err != nil {
		return nil, err
	}
	return &svc, nil
}
