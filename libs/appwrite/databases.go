package appwrite

import (
	"context"
	"net/http"
	"net/url"
)

// Document CRUD against (collection, id) within the configured database.
// Callers supply their own document structs; list responses decode into
// an envelope shaped like:
//
//	struct {
//		Total     int   `json:"total"`
//		Documents []T   `json:"documents"`
//	}

func (c *Client) CreateDocument(ctx context.Context, collectionID, documentID string, data, out any) error {
	body := map[string]any{
		"documentId": documentID,
		"data":       data,
	}
	return c.call(ctx, http.MethodPost, c.documentsPath(collectionID), nil, body, out)
}

func (c *Client) GetDocument(ctx context.Context, collectionID, documentID string, out any) error {
	return c.call(ctx, http.MethodGet, c.documentsPath(collectionID)+"/"+url.PathEscape(documentID), nil, nil, out)
}

// ListDocuments returns documents in store insertion order, optionally
// narrowed by queries. No ordering is applied client-side.
func (c *Client) ListDocuments(ctx context.Context, collectionID string, queries []Query, out any) error {
	var q url.Values
	if len(queries) > 0 {
		q = url.Values{}
		for _, query := range queries {
			q.Add("queries[]", query.String())
		}
	}
	return c.call(ctx, http.MethodGet, c.documentsPath(collectionID), q, nil, out)
}

func (c *Client) UpdateDocument(ctx context.Context, collectionID, documentID string, data, out any) error {
	body := map[string]any{"data": data}
	return c.call(ctx, http.MethodPatch, c.documentsPath(collectionID)+"/"+url.PathEscape(documentID), nil, body, out)
}

func (c *Client) DeleteDocument(ctx context.Context, collectionID, documentID string) error {
	return c.call(ctx, http.MethodDelete, c.documentsPath(collectionID)+"/"+url.PathEscape(documentID), nil, nil, nil)
}

func (c *Client) documentsPath(collectionID string) string {
	return "/databases/" + url.PathEscape(c.cfg.DatabaseID) + "/collections/" + url.PathEscape(collectionID) + "/documents"
}
