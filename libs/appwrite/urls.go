package appwrite

import "net/url"

// InitialsAvatarURL derives the deterministic initials avatar for a
// display name. Pure URL construction, no network round trip.
func (c *Client) InitialsAvatarURL(name string) string {
	q := url.Values{}
	q.Set("name", name)
	q.Set("project", c.cfg.Project)
	return c.cfg.Endpoint + "/avatars/initials?" + q.Encode()
}

// FileViewURL renders the public view URL for a file in the configured
// storage bucket.
func (c *Client) FileViewURL(fileID string) string {
	return c.cfg.Endpoint + "/storage/buckets/" + url.PathEscape(c.cfg.StorageBucketID) +
		"/files/" + url.PathEscape(fileID) + "/view?project=" + url.QueryEscape(c.cfg.Project)
}
