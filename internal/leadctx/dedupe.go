package leadctx

import (
	"net/url"
	"strings"

	"github.com/leadscoutai/leadscout/internal/models"
)

// DedupeKey computes a Lead's canonical identity per the priority chain
// in the data model: normalized profile URL, then normalized
// (name, company), then normalized email, then normalized name alone.
// Returns "" only when none of the four can be formed (no parsable
// profile URL, no email and no name).
func DedupeKey(lead models.Lead) string {
	if key := canonicalizeProfileURL(lead.ProfileURL); key != "" {
		return "url:" + key
	}
	if lead.Name != "" && lead.Company != "" {
		return "namecompany:" + normalize(lead.Name) + "|" + normalize(lead.Company)
	}
	if lead.Email != "" {
		return "email:" + normalize(lead.Email)
	}
	if lead.Name != "" {
		return "name:" + normalize(lead.Name)
	}
	return ""
}

// canonicalizeProfileURL lowercases the host, drops scheme/www/query/
// fragment/trailing slash, so that equivalent profile links dedupe
// together regardless of how each worker formatted them.
func canonicalizeProfileURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return ""
	}
	host := strings.ToLower(strings.TrimPrefix(u.Host, "www."))
	path := strings.TrimSuffix(u.Path, "/")
	return host + path
}
