package service

import (
	"strings"

	"cartagent/internal/model"
)

// DefaultAmazonURL is the canonical storefront base URL.
const DefaultAmazonURL = "https://www.amazon.in"

// FixProductURL repairs malformed Amazon product URLs: relative paths,
// wrong domains and bare ASINs are all rebuilt against the canonical
// storefront base. Rules are applied in order, first match wins.
//
// Known limitation: an absolute URL on a wrong domain without a /dp/
// segment falls through to domain prepending, which can produce a
// syntactically valid but semantically wrong URL.
func FixProductURL(base, url string) (string, error) {
	if strings.TrimSpace(url) == "" {
		return "", &model.InvalidInputError{Reason: "URL cannot be empty"}
	}

	url = strings.TrimSpace(url)
	domain := storefrontDomain(base)

	// Already absolute: keep if on the storefront, otherwise salvage the ASIN
	if strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://") {
		if strings.Contains(url, domain) {
			return url, nil
		}
		if id := productIDFrom(url); id != "" {
			return base + "/dp/" + id, nil
		}
	}

	// Root-relative path
	if strings.HasPrefix(url, "/") {
		return base + url, nil
	}

	// Relative with a recognizable product segment
	if id := productIDFrom(url); id != "" {
		return base + "/dp/" + id, nil
	}

	// Bare ASIN token
	if len(url) == 10 && strings.HasPrefix(url, "B") {
		return base + "/dp/" + url, nil
	}

	// Anything else without a scheme gets the storefront prepended
	if !strings.HasPrefix(url, "http") {
		return base + "/" + url, nil
	}

	return url, nil
}

// productIDFrom extracts the ASIN following a /dp/ segment, cut at the
// next path or query separator.
func productIDFrom(url string) string {
	_, rest, found := strings.Cut(url, "/dp/")
	if !found {
		return ""
	}
	rest, _, _ = strings.Cut(rest, "/")
	rest, _, _ = strings.Cut(rest, "?")
	return rest
}

// storefrontDomain strips the scheme from a base URL, leaving the host
// used for same-domain checks.
func storefrontDomain(base string) string {
	domain := strings.TrimPrefix(base, "https://")
	domain = strings.TrimPrefix(domain, "http://")
	return strings.TrimSuffix(domain, "/")
}
