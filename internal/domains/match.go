package domains

import (
	"fmt"
	"net/url"
	"strings"
)

// ExtractDomain returns the lower-cased host of rawURL with "www." removed.
// Unparseable or host-less input is returned lower-cased as-is.
func ExtractDomain(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Hostname() == "" {
		return strings.ToLower(rawURL)
	}
	return strings.Replace(strings.ToLower(u.Hostname()), "www.", "", 1)
}

// FirstMatch returns the first entry of list that occurs in domain.
func FirstMatch(domain string, list []string) (string, bool) {
	d := strings.ToLower(domain)
	for _, entry := range list {
		if strings.Contains(d, entry) {
			return entry, true
		}
	}
	return "", false
}

func matchesAny(domain string, list []string) bool {
	_, ok := FirstMatch(domain, list)
	return ok
}

// Favicon returns the favicon service URL for domain.
func (r *Registry) Favicon(domain string) string {
	return fmt.Sprintf(r.faviconURL, domain)
}

// IsBlocked reports whether domain is on the global blocklist.
func (r *Registry) IsBlocked(domain string) bool { return matchesAny(domain, r.Blocked) }

// IsWhitelisted reports whether domain is a preferred or news source.
func (r *Registry) IsWhitelisted(domain string) bool { return matchesAny(domain, r.whitelist) }

// IsNews reports whether domain is a curated news outlet.
func (r *Registry) IsNews(domain string) bool { return matchesAny(domain, r.News) }

// IsCode reports whether domain is a code-hosting or Q&A site.
func (r *Registry) IsCode(domain string) bool { return matchesAny(domain, r.Code) }

// IsIndustrial reports whether domain belongs to a standards body or vendor.
func (r *Registry) IsIndustrial(domain string) bool { return matchesAny(domain, r.Industrial) }

// Authority returns the summed authority bonus for a result URL.
func (r *Registry) Authority(rawURL string) float64 {
	u := strings.ToLower(rawURL)
	var bonus float64
	for _, a := range r.authority {
		if strings.Contains(u, a.Match) {
			bonus += a.Bonus
		}
	}
	return bonus
}

// IsNoise reports whether text or the URL matches a strict-pass noise pattern.
func (r *Registry) IsNoise(text, rawURL string) bool {
	for _, re := range r.noise {
		if re.MatchString(text) || re.MatchString(rawURL) {
			return true
		}
	}
	return false
}

// AmbiguousMismatch reports whether text is about the unrelated namesake of
// an ambiguous term the query uses.
func (r *Registry) AmbiguousMismatch(query, text string) bool {
	q := strings.ToLower(query)
	for _, a := range r.ambiguous {
		if !strings.Contains(q, a.Term) || a.unless.MatchString(q) {
			continue
		}
		if a.drop.MatchString(text) {
			return true
		}
	}
	return false
}

// BucketOf assigns domain to the first bucket whose pattern matches.
func (r *Registry) BucketOf(domain string) Bucket {
	for _, b := range r.buckets {
		if b.pattern.MatchString(domain) {
			return b.name
		}
	}
	return BucketGeneral
}
