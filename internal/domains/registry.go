// Package domains holds the read-only domain registry used by the research
// pipeline: curated domain lists, topic profiles, scoring tables and the
// patterns that sort results into context buckets.
//
// A Registry is built once from YAML and never mutated, so it is safe to
// share between concurrent requests.
package domains

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/Aman-CERP/amanweb/configs"
	amerrors "github.com/Aman-CERP/amanweb/internal/errors"
)

// Category names a domain profile.
type Category string

// Categories produced by automatic classification.
const (
	CategoryBattery       Category = "battery"
	CategoryAutomation    Category = "automation"
	CategorySemiconductor Category = "semiconductor"
	CategoryGeneral       Category = "general"
)

// Categories used by manually selected modes.
const (
	CategoryScientific Category = "scientific"
	CategoryIndustrial Category = "industrial"
	CategoryCode       Category = "code"
)

// Profile is the bundle of preferred sources, scoring keywords and engine
// selection tied to one category. Treat it as immutable.
type Profile struct {
	Category         Category `json:"category"`
	PreferredDomains []string `json:"preferred_domains"`
	ScoringKeywords  []string `json:"scoring_keywords"`
	Engines          string   `json:"engines"`
}

// Bucket is a context section a result is rendered under.
type Bucket string

const (
	BucketPapers   Bucket = "papers"
	BucketCode     Bucket = "code"
	BucketIndustry Bucket = "industry"
	BucketGeneral  Bucket = "general"
)

// AuthorityBonus adds Bonus when Match occurs in a result URL.
type AuthorityBonus struct {
	Match string  `yaml:"match"`
	Bonus float64 `yaml:"bonus"`
}

// AmbiguousTerm removes results about an unrelated namesake of Term.
type AmbiguousTerm struct {
	Term   string
	unless *regexp.Regexp
	drop   *regexp.Regexp
}

type bucketRule struct {
	name    Bucket
	pattern *regexp.Regexp
}

// Registry is the immutable domain configuration.
type Registry struct {
	UserProfile string

	Preferred  []string
	News       []string
	Code       []string
	Industrial []string
	Blocked    []string

	faviconURL string
	whitelist  []string
	categories map[Category]Profile
	modes      map[string]Profile
	authority  []AuthorityBonus
	noise      []*regexp.Regexp
	ambiguous  []AmbiguousTerm
	buckets    []bucketRule
}

type profileDoc struct {
	Include          []string `yaml:"include"`
	PreferredDomains []string `yaml:"preferred_domains"`
	ScoringKeywords  []string `yaml:"scoring_keywords"`
	Engines          string   `yaml:"engines"`
}

type registryDoc struct {
	Version     int                   `yaml:"version"`
	UserProfile string                `yaml:"user_profile"`
	FaviconURL  string                `yaml:"favicon_url"`
	Lists       map[string][]string   `yaml:"lists"`
	Categories  map[string]profileDoc `yaml:"categories"`
	Modes       map[string]profileDoc `yaml:"modes"`
	Authority   []AuthorityBonus      `yaml:"authority"`
	Noise       []string              `yaml:"noise_patterns"`
	Ambiguous   []struct {
		Term   string `yaml:"term"`
		Unless string `yaml:"unless"`
		Drop   string `yaml:"drop"`
	} `yaml:"ambiguous_terms"`
	Buckets []struct {
		Name    string `yaml:"name"`
		Pattern string `yaml:"pattern"`
	} `yaml:"buckets"`
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the registry built from the embedded domains.yaml.
// The embedded document is covered by tests, so a parse failure is a build
// defect and panics.
func Default() *Registry {
	defaultOnce.Do(func() {
		r, err := Load(configs.DomainsYAML)
		if err != nil {
			panic(fmt.Sprintf("embedded domain registry: %v", err))
		}
		defaultRegistry = r
	})
	return defaultRegistry
}

// LoadFile builds a registry from a YAML file on disk.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, amerrors.New(amerrors.ErrCodeRegistryLoad, "failed to read domain registry "+path, err)
	}
	return Load(data)
}

// Load builds a registry from a YAML document.
func Load(data []byte) (*Registry, error) {
	var doc registryDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, amerrors.New(amerrors.ErrCodeRegistryLoad, "failed to parse domain registry", err)
	}

	r := &Registry{
		UserProfile: strings.TrimSpace(doc.UserProfile),
		Preferred:   lowerAll(doc.Lists["preferred"]),
		News:        lowerAll(doc.Lists["news"]),
		Code:        lowerAll(doc.Lists["code"]),
		Industrial:  lowerAll(doc.Lists["industrial"]),
		Blocked:     lowerAll(doc.Lists["blocked"]),
		faviconURL:  doc.FaviconURL,
		categories:  make(map[Category]Profile, len(doc.Categories)),
		modes:       make(map[string]Profile, len(doc.Modes)),
		authority:   doc.Authority,
	}
	if r.faviconURL == "" {
		r.faviconURL = "https://www.google.com/s2/favicons?domain=%s&sz=32"
	}
	r.whitelist = append(append([]string{}, r.Preferred...), r.News...)

	for name, p := range doc.Categories {
		prof, err := r.buildProfile(Category(name), p, doc.Lists)
		if err != nil {
			return nil, err
		}
		r.categories[Category(name)] = prof
	}
	for name, p := range doc.Modes {
		prof, err := r.buildProfile(Category(name), p, doc.Lists)
		if err != nil {
			return nil, err
		}
		r.modes[name] = prof
	}
	if _, ok := r.categories[CategoryGeneral]; !ok {
		return nil, amerrors.New(amerrors.ErrCodeRegistryLoad, "domain registry has no general category", nil)
	}

	for _, p := range doc.Noise {
		re, err := compileCI(p)
		if err != nil {
			return nil, err
		}
		r.noise = append(r.noise, re)
	}
	for _, a := range doc.Ambiguous {
		unless, err := compileCI(a.Unless)
		if err != nil {
			return nil, err
		}
		drop, err := compileCI(a.Drop)
		if err != nil {
			return nil, err
		}
		r.ambiguous = append(r.ambiguous, AmbiguousTerm{Term: strings.ToLower(a.Term), unless: unless, drop: drop})
	}
	for _, b := range doc.Buckets {
		re, err := compileCI(b.Pattern)
		if err != nil {
			return nil, err
		}
		r.buckets = append(r.buckets, bucketRule{name: Bucket(b.Name), pattern: re})
	}

	return r, nil
}

func (r *Registry) buildProfile(cat Category, p profileDoc, lists map[string][]string) (Profile, error) {
	var preferred []string
	for _, name := range p.Include {
		list, ok := lists[name]
		if !ok {
			return Profile{}, amerrors.New(amerrors.ErrCodeRegistryLoad,
				fmt.Sprintf("profile %s includes unknown list %q", cat, name), nil)
		}
		preferred = append(preferred, lowerAll(list)...)
	}
	preferred = append(preferred, lowerAll(p.PreferredDomains)...)

	return Profile{
		Category:         cat,
		PreferredDomains: preferred,
		ScoringKeywords:  lowerAll(p.ScoringKeywords),
		Engines:          p.Engines,
	}, nil
}

func compileCI(pattern string) (*regexp.Regexp, error) {
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return nil, amerrors.New(amerrors.ErrCodeRegistryLoad, fmt.Sprintf("bad pattern %q", pattern), err)
	}
	return re, nil
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		out = append(out, strings.ToLower(strings.TrimSpace(s)))
	}
	return out
}

// CategoryProfile returns the profile for an auto-classified category,
// falling back to general for unknown names.
func (r *Registry) CategoryProfile(c Category) Profile {
	if p, ok := r.categories[c]; ok {
		return p
	}
	return r.categories[CategoryGeneral]
}

// ModeProfile returns the fixed profile for a manually selected mode.
func (r *Registry) ModeProfile(mode string) (Profile, bool) {
	p, ok := r.modes[mode]
	return p, ok
}
