package mcp

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Aman-CERP/amanweb/internal/domains"
)

// Resource URIs.
const (
	ResourceProfiles  = "amanweb://profiles"
	ResourceBlocklist = "amanweb://blocklist"
)

// profilesDoc is the JSON body of the profiles resource.
type profilesDoc struct {
	Modes      map[string]domains.Profile `json:"modes"`
	Categories map[string]domains.Profile `json:"categories"`
}

// registerResources exposes the domain registry so clients can see how
// results will be ranked and filtered.
func (s *Server) registerResources() {
	for _, info := range s.resourceList() {
		uri := info.URI
		s.mcp.AddResource(
			&mcp.Resource{
				Name:     info.Name,
				URI:      uri,
				MIMEType: info.MIMEType,
			},
			func(ctx context.Context, _ *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
				content, err := s.ReadResource(ctx, uri)
				if err != nil {
					return nil, err
				}
				return &mcp.ReadResourceResult{
					Contents: []*mcp.ResourceContents{
						{
							URI:      content.URI,
							MIMEType: content.MIMEType,
							Text:     content.Content,
						},
					},
				}, nil
			},
		)
	}
	s.logger.Debug("registered resources")
}

func (s *Server) resourceList() []ResourceInfo {
	return []ResourceInfo{
		{URI: ResourceProfiles, Name: "Search profiles", MIMEType: "application/json"},
		{URI: ResourceBlocklist, Name: "Blocked domains", MIMEType: "text/plain"},
	}
}

// ListResources returns all available resources.
func (s *Server) ListResources(_ context.Context) []ResourceInfo {
	return s.resourceList()
}

// ReadResource reads a resource by URI.
func (s *Server) ReadResource(_ context.Context, uri string) (*ResourceContent, error) {
	switch uri {
	case ResourceProfiles:
		doc := profilesDoc{
			Modes:      make(map[string]domains.Profile),
			Categories: make(map[string]domains.Profile),
		}
		for _, m := range []domains.Category{domains.CategoryScientific, domains.CategoryIndustrial, domains.CategoryCode, domains.CategoryGeneral} {
			if p, ok := s.registry.ModeProfile(string(m)); ok {
				doc.Modes[string(m)] = p
			}
		}
		for _, c := range []domains.Category{domains.CategoryBattery, domains.CategoryAutomation, domains.CategorySemiconductor, domains.CategoryGeneral} {
			doc.Categories[string(c)] = s.registry.CategoryProfile(c)
		}
		body, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, MapError(err)
		}
		return &ResourceContent{URI: uri, Content: string(body), MIMEType: "application/json"}, nil
	case ResourceBlocklist:
		return &ResourceContent{
			URI:      uri,
			Content:  strings.Join(s.registry.Blocked, "\n") + "\n",
			MIMEType: "text/plain",
		}, nil
	default:
		return nil, NewResourceNotFoundError(uri)
	}
}
