package research

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Aman-CERP/amanweb/internal/domains"
)

func TestParseCategory(t *testing.T) {
	tests := []struct {
		reply string
		want  domains.Category
	}{
		{"battery", domains.CategoryBattery},
		{"  Battery.\n", domains.CategoryBattery},
		{"Category: AUTOMATION", domains.CategoryAutomation},
		{"semiconductor", domains.CategorySemiconductor},
		{"semiconductor automation", domains.CategoryAutomation},
		{"cooking", domains.CategoryGeneral},
		{"", domains.CategoryGeneral},
	}
	for _, tt := range tests {
		t.Run(tt.reply, func(t *testing.T) {
			assert.Equal(t, tt.want, parseCategory(tt.reply))
		})
	}
}

func TestParseGeneratedQueries(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  []string
	}{
		{
			name:  "numbered list",
			reply: "1. electrode slurry mixing\n2. calendering pressure control\n3. third query ignored",
			want:  []string{"electrode slurry mixing", "calendering pressure control"},
		},
		{
			name:  "bullets and short lines",
			reply: "- short\n* slot die coating defects\n\n",
			want:  []string{"slot die coating defects"},
		},
		{
			name:  "overlong line dropped",
			reply: strings.Repeat("y", 120) + "\nvalid query text",
			want:  []string{"valid query text"},
		},
		{name: "empty", reply: "", want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseGeneratedQueries(tt.reply))
		})
	}
}

func TestParseGapResponse(t *testing.T) {
	tests := []struct {
		name       string
		reply      string
		sufficient bool
		queries    []string
	}{
		{"sufficient token", "The results are SUFFICIENT.", true, nil},
		{"two queries", "1. binder migration drying\n2. slot die edge defects\n3. extra", false, []string{"binder migration drying", "slot die edge defects"}},
		{"dash list", "- anode overhang design", false, []string{"anode overhang design"}},
		{"nothing usable", "ok\n\n", true, nil},
		{"empty", "", true, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sufficient, queries := parseGapResponse(tt.reply)

			assert.Equal(t, tt.sufficient, sufficient)
			assert.Equal(t, tt.queries, queries)
		})
	}
}
