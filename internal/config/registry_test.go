package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archivelab/papertrail/internal/core/domain"
)

const registryYAML = `
sources:
  - id: doj-court-records
    name: DOJ Library Court Records
    kind: listing
    base_url: https://example.gov/library/court-records
    auth_mode: cookie
    referer: https://example.gov/library
    requests_per_second: 2
    release_date: "2024-01-03"
    tags: [court-records]
    allowed_extensions: [".pdf"]
  - id: dataset-files
    name: DataSet Files
    kind: enumerate
    base_url: https://example.gov/library
    pattern: "files/DataSet%201/EFTA%08d.pdf"
    enumerate_from: 1
    enumerate_to: 500
  - id: local-drop
    name: Local Drop Folder
    kind: dropfolder
    base_url: /srv/papertrail/drop
`

func TestParseRegistry(t *testing.T) {
	reg, err := ParseRegistry([]byte(registryYAML))
	require.NoError(t, err)
	require.Len(t, reg.Sources, 3)

	src, err := reg.Get("doj-court-records")
	require.NoError(t, err)
	assert.Equal(t, domain.KindListing, src.Kind)
	assert.Equal(t, domain.AuthCookie, src.AuthMode)
	assert.Equal(t, "https://example.gov/library", src.Referer)
	assert.True(t, src.AllowsExtension(".pdf"))
	assert.False(t, src.AllowsExtension(".zip"))
	assert.Equal(t, "doj-library-court-records", src.Slug())
}

func TestParseRegistry_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "unknown kind",
			yaml: "sources:\n  - {id: a, name: A, kind: ftp, base_url: x}\n",
		},
		{
			name: "duplicate id",
			yaml: "sources:\n  - {id: a, name: A, kind: listing, base_url: x}\n  - {id: a, name: B, kind: listing, base_url: y}\n",
		},
		{
			name: "enumerate without pattern",
			yaml: "sources:\n  - {id: a, name: A, kind: enumerate, base_url: x}\n",
		},
		{
			name: "missing base url",
			yaml: "sources:\n  - {id: a, name: A, kind: listing}\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRegistry([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestRegistry_Select(t *testing.T) {
	reg, err := ParseRegistry([]byte(registryYAML))
	require.NoError(t, err)

	all, err := reg.Select(nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	some, err := reg.Select([]string{"local-drop"})
	require.NoError(t, err)
	require.Len(t, some, 1)
	assert.Equal(t, "local-drop", some[0].ID)

	_, err = reg.Select([]string{"missing"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
