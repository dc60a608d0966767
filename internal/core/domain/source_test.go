package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllowsExtensionEitherDotConvention(t *testing.T) {
	dotted := Source{AllowedExtensions: []string{".pdf", ".Eml"}}
	bare := Source{AllowedExtensions: []string{"pdf", "eml"}}

	for _, src := range []Source{dotted, bare} {
		assert.True(t, src.AllowsExtension(".pdf"))
		assert.True(t, src.AllowsExtension("pdf"))
		assert.True(t, src.AllowsExtension(".PDF"))
		assert.True(t, src.AllowsExtension("eml"))
		assert.False(t, src.AllowsExtension(".zip"))
		assert.False(t, src.AllowsExtension("zip"))
	}
}

func TestAllowsExtensionEmptyFilterAllowsAll(t *testing.T) {
	src := Source{}
	assert.True(t, src.AllowsExtension(".anything"))
	assert.True(t, src.AllowsExtension(""))
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "court-records", Slugify("Court Records"))
	assert.Equal(t, "agency-files-2019", Slugify("Agency Files: 2019"))
}
