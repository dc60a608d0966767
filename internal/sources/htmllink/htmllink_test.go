package htmllink

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const listingHTML = `
<html><body>
<h2>Court Records</h2>
<ul>
  <li><a href="/library/files/maxwell-ruling.pdf">United States v. Maxwell — Ruling</a></li>
  <li><a href="files/giuffre-2015.pdf">Giuffre Filing  (2015)</a></li>
  <li><a href="https://other.example.org/offsite.pdf">Offsite</a></li>
  <li><a href="#top">Back to top</a></li>
  <li><a href="javascript:void(0)">Noise</a></li>
  <li><a href="mailto:foia@example.gov">Contact</a></li>
  <li><a href="/library/about">About the library</a></li>
</ul>
</body></html>`

func TestParse(t *testing.T) {
	base, _ := url.Parse("https://example.gov/library/court-records")
	links, err := Parse(base, strings.NewReader(listingHTML))
	require.NoError(t, err)

	require.Len(t, links, 3)
	assert.Equal(t, "https://example.gov/library/files/maxwell-ruling.pdf", links[0].URL)
	assert.Equal(t, "United States v. Maxwell — Ruling", links[0].Text)
	assert.Equal(t, "https://example.gov/library/files/giuffre-2015.pdf", links[1].URL)
	assert.Equal(t, "Giuffre Filing (2015)", links[1].Text)
	assert.Equal(t, "https://example.gov/library/about", links[2].URL)
}

func TestExtension(t *testing.T) {
	assert.Equal(t, ".pdf", Extension("https://example.gov/a/b.PDF"))
	assert.Equal(t, "", Extension("https://example.gov/a/b"))
	assert.Equal(t, ".csv", Extension("https://example.gov/x.csv?dl=1"))
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "b.pdf", FileName("https://example.gov/a/b.pdf"))
}
