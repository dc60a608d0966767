// Package sources builds discovery adapters from source configuration.
// Each source kind maps to one adapter implementation; the coordinator
// only ever sees the SourceAdapter port.
package sources

import (
	"fmt"
	"net/http"

	"github.com/archivelab/papertrail/internal/core/domain"
	"github.com/archivelab/papertrail/internal/core/ports/driven"
	"github.com/archivelab/papertrail/internal/sources/dropfolder"
	"github.com/archivelab/papertrail/internal/sources/enumerate"
	"github.com/archivelab/papertrail/internal/sources/listing"
	"github.com/archivelab/papertrail/internal/sources/paginated"
)

// Options configure adapter construction.
type Options struct {
	// Client is used by network-backed adapters for discovery requests.
	Client *http.Client

	// UserAgent is sent on every discovery request.
	UserAgent string

	// Watch enables live watching for dropfolder sources.
	Watch bool
}

// New returns the adapter for a source's kind.
func New(source domain.Source, opts Options) (driven.SourceAdapter, error) {
	client := opts.Client
	if client == nil {
		client = http.DefaultClient
	}

	switch source.Kind {
	case domain.KindListing:
		return listing.New(source, client, opts.UserAgent), nil
	case domain.KindPaginated:
		return paginated.New(source, client, opts.UserAgent), nil
	case domain.KindEnumerate:
		return enumerate.New(source), nil
	case domain.KindDropFolder:
		return dropfolder.New(source, opts.Watch), nil
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedKind, source.Kind)
	}
}
