package ops

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/Qubut/IP-Claim/packages/epo_mcp/internal/identifier"
)

// Reference types accepted by OPS.
const (
	RefPublication = "publication"
	RefApplication = "application"
	RefPriority    = "priority"
)

const imagesPrefix = "published-data/images/"

// Range is an inclusive, 1-based result window.
type Range struct {
	Begin int
	End   int
}

func (r Range) String() string {
	return fmt.Sprintf("%d-%d", r.Begin, r.End)
}

// PublishedData retrieves one published-data endpoint (biblio, abstract,
// claims, ...) for a document.
func (c *Client) PublishedData(ctx context.Context, ref string, id identifier.Identifier, endpoint string) (*Response, error) {
	return c.post(ctx, "published_data", id.APIInput(),
		"published-data", ref, id.Format(), endpoint)
}

// PublishedDataSearch runs a CQL query against published-data/search.
func (c *Client) PublishedDataSearch(ctx context.Context, cql string, rng Range, constituents []string) (*Response, error) {
	segments := []string{"published-data", "search"}
	if len(constituents) > 0 {
		segments = append(segments, strings.Join(constituents, ","))
	}
	q := url.Values{}
	q.Set("q", cql)
	q.Set("Range", rng.String())
	return c.get(ctx, "published_data_search", q, acceptXML, segments...)
}

// Family retrieves the INPADOC family of a document. An empty endpoint
// returns the bare family list.
func (c *Client) Family(ctx context.Context, ref string, id identifier.Identifier, endpoint string, constituents []string) (*Response, error) {
	segments := []string{"family", ref, id.Format()}
	if endpoint != "" {
		segments = append(segments, endpoint)
	}
	if len(constituents) > 0 {
		segments = append(segments, strings.Join(constituents, ","))
	}
	return c.post(ctx, "family", id.APIInput(), segments...)
}

func (c *Client) Legal(ctx context.Context, ref string, id identifier.Identifier) (*Response, error) {
	return c.post(ctx, "legal", id.APIInput(), "legal", ref, id.Format())
}

// Register retrieves EP Register data. The register only speaks epodoc.
func (c *Client) Register(ctx context.Context, ref string, id identifier.Epodoc, constituents []string) (*Response, error) {
	constituent := "biblio"
	if len(constituents) > 0 {
		constituent = strings.Join(constituents, ",")
	}
	return c.post(ctx, "register", id.APIInput(), "register", ref, id.Format(), constituent)
}

func (c *Client) RegisterSearch(ctx context.Context, cql string, rng Range) (*Response, error) {
	q := url.Values{}
	q.Set("q", cql)
	q.Set("Range", rng.String())
	return c.get(ctx, "register_search", q, acceptXML, "register", "search")
}

// Image fetches one page of a document image. path is the link OPS returns
// in an images inquiry, with or without the published-data/images/ prefix.
func (c *Client) Image(ctx context.Context, path string, page int, documentFormat string) (*Response, error) {
	path = strings.TrimLeft(path, "/")
	if !strings.HasPrefix(path, imagesPrefix) {
		path = imagesPrefix + path
	}
	q := url.Values{}
	q.Set("Range", strconv.Itoa(page))
	return c.get(ctx, "image", q, documentFormat, path)
}

// Number converts a document number between formats.
func (c *Client) Number(ctx context.Context, ref string, id identifier.Identifier, outputFormat string) (*Response, error) {
	return c.post(ctx, "number", id.APIInput(), "number-service", ref, id.Format(), outputFormat)
}
