// Package biblio extracts compact summaries from OPS bibliographic replies
// (published-data biblio and family biblio).
package biblio

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/IBM/fp-go/v2/array"
	ET "github.com/IBM/fp-go/v2/either"
	F "github.com/IBM/fp-go/v2/function"
	IO "github.com/IBM/fp-go/v2/io"
	IOE "github.com/IBM/fp-go/v2/ioeither"
	"github.com/IBM/fp-go/v2/option"
	"github.com/antchfx/xmlquery"
)

var ErrNoDocuments = errors.New("no exchange-document in response")

// Summarize parses body and summarizes every exchange-document in it.
func Summarize(body []byte) ([]Summary, error) {
	return ET.UnwrapError(F.Pipe2(
		IOE.TryCatchError(func() (*xmlquery.Node, error) {
			return xmlquery.Parse(bytes.NewReader(body))
		}),
		IOE.Chain(func(doc *xmlquery.Node) IOE.IOEither[error, []*xmlquery.Node] {
			return IOE.TryCatchError(func() ([]*xmlquery.Node, error) {
				nodes, err := xmlquery.QueryAll(doc, "//*[local-name()='exchange-document']")
				if err == nil && len(nodes) == 0 {
					err = ErrNoDocuments
				}
				return nodes, err
			})
		}),
		IOE.Chain(IOE.TraverseArray(func(node *xmlquery.Node) IOE.IOEither[error, Summary] {
			return IOE.TryCatchError(func() (Summary, error) {
				return summaryFromNode(node)
			})
		})),
	)())
}

func summaryFromNode(node *xmlquery.Node) (Summary, error) {
	country := node.SelectAttr("country")
	docNumber := node.SelectAttr("doc-number")
	kind := node.SelectAttr("kind")
	if country == "" || docNumber == "" || kind == "" {
		return Summary{}, fmt.Errorf("exchange-document %q: missing country, doc-number or kind", country+docNumber+kind)
	}
	s := Summary{
		PatentID:   country + docNumber + kind,
		Country:    country,
		DocNumber:  docNumber,
		Kind:       kind,
		Status:     node.SelectAttr("status"),
		FamilyID:   node.SelectAttr("family-id"),
		Titles:     titles(node),
		Applicants: applicants(node),
		IPCR:       ipcr(node),
		CPC:        cpc(node),
		Citations:  citations(node),
	}
	if pub := xmlquery.FindOne(node, ".//*[local-name()='publication-reference']/*[local-name()='document-id'][@document-id-type='docdb']"); pub != nil {
		s.PublicationDate = getText(pub, "*[local-name()='date']")
	}
	return s, nil
}

func titles(node *xmlquery.Node) map[string]string {
	out := make(map[string]string)
	for _, t := range xmlquery.Find(node, ".//*[local-name()='invention-title']") {
		if text := strings.TrimSpace(t.InnerText()); text != "" {
			out[t.SelectAttr("lang")] = text
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// applicants prefers the epodoc spelling and falls back to whatever is present.
func applicants(node *xmlquery.Node) []string {
	names := func(format string) []string {
		return F.Pipe2(
			xmlquery.Find(node, ".//*[local-name()='applicant']"+format+"/*[local-name()='applicant-name']/*[local-name()='name']"),
			array.Map(func(n *xmlquery.Node) string { return strings.TrimSpace(n.InnerText()) }),
			array.Filter(func(s string) bool { return s != "" }),
		)
	}
	if epodoc := names("[@data-format='epodoc']"); len(epodoc) > 0 {
		return epodoc
	}
	if all := names(""); len(all) > 0 {
		return all
	}
	return nil
}

func ipcr(node *xmlquery.Node) []string {
	return sortedSet(F.Pipe1(
		xmlquery.Find(node, ".//*[local-name()='classification-ipcr']/*[local-name()='text']"),
		array.Map(func(n *xmlquery.Node) string { return ipcrSymbol(n.InnerText()) }),
	))
}

// ipcrSymbol turns the fixed-width OPS text, e.g. "B21D  51/   46  A I",
// into "B21D 51/46".
func ipcrSymbol(text string) string {
	f := strings.Fields(text)
	if len(f) >= 3 && strings.HasSuffix(f[1], "/") {
		return f[0] + " " + f[1] + f[2]
	}
	return strings.Join(f, " ")
}

func cpc(node *xmlquery.Node) []string {
	classifications := F.Pipe2(
		IOE.TryCatchError(func() ([]*xmlquery.Node, error) {
			return xmlquery.QueryAll(node, ".//*[local-name()='patent-classification']")
		}),
		IOE.Chain(
			IOE.TraverseArray(func(n *xmlquery.Node) IOE.IOEither[error, PatentClassification] {
				schemeNode := xmlquery.FindOne(n, "*[local-name()='classification-scheme']")
				if schemeNode == nil {
					return IOE.Left[PatentClassification](fmt.Errorf("missing classification-scheme"))
				}
				scheme := schemeNode.SelectAttr("scheme")
				if scheme == "" {
					return IOE.Left[PatentClassification](fmt.Errorf("missing scheme attribute"))
				}
				return IOE.Right[error](PatentClassification{Scheme: scheme, ClassificationSymbol: cpcSymbol(n)})
			}),
		),
		IOE.GetOrElse(func(_ error) IO.IO[[]PatentClassification] {
			return IO.Of([]PatentClassification{})
		}),
	)()
	return sortedSet(F.Pipe2(
		classifications,
		array.Filter(func(pc PatentClassification) bool { return strings.HasPrefix(pc.Scheme, "CPC") }),
		array.Map(func(pc PatentClassification) string { return pc.ClassificationSymbol }),
	))
}

// cpcSymbol reads classification-symbol when present, as in bulk data, and
// otherwise assembles the OPS split form (section, class, subclass, groups).
func cpcSymbol(n *xmlquery.Node) string {
	if symbol := getText(n, "*[local-name()='classification-symbol']"); symbol != "" {
		return symbol
	}
	head := getText(n, "*[local-name()='section']") +
		getText(n, "*[local-name()='class']") +
		getText(n, "*[local-name()='subclass']")
	main := getText(n, "*[local-name()='main-group']")
	sub := getText(n, "*[local-name()='subgroup']")
	if main == "" {
		return head
	}
	return head + main + "/" + sub
}

func citations(node *xmlquery.Node) []Citation {
	all := F.Pipe2(
		IOE.TryCatchError(func() ([]*xmlquery.Node, error) {
			return xmlquery.QueryAll(node, ".//*[local-name()='references-cited']/*[local-name()='citation']")
		}),
		IOE.Chain(IOE.TraverseArray(func(n *xmlquery.Node) IOE.IOEither[error, Citation] {
			categories := F.Pipe2(
				xmlquery.Find(n, "*[local-name()='category'] | *[local-name()='rel-passage']/*[local-name()='category']"),
				array.Map(func(c *xmlquery.Node) string {
					return strings.TrimSpace(c.InnerText())
				}),
				array.Filter(func(s string) bool {
					return s != ""
				}),
			)
			citedID := F.Pipe2(
				option.FromNillable(citedDocument(n)),
				option.Map(func(docIDNode *xmlquery.Node) string {
					return getText(docIDNode, "*[local-name()='country']") +
						getText(docIDNode, "*[local-name()='doc-number']") +
						getText(docIDNode, "*[local-name()='kind']")
				}),
				option.GetOrElse(func() string { return "" }),
			)
			return IOE.Right[error](Citation{CitedID: citedID, Categories: categories})
		})),
		IOE.GetOrElse(func(_ error) IO.IO[[]Citation] {
			return IO.Of([]Citation{})
		}),
	)()
	patents := F.Pipe1(all, array.Filter(func(c Citation) bool { return c.CitedID != "" }))
	if len(patents) == 0 {
		return nil
	}
	return patents
}

// citedDocument picks the docdb document-id of a patent citation, or the
// first one when no docdb form is given. Non-patent citations have none.
func citedDocument(citation *xmlquery.Node) *xmlquery.Node {
	if n := xmlquery.FindOne(citation, "*[local-name()='patcit']/*[local-name()='document-id'][@document-id-type='docdb']"); n != nil {
		return n
	}
	return xmlquery.FindOne(citation, "*[local-name()='patcit']/*[local-name()='document-id']")
}

func sortedSet(items []string) []string {
	set := make(map[string]struct{}, len(items))
	for _, s := range items {
		if s != "" {
			set[s] = struct{}{}
		}
	}
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

func getText(parent *xmlquery.Node, selector string) string {
	n := xmlquery.FindOne(parent, selector)
	if n == nil {
		return ""
	}
	return strings.TrimSpace(n.InnerText())
}
