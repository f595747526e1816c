// Package response adapts OPS replies of any content type into one envelope:
// the raw body always, plus a best-effort parsed form for JSON and XML.
package response

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	ET "github.com/IBM/fp-go/v2/either"
	O "github.com/IBM/fp-go/v2/option"
	"github.com/antchfx/xmlquery"
	"golang.org/x/net/html/charset"
)

var (
	errUnparsedType  = errors.New("content type is not parsed")
	errNoRoot        = errors.New("xml document has no root element")
	errExtraRoot     = errors.New("xml document has more than one root element")
	errStrayText     = errors.New("xml document has text outside the root element")
	errDuplicateAttr = errors.New("xml root element repeats an attribute")
	errTrailingData  = errors.New("trailing data after json value")
)

// Envelope is what every tool returns. Parsed is omitted whenever the content
// type is not JSON/XML or the body does not parse. A body that parses to
// JSON null keeps "parsed": null.
type Envelope struct {
	Raw    string `json:"raw"`
	Parsed any    `json:"parsed,omitempty"`

	// HasParsed is set when the body parsed, whatever the value.
	HasParsed bool `json:"-"`
}

func (e Envelope) MarshalJSON() ([]byte, error) {
	if !e.HasParsed && e.Parsed == nil {
		return json.Marshal(struct {
			Raw string `json:"raw"`
		}{e.Raw})
	}
	return json.Marshal(struct {
		Raw    string `json:"raw"`
		Parsed any    `json:"parsed"`
	}{e.Raw, e.Parsed})
}

// XMLRoot is the parsed form of an XML body: the root element only. Children
// and text are left out to keep responses small.
type XMLRoot struct {
	Tag        string            `json:"tag"`
	Attributes map[string]string `json:"attributes"`
}

// Format builds the envelope for body. It never fails.
func Format(body []byte, contentType string) Envelope {
	parsed := Parse(body, contentType)
	return Envelope{
		Raw:       string(body),
		Parsed:    O.MonadGetOrElse(parsed, func() any { return nil }),
		HasParsed: O.IsSome(parsed),
	}
}

// Parse is the collapsed form of parse: a failure of any kind becomes None.
func Parse(body []byte, contentType string) O.Option[any] {
	return ET.ToOption(parse(body, contentType))
}

func parse(body []byte, contentType string) ET.Either[error, any] {
	ct := strings.ToLower(contentType)
	switch {
	case strings.Contains(ct, "application/json"):
		return parseJSON(body)
	case strings.Contains(ct, "application/xml"), strings.Contains(ct, "text/xml"):
		return parseXMLRoot(body)
	default:
		return ET.Left[any](fmt.Errorf("%w: %q", errUnparsedType, contentType))
	}
}

func parseJSON(body []byte) ET.Either[error, any] {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return ET.Left[any](err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return ET.Left[any](errTrailingData)
	}
	return ET.Right[error](v)
}

func parseXMLRoot(body []byte) ET.Either[error, any] {
	if err := wellFormed(body); err != nil {
		return ET.Left[any](err)
	}
	doc, err := xmlquery.Parse(bytes.NewReader(body))
	if err != nil {
		return ET.Left[any](err)
	}
	root, err := documentElement(doc)
	if err != nil {
		return ET.Left[any](err)
	}
	attrs := make(map[string]string, len(root.Attr))
	for _, a := range root.Attr {
		if isNamespaceDecl(a) {
			continue
		}
		name := qualified(a.NamespaceURI, a.Name.Local)
		if _, seen := attrs[name]; seen {
			return ET.Left[any](fmt.Errorf("%w: %s", errDuplicateAttr, name))
		}
		attrs[name] = a.Value
	}
	return ET.Right[error](any(XMLRoot{
		Tag:        qualified(root.NamespaceURI, root.Data),
		Attributes: attrs,
	}))
}

// wellFormed checks what xmlquery lets through: a single root element, no
// text outside it and no repeated attribute on it.
func wellFormed(body []byte) error {
	dec := xml.NewDecoder(bytes.NewReader(body))
	dec.CharsetReader = charset.NewReaderLabel
	depth, roots := 0, 0
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if depth == 0 {
				roots++
				if roots > 1 {
					return errExtraRoot
				}
				if err := uniqueAttrs(t.Attr); err != nil {
					return err
				}
			}
			depth++
		case xml.EndElement:
			depth--
		case xml.CharData:
			if depth == 0 && len(bytes.TrimSpace(t)) > 0 {
				return errStrayText
			}
		}
	}
	if roots == 0 {
		return errNoRoot
	}
	return nil
}

func uniqueAttrs(attrs []xml.Attr) error {
	seen := make(map[xml.Name]struct{}, len(attrs))
	for _, a := range attrs {
		if _, dup := seen[a.Name]; dup {
			return fmt.Errorf("%w: %s", errDuplicateAttr, a.Name.Local)
		}
		seen[a.Name] = struct{}{}
	}
	return nil
}

// documentElement returns the single root element. xmlquery accepts
// sibling roots and stray top-level text, a well-formed document does not.
func documentElement(doc *xmlquery.Node) (*xmlquery.Node, error) {
	var root *xmlquery.Node
	for n := doc.FirstChild; n != nil; n = n.NextSibling {
		switch n.Type {
		case xmlquery.ElementNode:
			if root != nil {
				return nil, errExtraRoot
			}
			root = n
		case xmlquery.TextNode, xmlquery.CharDataNode:
			if strings.TrimSpace(n.Data) != "" {
				return nil, errStrayText
			}
		}
	}
	if root == nil {
		return nil, errNoRoot
	}
	return root, nil
}

func isNamespaceDecl(a xmlquery.Attr) bool {
	return a.Name.Space == "xmlns" || (a.Name.Space == "" && a.Name.Local == "xmlns")
}

// qualified renders a name in Clark notation: {uri}local.
func qualified(uri, local string) string {
	if uri == "" {
		return local
	}
	return "{" + uri + "}" + local
}
