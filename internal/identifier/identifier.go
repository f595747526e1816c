// Package identifier turns the loosely typed patent-number dictionaries sent by
// tool callers into one of the OPS input shapes: docdb, epodoc or original.
package identifier

import (
	"net/url"
	"strings"
)

// Input formats understood by OPS.
const (
	FormatDocdb    = "docdb"
	FormatEpodoc   = "epodoc"
	FormatOriginal = "original"
)

// Identifier is a validated patent number in one of the OPS input formats.
// The set of implementations is closed: Docdb, Epodoc and Original.
type Identifier interface {
	// Format is the OPS path segment naming the input format.
	Format() string
	// APIInput renders the number as OPS expects it in a request body,
	// e.g. "(WO).(2025158691).(A1)".
	APIInput() string

	sealed()
}

// Docdb is the structured notation: authority, serial and kind as separate fields.
type Docdb struct {
	Number      string
	CountryCode string
	KindCode    string
	Date        string
}

func (Docdb) Format() string { return FormatDocdb }

func (d Docdb) APIInput() string {
	return apiInput(d.CountryCode, d.Number, d.KindCode, d.Date)
}

func (Docdb) sealed() {}

// Epodoc is the compact notation, e.g. "WO2025158691", with an optional kind.
type Epodoc struct {
	Number   string
	KindCode string
	Date     string
}

func (Epodoc) Format() string { return FormatEpodoc }

func (e Epodoc) APIInput() string {
	return apiInput(e.Number, e.KindCode, e.Date)
}

func (Epodoc) sealed() {}

// Original is the number as filed. Only the number-service accepts it.
type Original struct {
	Number      string
	CountryCode string
	KindCode    string
	Date        string
}

func (Original) Format() string { return FormatOriginal }

func (o Original) APIInput() string {
	return apiInput(o.CountryCode, o.Number, o.KindCode, o.Date)
}

func (Original) sealed() {}

func apiInput(parts ...string) string {
	var b strings.Builder
	for _, p := range parts {
		if p == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteByte('(')
		b.WriteString(url.PathEscape(p))
		b.WriteByte(')')
	}
	return b.String()
}
