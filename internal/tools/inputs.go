package tools

// Argument defaults applied when the caller leaves a field out.
const (
	DefaultEndpoint       = "biblio"
	DefaultRangeBegin     = 1
	DefaultRangeEnd       = 25
	MaxRangeEnd           = 1000
	DefaultImagePage      = 1
	DefaultDocumentFormat = "application/tiff"
	DefaultInputFormat    = "original"
)

const inputDataDescription = `Patent number, either docdb {"country_code":"WO","number":"2025158691","kind_code":"A1"} ` +
	`(all three required) or epodoc {"number":"WO2025158691"} (country, serial and kind in one string). Never mix the two.`

type PublishedDataInput struct {
	ReferenceType string         `json:"reference_type" jsonschema:"publication, application or priority" validate:"required,oneof=publication application priority"`
	InputData     map[string]any `json:"input_data" jsonschema:"Patent number, see tool description" validate:"required"`
	Endpoint      string         `json:"endpoint,omitempty" jsonschema:"biblio (default), equivalents, abstract, claims, description, fulltext or images" validate:"oneof=biblio equivalents abstract claims description fulltext images"`
}

type SearchPublishedDataInput struct {
	CQL          string   `json:"cql" jsonschema:"CQL query, e.g. ti=plastic and pa=bosch" validate:"required"`
	RangeBegin   int      `json:"range_begin,omitempty" jsonschema:"First result, 1-based (default 1)" validate:"gte=1"`
	RangeEnd     int      `json:"range_end,omitempty" jsonschema:"Last result (default 25, at most 1000)" validate:"gtefield=RangeBegin,lte=1000"`
	Constituents []string `json:"constituents,omitempty" jsonschema:"Extra data per hit: biblio, abstract, full-cycle" validate:"omitempty,dive,oneof=biblio abstract full-cycle"`
}

type FamilyInput struct {
	ReferenceType string         `json:"reference_type" jsonschema:"publication, application or priority" validate:"required,oneof=publication application priority"`
	InputData     map[string]any `json:"input_data" jsonschema:"Patent number, see tool description" validate:"required"`
	Endpoint      string         `json:"endpoint,omitempty" jsonschema:"Optional: biblio or legal" validate:"omitempty,oneof=biblio legal"`
	Constituents  []string       `json:"constituents,omitempty" jsonschema:"Optional data constituents" validate:"omitempty,dive,required"`
}

type LegalInput struct {
	ReferenceType string         `json:"reference_type" jsonschema:"publication, application or priority" validate:"required,oneof=publication application priority"`
	InputData     map[string]any `json:"input_data" jsonschema:"Patent number, see tool description" validate:"required"`
}

type RegisterInput struct {
	ReferenceType string         `json:"reference_type" jsonschema:"publication, application or priority" validate:"required,oneof=publication application priority"`
	InputData     map[string]any `json:"input_data" jsonschema:"Epodoc patent number only, e.g. {\"number\":\"EP99203729\"}" validate:"required"`
	Constituents  []string       `json:"constituents,omitempty" jsonschema:"Optional: biblio (default), events, procedural-steps" validate:"omitempty,dive,oneof=biblio events procedural-steps"`
}

type SearchRegisterInput struct {
	CQL        string `json:"cql" jsonschema:"CQL query against the EP Register" validate:"required"`
	RangeBegin int    `json:"range_begin,omitempty" jsonschema:"First result, 1-based (default 1)" validate:"gte=1"`
	RangeEnd   int    `json:"range_end,omitempty" jsonschema:"Last result (default 25, at most 1000)" validate:"gtefield=RangeBegin,lte=1000"`
}

type ImageInput struct {
	Path           string `json:"path" jsonschema:"Image link from an images inquiry, e.g. EP/1000000/PA/firstpage" validate:"required"`
	RangeVal       int    `json:"range_val,omitempty" jsonschema:"Page number (default 1)" validate:"gte=1"`
	DocumentFormat string `json:"document_format,omitempty" jsonschema:"MIME type to request (default application/tiff)" validate:"required"`
}

type ConvertNumberInput struct {
	ReferenceType string         `json:"reference_type" jsonschema:"publication, application or priority" validate:"required,oneof=publication application priority"`
	InputData     map[string]any `json:"input_data" jsonschema:"Number to convert; country_code and kind_code are optional unless input_format is docdb" validate:"required"`
	OutputFormat  string         `json:"output_format" jsonschema:"original, epodoc or docdb" validate:"required,oneof=original epodoc docdb"`
	InputFormat   string         `json:"input_format,omitempty" jsonschema:"original (default) or docdb" validate:"oneof=original docdb"`
}

type DocumentSummaryInput struct {
	ReferenceType string         `json:"reference_type" jsonschema:"publication, application or priority" validate:"required,oneof=publication application priority"`
	InputData     map[string]any `json:"input_data" jsonschema:"Patent number, see tool description" validate:"required"`
}

func (in *PublishedDataInput) applyDefaults() {
	if in.Endpoint == "" {
		in.Endpoint = DefaultEndpoint
	}
}

func (in *SearchPublishedDataInput) applyDefaults() {
	in.RangeBegin, in.RangeEnd = rangeDefaults(in.RangeBegin, in.RangeEnd)
}

func (in *SearchRegisterInput) applyDefaults() {
	in.RangeBegin, in.RangeEnd = rangeDefaults(in.RangeBegin, in.RangeEnd)
}

func (in *ImageInput) applyDefaults() {
	if in.RangeVal == 0 {
		in.RangeVal = DefaultImagePage
	}
	if in.DocumentFormat == "" {
		in.DocumentFormat = DefaultDocumentFormat
	}
}

func (in *ConvertNumberInput) applyDefaults() {
	if in.InputFormat == "" {
		in.InputFormat = DefaultInputFormat
	}
}

func rangeDefaults(begin, end int) (int, int) {
	if begin == 0 {
		begin = DefaultRangeBegin
	}
	if end == 0 {
		end = DefaultRangeEnd
	}
	return begin, end
}
