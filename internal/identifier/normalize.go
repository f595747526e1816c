package identifier

import (
	"fmt"

	ET "github.com/IBM/fp-go/v2/either"
	F "github.com/IBM/fp-go/v2/function"
	"github.com/go-viper/mapstructure/v2"
)

const keyCountryCode = "country_code"

// keys that must hold strings when present and non-null
var stringKeys = []string{"number", keyCountryCode, "kind_code", "date"}

// Required fields are pointers: "required" then means present and non-null,
// so an empty string still validates.
type docdbFields struct {
	Number      *string `mapstructure:"number"       validate:"required"`
	CountryCode *string `mapstructure:"country_code" validate:"required"`
	KindCode    *string `mapstructure:"kind_code"    validate:"required"`
	Date        string  `mapstructure:"date"`
}

func (f docdbFields) identifier() Identifier {
	return Docdb{Number: *f.Number, CountryCode: *f.CountryCode, KindCode: *f.KindCode, Date: f.Date}
}

type epodocFields struct {
	Number   *string `mapstructure:"number"    validate:"required"`
	KindCode string  `mapstructure:"kind_code"`
	Date     string  `mapstructure:"date"`
}

func (f epodocFields) epodoc() Epodoc {
	return Epodoc{Number: *f.Number, KindCode: f.KindCode, Date: f.Date}
}

func (f epodocFields) identifier() Identifier {
	return f.epodoc()
}

type originalFields struct {
	Number      *string `mapstructure:"number"       validate:"required"`
	CountryCode string  `mapstructure:"country_code"`
	KindCode    string  `mapstructure:"kind_code"`
	Date        string  `mapstructure:"date"`
}

func (f originalFields) identifier() Identifier {
	return Original{Number: *f.Number, CountryCode: f.CountryCode, KindCode: f.KindCode, Date: f.Date}
}

// Normalize picks the docdb shape when raw carries a non-null country_code and
// the epodoc shape otherwise, then validates raw against it. Validation is
// shape-only: the content of the number is never inspected.
func Normalize(raw map[string]any) (Identifier, error) {
	if hasCountryCode(raw) {
		return ET.UnwrapError(F.Pipe1(
			decode[docdbFields](FormatDocdb, raw),
			ET.Map[error](docdbFields.identifier),
		))
	}
	return ET.UnwrapError(F.Pipe1(
		decode[epodocFields](FormatEpodoc, raw),
		ET.Map[error](epodocFields.identifier),
	))
}

// NormalizeCompact accepts the epodoc shape only. A non-null country_code is
// rejected instead of being silently dropped.
func NormalizeCompact(raw map[string]any) (Epodoc, error) {
	if hasCountryCode(raw) {
		return Epodoc{}, &ValidationError{
			Shape: FormatEpodoc,
			Fields: []FieldError{{
				Field:  keyCountryCode,
				Reason: "not accepted, pass the full compact number (e.g. EP1000000) instead",
			}},
		}
	}
	return ET.UnwrapError(F.Pipe1(
		decode[epodocFields](FormatEpodoc, raw),
		ET.Map[error](epodocFields.epodoc),
	))
}

// NormalizeForConversion validates input for the number-service. The original
// format ("" defaults to it) only requires number; docdb requires all three
// docdb fields.
func NormalizeForConversion(raw map[string]any, inputFormat string) (Identifier, error) {
	switch inputFormat {
	case "", FormatOriginal:
		return ET.UnwrapError(F.Pipe1(
			decode[originalFields](FormatOriginal, raw),
			ET.Map[error](originalFields.identifier),
		))
	case FormatDocdb:
		return ET.UnwrapError(F.Pipe1(
			decode[docdbFields](FormatDocdb, raw),
			ET.Map[error](docdbFields.identifier),
		))
	default:
		return nil, &ValidationError{
			Shape: "conversion input",
			Fields: []FieldError{{
				Field:  "input_format",
				Reason: fmt.Sprintf("must be one of [%s %s], got %q", FormatOriginal, FormatDocdb, inputFormat),
			}},
		}
	}
}

func hasCountryCode(raw map[string]any) bool {
	v, ok := raw[keyCountryCode]
	return ok && v != nil
}

func decode[T any](shape string, raw map[string]any) ET.Either[error, T] {
	if fields := checkTypes(raw); len(fields) > 0 {
		return ET.Left[T](invalid(shape, fields...))
	}
	var out T
	if err := mapstructure.Decode(raw, &out); err != nil {
		return ET.Left[T](invalid(shape, FieldError{Field: "input_data", Reason: err.Error()}))
	}
	if err := validate.Struct(&out); err != nil {
		return ET.Left[T](NewValidationError(shape, err))
	}
	return ET.Right[error](out)
}

func checkTypes(raw map[string]any) []FieldError {
	var fields []FieldError
	for _, key := range stringKeys {
		v, ok := raw[key]
		if !ok || v == nil {
			continue
		}
		if _, isString := v.(string); !isString {
			fields = append(fields, FieldError{Field: key, Reason: fmt.Sprintf("must be a string, got %T", v)})
		}
	}
	return fields
}

func invalid(shape string, fields ...FieldError) error {
	return &ValidationError{Shape: shape, Fields: fields}
}
