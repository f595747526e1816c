package response

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatJSON(t *testing.T) {
	env := Format([]byte(`{"a":1}`), "application/json")
	assert.Equal(t, `{"a":1}`, env.Raw)
	assert.Equal(t, map[string]any{"a": json.Number("1")}, env.Parsed)

	out, err := json.Marshal(env)
	require.NoError(t, err)
	assert.JSONEq(t, `{"raw":"{\"a\":1}","parsed":{"a":1}}`, string(out))
}

func TestFormatJSONWithCharset(t *testing.T) {
	env := Format([]byte(`[1,2]`), "Application/JSON; charset=UTF-8")
	assert.Equal(t, []any{json.Number("1"), json.Number("2")}, env.Parsed)
}

func TestFormatMalformedJSON(t *testing.T) {
	for _, body := range []string{`{a:`, `{"a":1} trailing`, ``} {
		env := Format([]byte(body), "application/json")
		assert.Equal(t, body, env.Raw)
		assert.Nil(t, env.Parsed, body)

		out, err := json.Marshal(env)
		require.NoError(t, err)
		var fields map[string]any
		require.NoError(t, json.Unmarshal(out, &fields))
		assert.NotContains(t, fields, "parsed")
		assert.Contains(t, fields, "raw")
	}
}

func TestFormatXMLRootOnly(t *testing.T) {
	for _, ct := range []string{"text/xml", "application/xml", "application/xml;charset=UTF-8"} {
		env := Format([]byte(`<root attr="x"/>`), ct)
		assert.Equal(t, XMLRoot{Tag: "root", Attributes: map[string]string{"attr": "x"}}, env.Parsed, ct)
	}

	env := Format([]byte(`<root attr="x"><child>text</child>tail</root>`), "text/xml")
	assert.Equal(t, XMLRoot{Tag: "root", Attributes: map[string]string{"attr": "x"}}, env.Parsed)
	out, err := json.Marshal(env.Parsed)
	require.NoError(t, err)
	assert.JSONEq(t, `{"tag":"root","attributes":{"attr":"x"}}`, string(out))
}

func TestFormatXMLNamespaces(t *testing.T) {
	body := `<?xml version="1.0" encoding="UTF-8"?>
<ops:world-patent-data xmlns="http://www.epo.org/exchange" xmlns:ops="http://ops.epo.org" ops:lang="en" status="ok">
  <exchange-documents/>
</ops:world-patent-data>`
	env := Format([]byte(body), "application/xml")
	assert.Equal(t, XMLRoot{
		Tag: "{http://ops.epo.org}world-patent-data",
		Attributes: map[string]string{
			"{http://ops.epo.org}lang": "en",
			"status":                   "ok",
		},
	}, env.Parsed)
}

func TestFormatMalformedXML(t *testing.T) {
	for _, body := range []string{
		`<root><child></root>`,
		`not xml at all`,
		``,
		`<root attr="x"/><second/>`,
		`garbage<root a="1"/>`,
		`<root a="1" a="2"/>`,
	} {
		env := Format([]byte(body), "text/xml")
		assert.Equal(t, body, env.Raw)
		assert.Nil(t, env.Parsed, body)
		assert.False(t, env.HasParsed, body)
	}
}

func TestFormatXMLAllowsTrailingMisc(t *testing.T) {
	env := Format([]byte("<root a=\"1\"/>\n<!-- done -->\n"), "text/xml")
	assert.Equal(t, XMLRoot{Tag: "root", Attributes: map[string]string{"a": "1"}}, env.Parsed)
}

func TestFormatJSONNullKeepsParsed(t *testing.T) {
	env := Format([]byte(`null`), "application/json")
	assert.True(t, env.HasParsed)
	assert.Nil(t, env.Parsed)

	out, err := json.Marshal(env)
	require.NoError(t, err)
	assert.JSONEq(t, `{"raw":"null","parsed":null}`, string(out))
}

func TestFormatOtherContentTypes(t *testing.T) {
	body := []byte{0x49, 0x49, 0x2a, 0x00}
	env := Format(body, "application/tiff")
	assert.Equal(t, string(body), env.Raw)
	assert.Nil(t, env.Parsed)

	env = Format([]byte(`{"a":1}`), "")
	assert.Nil(t, env.Parsed)
}

func TestFormatIsDeterministic(t *testing.T) {
	body := []byte(`<root a="1" b="2"/>`)
	assert.Equal(t, Format(body, "text/xml"), Format(body, "text/xml"))
}
