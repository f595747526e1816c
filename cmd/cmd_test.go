package cmd

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	RootCmd.SetOut(&out)
	RootCmd.SetErr(io.Discard)
	RootCmd.SetArgs(args)
	t.Cleanup(func() { RootCmd.SetArgs(nil) })
	err := RootCmd.Execute()
	return out.String(), err
}

func fakeOPS(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/3.2/auth/accesstoken", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"access_token":"tok","token_type":"Bearer","expires_in":1200}`)
	})
	mux.HandleFunc("/3.2/rest-services/legal/publication/epodoc", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		io.WriteString(w, `<ops:world-patent-data xmlns:ops="http://ops.epo.org" status="ok"/>`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func isolateCLI(t *testing.T, opsURL string) {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	t.Setenv("EPO_OPS_KEY", "key")
	t.Setenv("EPO_OPS_SECRET", "secret")
	t.Setenv("EPO_OPS_BASE_URL", opsURL)
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, Version+"\n", out)
}

func TestCallPrintsEnvelope(t *testing.T) {
	srv := fakeOPS(t)
	isolateCLI(t, srv.URL+"/3.2")

	out, err := execute(t, "call", "get_legal",
		"--args", `{"reference_type":"publication","input_data":{"number":"EP1000000"}}`)
	require.NoError(t, err)

	var env struct {
		Raw    string `json:"raw"`
		Parsed struct {
			Tag        string            `json:"tag"`
			Attributes map[string]string `json:"attributes"`
		} `json:"parsed"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &env))
	assert.Contains(t, env.Raw, "world-patent-data")
	assert.Equal(t, "{http://ops.epo.org}world-patent-data", env.Parsed.Tag)
	assert.Equal(t, "ok", env.Parsed.Attributes["status"])
}

func TestCallReportsToolErrors(t *testing.T) {
	srv := fakeOPS(t)
	isolateCLI(t, srv.URL+"/3.2")

	_, err := execute(t, "call", "get_legal",
		"--args", `{"reference_type":"citation","input_data":{"number":"EP1000000"}}`)
	assert.ErrorContains(t, err, "reference_type")

	_, err = execute(t, "call", "get_legal", "--args", `[1,2]`)
	assert.ErrorContains(t, err, "--args is not a JSON object")
}

func TestFirstSentence(t *testing.T) {
	assert.Equal(t, "Retrieve a family.", firstSentence("Retrieve a family. Use epodoc."))
	assert.Equal(t, "No stop", firstSentence("No stop"))
	assert.Equal(t, "Version 3.2 is used.", firstSentence("Version 3.2 is used. More."))
}
