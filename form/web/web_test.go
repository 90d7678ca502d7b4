package web

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
	"github.com/twipi/bfhl/backend"
	"github.com/twipi/bfhl/bfhl"
)

var silentLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type testEnv struct {
	form  *httptest.Server
	calls *atomic.Int64
}

func newTestEnv(t *testing.T) testEnv {
	var calls atomic.Int64
	stub := backend.NewStub(silentLogger)
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		stub.ServeHTTP(w, r)
	}))
	t.Cleanup(upstream.Close)

	client := backend.NewClient(backend.ClientConfig{BaseURL: upstream.URL}, silentLogger)
	form := httptest.NewServer(NewHandler(client, Config{}, silentLogger))
	t.Cleanup(form.Close)

	return testEnv{form: form, calls: &calls}
}

var sessionRe = regexp.MustCompile(`name="session" value="([^"]+)"`)

func pageSession(t *testing.T, page string) string {
	m := sessionRe.FindStringSubmatch(page)
	assert.NotZero(t, m, "no session token in page")
	return m[1]
}

func get(t *testing.T, u string) string {
	resp, err := http.Get(u)
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	b, err := io.ReadAll(resp.Body)
	assert.NoError(t, err)
	return string(b)
}

func postForm(t *testing.T, u string, values url.Values) string {
	resp, err := http.PostForm(u, values)
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	b, err := io.ReadAll(resp.Body)
	assert.NoError(t, err)
	return string(b)
}

func TestFormFlow(t *testing.T) {
	env := newTestEnv(t)

	page := get(t, env.form.URL+"/")
	session := pageSession(t, page)
	assert.NotContains(t, page, "Select Filters")
	assert.NotContains(t, page, bfhl.GenericErrorMessage)

	page = postForm(t, env.form.URL+"/submit", url.Values{
		"session": {session},
		"input":   {`{"data":["A","B","5"]}`},
	})
	assert.Equal(t, session, pageSession(t, page))
	assert.Contains(t, page, "Select Filters")
	assert.Contains(t, page, "<pre>{}</pre>")
	assert.Equal(t, int64(1), env.calls.Load())

	page = postForm(t, env.form.URL+"/filters", url.Values{
		"session": {session},
		"label":   {"Numbers"},
	})
	assert.Contains(t, page, "&#34;numbers&#34;")
	assert.NotContains(t, page, "&#34;alphabets&#34;")

	page = postForm(t, env.form.URL+"/filters", url.Values{
		"session": {session},
		"label":   {"Numbers"},
	})
	assert.Contains(t, page, "<pre>{}</pre>")
	assert.Equal(t, int64(1), env.calls.Load())
}

func TestFormToggleKeepsTypedInput(t *testing.T) {
	env := newTestEnv(t)
	session := pageSession(t, get(t, env.form.URL+"/"))

	postForm(t, env.form.URL+"/submit", url.Values{
		"session": {session},
		"input":   {`{"data":["A","B","5"]}`},
	})

	page := postForm(t, env.form.URL+"/filters", url.Values{
		"session": {session},
		"input":   {`{"data":["half typed`},
		"label":   {"Numbers"},
	})
	assert.Contains(t, page, "{&#34;data&#34;:[&#34;half typed</textarea>")
	assert.Contains(t, page, "&#34;numbers&#34;")
	assert.NotContains(t, page, bfhl.GenericErrorMessage)
	assert.Equal(t, int64(1), env.calls.Load())

	// Without an input field, the text stays as it was.
	page = postForm(t, env.form.URL+"/filters", url.Values{
		"session": {session},
		"label":   {"Numbers"},
	})
	assert.Contains(t, page, "{&#34;data&#34;:[&#34;half typed</textarea>")
	assert.Contains(t, page, "<pre>{}</pre>")
}

func TestFormFalsyResponse(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, "0")
	}))
	t.Cleanup(upstream.Close)

	client := backend.NewClient(backend.ClientConfig{BaseURL: upstream.URL}, silentLogger)
	form := httptest.NewServer(NewHandler(client, Config{}, silentLogger))
	t.Cleanup(form.Close)

	session := pageSession(t, get(t, form.URL+"/"))
	page := postForm(t, form.URL+"/submit", url.Values{
		"session": {session},
		"input":   {`{"data":["A"]}`},
	})
	assert.NotContains(t, page, "Select Filters")
	assert.NotContains(t, page, "<pre>")
	assert.NotContains(t, page, bfhl.GenericErrorMessage)

	code, body := processAPI(t, form.URL, ProcessRequest{
		Input:   `{"data":["A"]}`,
		Filters: bfhl.Labels,
	})
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, `{"view":null}`, body)
}

func TestFormInvalidInput(t *testing.T) {
	env := newTestEnv(t)
	session := pageSession(t, get(t, env.form.URL+"/"))

	for _, input := range []string{`not json`, `{"foo":1}`} {
		page := postForm(t, env.form.URL+"/submit", url.Values{
			"session": {session},
			"input":   {input},
		})
		assert.Contains(t, page, bfhl.GenericErrorMessage)
		assert.NotContains(t, page, "Select Filters")
	}

	assert.Equal(t, int64(0), env.calls.Load())
}

func TestFormKeepsResponseOnError(t *testing.T) {
	env := newTestEnv(t)
	session := pageSession(t, get(t, env.form.URL+"/"))

	postForm(t, env.form.URL+"/submit", url.Values{
		"session": {session},
		"input":   {`{"data":["A"]}`},
	})
	postForm(t, env.form.URL+"/filters", url.Values{
		"session": {session},
		"label":   {"Alphabets"},
	})

	page := postForm(t, env.form.URL+"/submit", url.Values{
		"session": {session},
		"input":   {`{"data":`},
	})
	assert.Contains(t, page, bfhl.GenericErrorMessage)
	assert.Contains(t, page, "&#34;alphabets&#34;")
}

func TestFormUnknownSession(t *testing.T) {
	env := newTestEnv(t)

	page := postForm(t, env.form.URL+"/filters", url.Values{
		"session": {"bogus"},
		"label":   {"Numbers"},
	})
	assert.NotEqual(t, "bogus", pageSession(t, page))
}

func TestFormReloadResets(t *testing.T) {
	env := newTestEnv(t)
	session := pageSession(t, get(t, env.form.URL+"/"))

	postForm(t, env.form.URL+"/submit", url.Values{
		"session": {session},
		"input":   {`{"data":["A"]}`},
	})

	page := get(t, env.form.URL+"/")
	assert.NotEqual(t, session, pageSession(t, page))
	assert.NotContains(t, page, "Select Filters")
}

func processAPI(t *testing.T, u string, req ProcessRequest) (int, string) {
	b, err := json.Marshal(req)
	assert.NoError(t, err)

	resp, err := http.Post(u+"/api/process", "application/json", bytes.NewReader(b))
	assert.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	assert.NoError(t, err)
	return resp.StatusCode, strings.TrimSpace(string(body))
}

func TestProcessAPI(t *testing.T) {
	env := newTestEnv(t)

	code, body := processAPI(t, env.form.URL, ProcessRequest{
		Input:   `{"data":["A","B","5"]}`,
		Filters: []bfhl.Label{bfhl.LabelHighestAlphabet, bfhl.LabelNumbers},
	})
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, `{"view":{"numbers":["5"],"highest_alphabet":["B"]}}`, body)

	code, body = processAPI(t, env.form.URL, ProcessRequest{Input: `not json`})
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, `{"view":null,"error":"Invalid JSON format or server error."}`, body)

	code, _ = processAPI(t, env.form.URL, ProcessRequest{
		Input:   `{"data":[]}`,
		Filters: []bfhl.Label{"Vowels"},
	})
	assert.Equal(t, http.StatusBadRequest, code)

	assert.Equal(t, int64(1), env.calls.Load())
}

func TestSessionSweep(t *testing.T) {
	store := newSessionStore(nil, time.Minute, silentLogger)

	oldToken, old, err := store.create()
	assert.NoError(t, err)
	old.touch(time.Now().Add(-2 * time.Minute))

	freshToken, _, err := store.create()
	assert.NoError(t, err)

	assert.Equal(t, 1, store.sweep(time.Now()))

	_, ok := store.sessions.Load(oldToken)
	assert.False(t, ok)

	token, _, err := store.lookup(freshToken)
	assert.NoError(t, err)
	assert.Equal(t, freshToken, token)
}
