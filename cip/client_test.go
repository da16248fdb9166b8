package cip

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	filenameUUID = "{af4b2e00-5f6a-11d2-8f20-0000c0e166dc}"
	titleUUID    = "{7bd1a2c0-1d2e-11d3-8f21-0000c0e166dc}"
)

// recorded is one request seen by fakeCIP.
type recorded struct {
	Method      string
	Path        string
	Query       url.Values
	Form        url.Values
	Body        []byte
	ContentType string
	UserAgent   string
}

// fakeCIP serves canned bodies keyed by request path.
type fakeCIP struct {
	t      *testing.T
	server *httptest.Server

	mu       sync.Mutex
	routes   map[string]func(w http.ResponseWriter, r *http.Request)
	requests []recorded
}

func newFakeCIP(t *testing.T) *fakeCIP {
	t.Helper()
	f := &fakeCIP{t: t, routes: make(map[string]func(http.ResponseWriter, *http.Request))}
	f.server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeCIP) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	rec := recorded{
		Method:      r.Method,
		Path:        r.URL.Path,
		Query:       r.URL.Query(),
		Body:        body,
		ContentType: r.Header.Get("Content-Type"),
		UserAgent:   r.Header.Get("User-Agent"),
	}
	if strings.HasPrefix(rec.ContentType, "application/x-www-form-urlencoded") {
		rec.Form, _ = url.ParseQuery(string(body))
	}

	f.mu.Lock()
	f.requests = append(f.requests, rec)
	handler, ok := f.routes[routeKey(r.URL.Path)]
	f.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}
	handler(w, r)
}

// routeKey drops the ;jsessionid suffix.
func routeKey(path string) string {
	if i := strings.Index(path, ";"); i >= 0 {
		return path[:i]
	}
	return path
}

func (f *fakeCIP) handle(path string, handler func(w http.ResponseWriter, r *http.Request)) {
	f.mu.Lock()
	f.routes[path] = handler
	f.mu.Unlock()
}

func (f *fakeCIP) json(path, body string) {
	f.handle(path, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, body)
	})
}

func (f *fakeCIP) last() recorded {
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(f.t, f.requests, "no request recorded")
	return f.requests[len(f.requests)-1]
}

func (f *fakeCIP) count(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.requests {
		if routeKey(r.Path) == path {
			n++
		}
	}
	return n
}

func newTestClient(t *testing.T, f *fakeCIP, opts ...Option) (*Client, *test.Hook) {
	t.Helper()
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	opts = append([]Option{WithLogger(logrus.NewEntry(logger))}, opts...)
	c, err := NewClient(f.server.URL, opts...)
	require.NoError(t, err)
	return c, hook
}

func testContext(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestParseBaseURL(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"cumulus.example.org", "http://cumulus.example.org"},
		{"https://cumulus.example.org/", "https://cumulus.example.org"},
		{" http://10.0.0.2:8080/mount/?x=1#frag ", "http://10.0.0.2:8080/mount"},
	}
	for _, tc := range cases {
		u, err := parseBaseURL(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, u.String(), tc.in)
	}

	_, err := parseBaseURL("   ")
	assert.Error(t, err)
}

func TestOperationName(t *testing.T) {
	assert.Equal(t, "getfieldvalues", operationName("getfieldvalues_catalog"))
	assert.Equal(t, "getfieldstatistics", operationName("getfieldstatistics_collection"))
	assert.Equal(t, "search", operationName("search"))
}

func TestWithTimeout_LeavesSharedHTTPClientAlone(t *testing.T) {
	shared := &http.Client{Timeout: time.Minute}
	c, err := NewClient("cip.example.org", WithHTTPClient(shared), WithTimeout(3*time.Second))
	require.NoError(t, err)

	assert.Equal(t, time.Minute, shared.Timeout)
	assert.Equal(t, 3*time.Second, c.http.Timeout)
	assert.NotSame(t, shared, c.http)

	c, err = NewClient("cip.example.org", WithHTTPClient(shared))
	require.NoError(t, err)
	assert.Same(t, shared, c.http)
}

func TestCall_PostsFormWithAPIVersion(t *testing.T) {
	f := newFakeCIP(t)
	f.json("/CIP/metadata/gettables/Photo Archive", `{"tables":["AssetRecords","Categories"]}`)
	c, hook := newTestClient(t, f)

	resp, err := c.Metadata().GetTables(testContext(t), "Photo Archive", CatalogName("Photos"))
	require.NoError(t, err)
	assert.Equal(t, []string{"AssetRecords", "Categories"}, resp.Strings("tables"))

	req := f.last()
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "4", req.Form.Get("apiversion"))
	assert.Equal(t, "Photos", req.Form.Get("catalogname"))
	assert.Equal(t, defaultUserAgent, req.UserAgent)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.DebugLevel, entry.Level)
	assert.Equal(t, "gettables", entry.Data["operation"])
	assert.Equal(t, 200, entry.Data["status"])
}

func TestCall_GetUsesQueryAndKeepsExplicitAPIVersion(t *testing.T) {
	f := newFakeCIP(t)
	f.json("/CIP/system/getversion", `{}`)
	c, _ := newTestClient(t, f)

	_, err := c.Call(testContext(t), Request{
		Service:   ServiceSystem,
		Operation: "getversion",
		Method:    http.MethodGet,
		Params:    url.Values{"apiversion": {"3"}},
	})
	require.NoError(t, err)

	req := f.last()
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "3", req.Query.Get("apiversion"))
	assert.Empty(t, req.Body)
}

func TestCall_StripsVariantAndSkipsEmptySegments(t *testing.T) {
	f := newFakeCIP(t)
	f.json("/CIP/metadata/getfieldvalues/Photos/42", `{"items":[]}`)
	c, _ := newTestClient(t, f)

	_, err := c.Metadata().GetFieldValues(testContext(t), "Photos", "", 42)
	require.NoError(t, err)
	assert.Equal(t, "/CIP/metadata/getfieldvalues/Photos/42", f.last().Path)
}

func TestCall_DAMCredentialsFillEmptyParams(t *testing.T) {
	f := newFakeCIP(t)
	f.json("/CIP/metadata/getcatalogs", `{"catalogs":[]}`)
	c, _ := newTestClient(t, f, WithDAMCredentials(DAMCredentials{
		ServerAddress: "dam.local",
		User:          "web",
		Password:      "secret",
	}))

	_, err := c.Metadata().GetCatalogs(testContext(t), Set("user", "admin"))
	require.NoError(t, err)

	form := f.last().Form
	assert.Equal(t, "dam.local", form.Get("serveraddress"))
	assert.Equal(t, "admin", form.Get("user"))
	assert.Equal(t, "secret", form.Get("password"))

	_, err = c.Call(testContext(t), Request{Service: ServiceMetadata, Operation: "getcatalogs"})
	require.NoError(t, err)
	assert.Empty(t, f.last().Form.Get("password"))
}

func TestCall_ServerError(t *testing.T) {
	f := newFakeCIP(t)
	f.handle("/CIP/metadata/search/Photos", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"message":"Catalog not found","exception":{"stacktrace":["a.B.c(B.java:1)","d.E.f(E.java:2)"]}}`)
	})
	c, hook := newTestClient(t, f)

	_, err := c.Metadata().Search(testContext(t), SearchQuery{Catalog: "Photos", QuickSearch: "x"})
	require.Error(t, err)

	var serr *ServerError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, http.StatusInternalServerError, serr.StatusCode)
	assert.Equal(t, "CIP Error (status 500): Catalog not found.", serr.Error())
	assert.Equal(t, "Serverside stack:\n#0 a.B.c(B.java:1)\n#1 d.E.f(E.java:2)\n", serr.RemoteTrace())

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
}

func TestServerError_PlainBody(t *testing.T) {
	assert.Equal(t, "CIP Error (status 404): Not Found", newServerError(404, []byte("Not Found\n")).Error())
	assert.Equal(t, "CIP Error (status 503).", newServerError(503, nil).Error())
	assert.Equal(t, "", newServerError(503, nil).RemoteTrace())
}

func TestCall_EmptyBodyAndNumbers(t *testing.T) {
	f := newFakeCIP(t)
	f.handle("/CIP/session/close", func(w http.ResponseWriter, _ *http.Request) {})
	f.json("/CIP/metadata/getfieldvalues/Photos/web/7", `{"id":12345678901234567,"modified":"/Date(1318781876000)/"}`)
	c, _ := newTestClient(t, f)
	ctx := testContext(t)

	tree, err := c.Call(ctx, Request{Service: ServiceSession, Operation: "close"})
	require.NoError(t, err)
	assert.Nil(t, tree)

	resp, err := c.Metadata().GetFieldValues(ctx, "Photos", "web", 7)
	require.NoError(t, err)
	assert.Equal(t, json.Number("12345678901234567"), resp["id"])
	assert.Equal(t, int64(12345678901234567), resp.Int("id"))
	assert.Equal(t, time.Date(2011, 10, 16, 16, 17, 56, 0, time.UTC), resp["modified"])
}

func TestCall_UnsupportedMethod(t *testing.T) {
	f := newFakeCIP(t)
	c, _ := newTestClient(t, f)
	_, err := c.Call(testContext(t), Request{Service: ServiceSystem, Operation: "getversion", Method: "PATCH"})
	assert.ErrorContains(t, err, "unsupported HTTP method")
}

func TestSession_OpenRemembersAndCloseForgets(t *testing.T) {
	f := newFakeCIP(t)
	f.json("/CIP/session/open", `{"jsessionid":"0123456789ABCDEF0123456789ABCDEF"}`)
	f.json("/CIP/system/getversion", `{"version":{"cip":{"version":"9.0"}}}`)
	f.handle("/CIP/session/close", func(w http.ResponseWriter, _ *http.Request) {})
	c, _ := newTestClient(t, f)
	ctx := testContext(t)

	_, err := c.Session().Open(ctx, OpenOptions{User: "web", Password: "secret"}, true)
	require.NoError(t, err)
	assert.Equal(t, "web", f.last().Form.Get("user"))
	assert.Equal(t, "0123456789ABCDEF0123456789ABCDEF", c.SessionID())

	require.NoError(t, c.CheckCompatibility(ctx))
	assert.Equal(t, "/CIP/system/getversion;jsessionid=0123456789ABCDEF0123456789ABCDEF", f.last().Path)

	_, err = c.Session().Close(ctx)
	require.NoError(t, err)
	assert.Empty(t, c.SessionID())

	_, err = c.System().GetVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, "/CIP/system/getversion", f.last().Path)
}

func TestSession_OpenWithoutIDFails(t *testing.T) {
	f := newFakeCIP(t)
	f.json("/CIP/session/open", `{}`)
	c, _ := newTestClient(t, f)

	_, err := c.Session().Open(testContext(t), OpenOptions{}, true)
	assert.ErrorContains(t, err, "jsessionid")
	assert.Empty(t, c.SessionID())
}

func TestCheckCompatibility_OtherVersion(t *testing.T) {
	f := newFakeCIP(t)
	f.json("/CIP/system/getversion", `{"version":{"cip":{"version":"8.6.1"}}}`)
	c, _ := newTestClient(t, f)

	err := c.CheckCompatibility(testContext(t))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIncompatibleServer))
	assert.Contains(t, err.Error(), "8.6.1")
}

func TestPreview_ImageReturnsBytes(t *testing.T) {
	f := newFakeCIP(t)
	f.handle("/CIP/preview/image/Photos/42/web", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write([]byte{0xff, 0xd8, 0xff})
	})
	c, _ := newTestClient(t, f)

	useCache := false
	data, contentType, err := c.Preview().Image(testContext(t), "Photos", 42, PreviewOptions{
		Name:     "web",
		MaxSize:  800,
		Rotate:   90,
		Cropping: &Cropping{Left: 0, Top: 10, Width: 100, Height: 50},
		UseCache: &useCache,
	})
	require.NoError(t, err)
	assert.Equal(t, []byte{0xff, 0xd8, 0xff}, data)
	assert.Equal(t, "image/jpeg", contentType)

	req := f.last()
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "800", req.Query.Get("maxsize"))
	assert.Equal(t, "90", req.Query.Get("rotate"))
	assert.Equal(t, "0", req.Query.Get("left"))
	assert.Equal(t, "false", req.Query.Get("usecache"))
	assert.False(t, req.Query.Has("quality"))
}

func TestFacade_Paths(t *testing.T) {
	f := newFakeCIP(t)
	c, _ := newTestClient(t, f)
	ctx := testContext(t)

	cases := []struct {
		name string
		call func() error
		path string
	}{
		{"asset checkout", func() error {
			_, err := c.Asset().Checkout(ctx, "Photos", 5, AssetLocation{Location: "Uploads"})
			return err
		}, "/CIP/asset/checkout/Photos/5"},
		{"asset rollback", func() error {
			_, err := c.Asset().Rollback(ctx, "Photos", 5, 2)
			return err
		}, "/CIP/asset/rollback/Photos/5/2"},
		{"comments thread", func() error {
			_, err := c.Comments().GetThread(ctx, "Photos", 9)
			return err
		}, "/CIP/comments/getthread/Photos/9"},
		{"related assets", func() error {
			_, err := c.Metadata().LinkRelatedAsset(ctx, "Photos", 1, "isalternatemasterof", 2)
			return err
		}, "/CIP/metadata/linkrelatedasset/Photos/1/isalternatemasterof/2"},
		{"statistics", func() error {
			_, err := c.Metadata().GetFieldStatistics(ctx, "Photos", StatisticsQuery{Days: 7, Field: filenameUUID})
			return err
		}, "/CIP/metadata/getfieldstatistics/Photos"},
		{"location", func() error {
			_, err := c.Location().CreateDir(ctx, "Uploads/new")
			return err
		}, "/CIP/location/createdir"},
		{"describe", func() error {
			_, err := c.Developer().Describe(ctx, "Photos", "web", "json")
			return err
		}, "/CIP/developer/describe/Photos/web"},
		{"view", func() error {
			_, err := c.Configuration().GetView(ctx, "Photos", "web", "")
			return err
		}, "/CIP/configuration/getview/Photos/web"},
	}
	for _, tc := range cases {
		f.json(tc.path, `{}`)
		require.NoError(t, tc.call(), tc.name)
		assert.Equal(t, tc.path, f.last().Path, tc.name)
	}
}
