package cip

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/NationalMuseumofDenmark/cip-go/cip/filter"
	"github.com/NationalMuseumofDenmark/cip-go/cip/layout"
)

const (
	// ClientVersion is reported in the default User-Agent.
	ClientVersion = "0.1"
	// ServerVersion is the CIP release this client is written against.
	ServerVersion = "9.0"
	// APIVersion is sent as "apiversion" unless a request sets its own.
	APIVersion = 4

	defaultUserAgent = "CIP Go Client v." + ClientVersion
	requestTimeout   = 30 * time.Second
)

// Service names, the first path segment after /CIP/.
const (
	ServiceSession       = "session"
	ServiceSystem        = "system"
	ServiceMetadata      = "metadata"
	ServiceAsset         = "asset"
	ServicePreview       = "preview"
	ServiceComments      = "comments"
	ServiceLocation      = "location"
	ServiceDeveloper     = "developer"
	ServiceConfiguration = "configuration"
)

// Metadata operations that take part in field mapping.
const (
	OpGetLayout      = "getlayout"
	OpSearch         = "search"
	OpGetFieldValues = "getfieldvalues"
)

var cipLog = logrus.WithField("source", "cip")

// Caller is the transport surface the services are built on. It is
// implemented by *Client.
type Caller interface {
	Call(ctx context.Context, req Request) (any, error)
	CallRaw(ctx context.Context, req Request) ([]byte, string, error)
}

// Ensure Client implements Caller at compile time.
var _ Caller = (*Client)(nil)

// Request describes one operation call.
type Request struct {
	Service string
	// Operation may carry a variant suffix after "_" (getfieldvalues_catalog);
	// only the part before the first "_" is sent.
	Operation string
	// Path segments after the operation. Empty segments are skipped.
	Path   []string
	Params url.Values
	// Credentials fills empty serveraddress, user and password params from
	// the client's DAM credentials.
	Credentials bool
	// Method defaults to POST, which sends Params form-encoded. GET and
	// requests with a Body put Params in the query string.
	Method      string
	Body        []byte
	ContentType string
	// Scope selects the field directory a metadata response feeds or uses.
	Scope layout.Scope
}

// DAMCredentials are the catalog-access credentials sent with requests that
// ask for them.
type DAMCredentials struct {
	ServerAddress string
	User          string
	Password      string
}

// Client talks to a CIP web service. A Client is safe for concurrent use.
type Client struct {
	baseURL    *url.URL
	http       *http.Client
	userAgent  string
	log        *logrus.Entry
	apiVersion int
	dam        DAMCredentials
	filters    []filter.Filter
	processor  *ResponseProcessor

	mu        sync.RWMutex
	sessionID string

	session       *SessionService
	system        *SystemService
	metadata      *MetadataService
	asset         *AssetService
	preview       *PreviewService
	comments      *CommentsService
	location      *LocationService
	developer     *DeveloperService
	configuration *ConfigurationService
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the HTTP timeout on a copy of the HTTP client, leaving a
// client passed to WithHTTPClient untouched.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		hc := *c.http
		hc.Timeout = d
		c.http = &hc
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithLogger routes call logging to entry.
func WithLogger(entry *logrus.Entry) Option {
	return func(c *Client) {
		if entry != nil {
			c.log = entry
		}
	}
}

// WithDAMCredentials sets the credentials used by requests that include them.
func WithDAMCredentials(creds DAMCredentials) Option {
	return func(c *Client) { c.dam = creds }
}

// WithFilters replaces the default filter chain.
func WithFilters(filters ...filter.Filter) Option {
	return func(c *Client) { c.filters = filters }
}

// WithAPIVersion overrides the apiversion parameter.
func WithAPIVersion(v int) Option {
	return func(c *Client) { c.apiVersion = v }
}

// WithSessionID resumes an existing server session.
func WithSessionID(id string) Option {
	return func(c *Client) { c.sessionID = id }
}

// NewClient builds a Client for the CIP installation at server, e.g.
// "https://cumulus.example.org" or "cumulus.example.org:8080".
func NewClient(server string, opts ...Option) (*Client, error) {
	base, err := parseBaseURL(server)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		userAgent:  defaultUserAgent,
		log:        cipLog,
		apiVersion: APIVersion,
		filters:    filter.Defaults(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.processor = NewResponseProcessor(c.filters, layout.NewRegistry())
	c.processor.log = c.log

	c.session = &SessionService{c: c}
	c.system = &SystemService{c: c}
	c.metadata = &MetadataService{
		c:           c,
		collections: make(map[string]layout.Scope),
		layouts:     make(map[layoutKey]struct{}),
	}
	c.asset = &AssetService{c: c}
	c.preview = &PreviewService{c: c}
	c.comments = &CommentsService{c: c}
	c.location = &LocationService{c: c}
	c.developer = &DeveloperService{c: c}
	c.configuration = &ConfigurationService{c: c}
	return c, nil
}

// Server returns the base URL requests are sent to.
func (c *Client) Server() string {
	return c.baseURL.String()
}

// SessionID returns the remembered session id, or "".
func (c *Client) SessionID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sessionID
}

// SetSessionID makes the client send id with every request. An empty id
// forgets the session.
func (c *Client) SetSessionID(id string) {
	c.mu.Lock()
	c.sessionID = id
	c.mu.Unlock()
}

// Processor returns the response processor shared by all calls.
func (c *Client) Processor() *ResponseProcessor {
	return c.processor
}

func (c *Client) Session() *SessionService             { return c.session }
func (c *Client) System() *SystemService               { return c.system }
func (c *Client) Metadata() *MetadataService           { return c.metadata }
func (c *Client) Asset() *AssetService                 { return c.asset }
func (c *Client) Preview() *PreviewService             { return c.preview }
func (c *Client) Comments() *CommentsService           { return c.comments }
func (c *Client) Location() *LocationService           { return c.location }
func (c *Client) Developer() *DeveloperService         { return c.developer }
func (c *Client) Configuration() *ConfigurationService { return c.configuration }

// Call performs req and returns the decoded, processed response tree. An
// empty response body yields a nil tree.
func (c *Client) Call(ctx context.Context, req Request) (any, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	body, _, err := c.do(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}

	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()
	var tree any
	if err := decoder.Decode(&tree); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return c.processor.Process(req.Service, operationName(req.Operation), req.Scope, tree), nil
}

func (c *Client) invoke(ctx context.Context, req Request) (Response, error) {
	tree, err := c.Call(ctx, req)
	if err != nil {
		return nil, err
	}
	return toResponse(tree)
}

// CallRaw performs req and returns the unprocessed body and its content type.
func (c *Client) CallRaw(ctx context.Context, req Request) ([]byte, string, error) {
	if c == nil {
		return nil, "", fmt.Errorf("client is nil")
	}
	return c.do(ctx, req)
}

func (c *Client) do(ctx context.Context, req Request) ([]byte, string, error) {
	method := strings.ToUpper(strings.TrimSpace(req.Method))
	if method == "" {
		method = http.MethodPost
	}
	params := c.buildParams(req)
	endpoint := c.endpoint(req.Service, req.Operation, req.Path)

	var reader io.Reader
	contentType := ""
	reqURL := endpoint
	switch {
	case req.Body != nil:
		reader = bytes.NewReader(req.Body)
		contentType = req.ContentType
		if contentType == "" {
			contentType = "application/json"
		}
		reqURL += "?" + params.Encode()
	case method == http.MethodPost:
		reader = strings.NewReader(params.Encode())
		contentType = "application/x-www-form-urlencoded"
	case method == http.MethodGet:
		reqURL += "?" + params.Encode()
	default:
		return nil, "", fmt.Errorf("unsupported HTTP method %q", method)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return nil, "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	fields := logrus.Fields{
		"service":   req.Service,
		"operation": req.Operation,
		"method":    method,
		"url":       endpoint,
	}
	started := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, "", fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read response: %w", err)
	}
	fields["status"] = resp.StatusCode
	fields["took"] = time.Since(started).Round(time.Millisecond)

	if resp.StatusCode >= 400 {
		serr := newServerError(resp.StatusCode, body)
		c.log.WithFields(fields).Warn(serr.Error())
		return nil, "", serr
	}
	c.log.WithFields(fields).Debug("called CIP")
	return body, resp.Header.Get("Content-Type"), nil
}

func (c *Client) buildParams(req Request) url.Values {
	params := url.Values{}
	for key, values := range req.Params {
		for _, v := range values {
			params.Add(key, v)
		}
	}
	if !params.Has("apiversion") && c.apiVersion > 0 {
		params.Set("apiversion", strconv.Itoa(c.apiVersion))
	}
	if req.Credentials {
		setIfEmpty(params, "serveraddress", c.dam.ServerAddress)
		setIfEmpty(params, "user", c.dam.User)
		setIfEmpty(params, "password", c.dam.Password)
	}
	return params
}

func setIfEmpty(params url.Values, key, value string) {
	if value == "" || params.Get(key) != "" {
		return
	}
	params.Set(key, value)
}

// endpoint renders <server>/CIP/<service>/<operation>[/<path>...][;jsessionid=<id>].
func (c *Client) endpoint(service, operation string, path []string) string {
	var b strings.Builder
	b.WriteString(c.baseURL.String())
	b.WriteString("/CIP/")
	b.WriteString(url.PathEscape(service))
	b.WriteByte('/')
	b.WriteString(url.PathEscape(operationName(operation)))
	for _, segment := range path {
		if segment == "" {
			continue
		}
		b.WriteByte('/')
		b.WriteString(url.PathEscape(segment))
	}
	if id := c.SessionID(); id != "" {
		b.WriteString(";jsessionid=")
		b.WriteString(url.PathEscape(id))
	}
	return b.String()
}

// operationName strips a variant suffix: "getfieldvalues_catalog" becomes
// "getfieldvalues".
func operationName(operation string) string {
	if i := strings.IndexByte(operation, '_'); i >= 0 {
		return operation[:i]
	}
	return operation
}

func parseBaseURL(server string) (*url.URL, error) {
	trimmed := strings.TrimSpace(server)
	if trimmed == "" {
		return nil, fmt.Errorf("server address is empty")
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse server %q: %w", server, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse server %q: missing host", server)
	}
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
