// Package api is the HTTP client for the remote translation project.
//
// Every request is authenticated with the project access token and scoped
// to the app ID embedded in it. Downloads and uploads go through /files,
// project metadata and the language list come from the API root.
package api

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultBaseURL is the production API endpoint.
const DefaultBaseURL = "https://api.applanga.com/v1/api"

// EnvBaseURL overrides the API endpoint.
const EnvBaseURL = "LOCSYNC_API_URL"

// DefaultTimeout bounds a single request.
const DefaultTimeout = 5 * time.Minute

// ---------------------------------------------------------------------------
// Errors
// ---------------------------------------------------------------------------

// TransferError is a request the server answered with a non-200 status.
type TransferError struct {
	Status  int
	Message string
}

func (e *TransferError) Error() string {
	return "API response: " + e.Message
}

// TagMissing reports whether the server rejected the request because the
// requested tag does not exist yet.
func (e *TransferError) TagMissing() bool {
	return strings.HasPrefix(e.Message, "Error: Tag with name")
}

// ConnectionError is a request that never got an answer.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return "Problem connecting to server. Please check your internet connection."
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// ---------------------------------------------------------------------------
// Client
// ---------------------------------------------------------------------------

// Options configures a Client.
type Options struct {
	// BaseURL defaults to $LOCSYNC_API_URL, then DefaultBaseURL.
	BaseURL string
	// Token is the project access token ("<app id>!<secret>").
	Token string
	// CLIVersion is sent in the CLI-Version header.
	CLIVersion string
	// Insecure disables TLS certificate verification.
	Insecure bool
	// Timeout per request (default: DefaultTimeout).
	Timeout time.Duration
	// OnLog receives debug lines for every request (optional).
	OnLog func(msg string)
}

// Client talks to one remote project.
type Client struct {
	base       string
	token      string
	appID      string
	cliVersion string
	http       *http.Client
	onLog      func(string)

	// projects caches the project document per version; "" is the latest.
	projects *lru.Cache[string, []byte]
}

// New creates a Client.
func New(opts Options) (*Client, error) {
	if opts.Token == "" {
		return nil, errors.New("access token is missing")
	}
	base := opts.BaseURL
	if base == "" {
		base = os.Getenv(EnvBaseURL)
	}
	if base == "" {
		base = DefaultBaseURL
	}
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	cache, err := lru.New[string, []byte](16)
	if err != nil {
		return nil, fmt.Errorf("creating project cache: %w", err)
	}

	appID, _, _ := strings.Cut(opts.Token, "!")
	return &Client{
		base:       strings.TrimRight(base, "/"),
		token:      opts.Token,
		appID:      appID,
		cliVersion: opts.CLIVersion,
		http:       makeHTTPClient(opts.Insecure, timeout),
		onLog:      opts.OnLog,
		projects:   cache,
	}, nil
}

// makeHTTPClient clones the default transport so proxy settings from the
// environment apply.
func makeHTTPClient(insecure bool, timeout time.Duration) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = http.ProxyFromEnvironment
	if insecure {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
	}
	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}
}

// AppID returns the app ID the client is scoped to.
func (c *Client) AppID() string {
	return c.appID
}

func (c *Client) log(format string, args ...any) {
	if c.onLog != nil {
		c.onLog(fmt.Sprintf(format, args...))
	}
}

// do sends a request and returns the body of a 200 response.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string) ([]byte, error) {
	if query == nil {
		query = url.Values{}
	}
	query.Set("app", c.appID)
	endpoint := c.base + path + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if c.cliVersion != "" {
		req.Header.Set("CLI-Version", c.cliVersion)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	c.log("%s %s", method, endpoint)

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &ConnectionError{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ConnectionError{Err: err}
	}
	c.log("status %d, %d bytes", resp.StatusCode, len(data))

	if resp.StatusCode != http.StatusOK {
		return nil, &TransferError{Status: resp.StatusCode, Message: errorMessage(data)}
	}
	return data, nil
}

// errorMessage prefers the "message" field of a JSON error body.
func errorMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	return strings.TrimSpace(string(body))
}

// ---------------------------------------------------------------------------
// Project
// ---------------------------------------------------------------------------

// App is the project metadata.
type App struct {
	Name         string
	BaseLanguage string
	Version      string
}

// metadataQuery turns off every include flag so only the skeleton is sent.
func metadataQuery() url.Values {
	q := url.Values{}
	for _, flag := range []string{"includeDraft", "includeValue", "includeSrc", "includeDescription", "includeStatus"} {
		q.Set(flag, "false")
	}
	return q
}

// project returns the project document at version, fetching it once per
// client. The latest document is also stored under its own version, so a
// version lookup followed by a language list costs one request.
func (c *Client) project(ctx context.Context, version string) ([]byte, error) {
	if data, ok := c.projects.Get(version); ok {
		c.log("project document for version %q from cache", version)
		return data, nil
	}

	q := metadataQuery()
	q.Set("keepEmptyDataEntries", "true")
	if version != "" {
		q.Set("version", version)
	}
	data, err := c.do(ctx, http.MethodGet, "", q, nil, "")
	if err != nil {
		return nil, err
	}

	c.projects.Add(version, data)
	if version == "" {
		if app, err := parseApp(data); err == nil && app.Version != "" {
			c.projects.Add(app.Version, data)
		}
	}
	return data, nil
}

// App fetches the project metadata.
func (c *Client) App(ctx context.Context) (App, error) {
	data, err := c.project(ctx, "")
	if err != nil {
		return App{}, err
	}
	return parseApp(data)
}

func parseApp(data []byte) (App, error) {
	var payload struct {
		Name         string          `json:"name"`
		BaseLanguage string          `json:"baseLanguage"`
		Version      json.RawMessage `json:"__v"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return App{}, fmt.Errorf("parsing app response: %w", err)
	}
	return App{
		Name:         payload.Name,
		BaseLanguage: payload.BaseLanguage,
		Version:      strings.Trim(string(payload.Version), `"`),
	}, nil
}

// ProjectVersion returns the current project version.
func (c *Client) ProjectVersion(ctx context.Context) (string, error) {
	app, err := c.App(ctx)
	if err != nil {
		return "", err
	}
	return app.Version, nil
}

// Languages returns the project's language codes at version, in the order
// the server lists them.
func (c *Client) Languages(ctx context.Context, version string) ([]string, error) {
	data, err := c.project(ctx, version)
	if err != nil {
		return nil, err
	}
	return dataKeys(data)
}

// dataKeys returns the keys of the top-level "data" object in document
// order. encoding/json maps do not keep order, so the object is walked
// token by token.
func dataKeys(body []byte) ([]string, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(body, &top); err != nil {
		return nil, fmt.Errorf("parsing languages response: %w", err)
	}
	raw, ok := top["data"]
	if !ok {
		return nil, errors.New("response is incomplete: data property is missing")
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("parsing languages response: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, errors.New("parsing languages response: data is not an object")
	}

	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("parsing languages response: %w", err)
		}
		key, _ := tok.(string)
		keys = append(keys, key)

		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, fmt.Errorf("parsing languages response: %w", err)
		}
	}
	return keys, nil
}

// ---------------------------------------------------------------------------
// Files
// ---------------------------------------------------------------------------

// DownloadRequest describes one export.
type DownloadRequest struct {
	FileFormat string
	Language   string
	Tags       []string
	Version    string
	Options    map[string]any
}

func transferQuery(format, language string, tags []string, opts map[string]any) (url.Values, error) {
	q := url.Values{}
	q.Set("file-format", format)
	q.Set("language", language)
	for _, tag := range tags {
		q.Add("tag", tag)
	}
	if opts != nil {
		encoded, err := json.Marshal(opts)
		if err != nil {
			return nil, fmt.Errorf("encoding options: %w", err)
		}
		q.Set("options", string(encoded))
	}
	return q, nil
}

// Download exports one language in one format and returns the file content.
func (c *Client) Download(ctx context.Context, r DownloadRequest) ([]byte, error) {
	q, err := transferQuery(r.FileFormat, r.Language, r.Tags, r.Options)
	if err != nil {
		return nil, err
	}
	if r.Version != "" {
		q.Set("version", r.Version)
	}
	return c.do(ctx, http.MethodGet, "/files", q, nil, "")
}

// UploadRequest describes one import.
type UploadRequest struct {
	Path       string
	FileFormat string
	Language   string
	Tags       []string
	Options    map[string]any
}

// UploadResult holds the import counters reported by the server.
type UploadResult struct {
	Total      int `json:"total"`
	Added      int `json:"added"`
	Updated    int `json:"updated"`
	TagUpdates int `json:"tagUpdates"`
}

// Upload imports the file at r.Path.
func (c *Client) Upload(ctx context.Context, r UploadRequest) (UploadResult, error) {
	q, err := transferQuery(r.FileFormat, r.Language, r.Tags, r.Options)
	if err != nil {
		return UploadResult{}, err
	}

	content, err := os.ReadFile(r.Path)
	if err != nil {
		return UploadResult{}, fmt.Errorf("reading %s: %w", r.Path, err)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filepath.Base(r.Path))
	if err != nil {
		return UploadResult{}, fmt.Errorf("building upload: %w", err)
	}
	if _, err := part.Write(content); err != nil {
		return UploadResult{}, fmt.Errorf("building upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return UploadResult{}, fmt.Errorf("building upload: %w", err)
	}

	data, err := c.do(ctx, http.MethodPost, "/files", q, &body, mw.FormDataContentType())
	if err != nil {
		return UploadResult{}, err
	}

	var result UploadResult
	if err := json.Unmarshal(data, &result); err != nil {
		return UploadResult{}, fmt.Errorf("parsing upload response: %w", err)
	}
	return result, nil
}
