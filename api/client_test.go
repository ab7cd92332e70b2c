package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
)

const testToken = "app123!secret"

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(Options{BaseURL: srv.URL, Token: testToken, CLIVersion: "1.2.3"})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return c
}

func TestNewRequiresToken(t *testing.T) {
	if _, err := New(Options{}); err == nil {
		t.Error("expected error without token")
	}
}

func TestNewBaseURLFromEnv(t *testing.T) {
	t.Setenv(EnvBaseURL, "http://example.test/api/")
	c, err := New(Options{Token: testToken})
	if err != nil {
		t.Fatal(err)
	}
	if c.base != "http://example.test/api" {
		t.Errorf("base = %q", c.base)
	}
	if c.AppID() != "app123" {
		t.Errorf("AppID() = %q, want app123", c.AppID())
	}
}

func TestApp(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer "+testToken {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.Header.Get("CLI-Version"); got != "1.2.3" {
			t.Errorf("CLI-Version = %q", got)
		}
		if got := r.URL.Query().Get("app"); got != "app123" {
			t.Errorf("app = %q, want app123", got)
		}
		if got := r.URL.Query().Get("includeValue"); got != "false" {
			t.Errorf("includeValue = %q, want false", got)
		}
		w.Write([]byte(`{"name":"Demo","baseLanguage":"en","__v":17,"data":{}}`))
	})

	app, err := c.App(context.Background())
	if err != nil {
		t.Fatalf("App() error: %v", err)
	}
	if app.Name != "Demo" || app.BaseLanguage != "en" || app.Version != "17" {
		t.Errorf("App() = %+v", app)
	}

	v, err := c.ProjectVersion(context.Background())
	if err != nil || v != "17" {
		t.Errorf("ProjectVersion() = %q, %v", v, err)
	}
}

func TestLanguagesKeepsOrderAndCaches(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if got := r.URL.Query().Get("keepEmptyDataEntries"); got != "true" {
			t.Errorf("keepEmptyDataEntries = %q", got)
		}
		if got := r.URL.Query().Get("version"); got != "5" {
			t.Errorf("version = %q, want 5", got)
		}
		w.Write([]byte(`{"data":{"en":{"main":{}},"zh-Hant":{},"de":{"x":{"v":"y"}},"af":{}}}`))
	})

	for i := 0; i < 2; i++ {
		langs, err := c.Languages(context.Background(), "5")
		if err != nil {
			t.Fatalf("Languages() error: %v", err)
		}
		if want := []string{"en", "zh-Hant", "de", "af"}; !reflect.DeepEqual(langs, want) {
			t.Errorf("Languages() = %v, want %v", langs, want)
		}
	}
	if calls != 1 {
		t.Errorf("server called %d times, want 1", calls)
	}
}

func TestProjectDocumentShared(t *testing.T) {
	var (
		mu       sync.Mutex
		versions []string
	)
	requested := func() []string {
		mu.Lock()
		defer mu.Unlock()
		return append([]string(nil), versions...)
	}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		versions = append(versions, r.URL.Query().Get("version"))
		mu.Unlock()
		w.Write([]byte(`{"name":"Demo","__v":17,"data":{"en":{},"de":{}}}`))
	})
	ctx := context.Background()

	v, err := c.ProjectVersion(ctx)
	if err != nil || v != "17" {
		t.Fatalf("ProjectVersion() = %q, %v", v, err)
	}
	for _, version := range []string{"17", ""} {
		langs, err := c.Languages(ctx, version)
		if err != nil {
			t.Fatalf("Languages(%q) error: %v", version, err)
		}
		if want := []string{"en", "de"}; !reflect.DeepEqual(langs, want) {
			t.Errorf("Languages(%q) = %v, want %v", version, langs, want)
		}
	}
	if got, want := requested(), []string{""}; !reflect.DeepEqual(got, want) {
		t.Fatalf("requested versions %q, want %q", got, want)
	}

	if _, err := c.Languages(ctx, "3"); err != nil {
		t.Fatal(err)
	}
	if got, want := requested(), []string{"", "3"}; !reflect.DeepEqual(got, want) {
		t.Errorf("requested versions %q, want %q", got, want)
	}
}

func TestLanguagesMissingData(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"name":"Demo"}`))
	})
	if _, err := c.Languages(context.Background(), ""); err == nil {
		t.Error("expected error for response without data")
	}
}

func TestDownload(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/files" || r.Method != http.MethodGet {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("file-format") != "android_xml" || q.Get("language") != "de" || q.Get("version") != "3" {
			t.Errorf("query = %v", q)
		}
		if got := q["tag"]; !reflect.DeepEqual(got, []string{"a", "b"}) {
			t.Errorf("tag = %v", got)
		}
		var opts map[string]any
		if err := json.Unmarshal([]byte(q.Get("options")), &opts); err != nil {
			t.Errorf("options: %v", err)
		}
		if opts["exportOnlyWithTranslation"] != true {
			t.Errorf("options = %v", opts)
		}
		w.Write([]byte("<resources/>"))
	})

	data, err := c.Download(context.Background(), DownloadRequest{
		FileFormat: "android_xml",
		Language:   "de",
		Tags:       []string{"a", "b"},
		Version:    "3",
		Options:    map[string]any{"exportOnlyWithTranslation": true},
	})
	if err != nil {
		t.Fatalf("Download() error: %v", err)
	}
	if string(data) != "<resources/>" {
		t.Errorf("Download() = %q", data)
	}
}

func TestUpload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "de.json")
	if err := os.WriteFile(path, []byte(`{"hello":"Hallo"}`), 0644); err != nil {
		t.Fatal(err)
	}

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/files" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("FormFile: %v", err)
			http.Error(w, "no file", http.StatusBadRequest)
			return
		}
		defer file.Close()
		content, _ := io.ReadAll(file)
		if header.Filename != "de.json" || string(content) != `{"hello":"Hallo"}` {
			t.Errorf("uploaded %q: %q", header.Filename, content)
		}
		w.Write([]byte(`{"total":4,"added":1,"updated":2,"tagUpdates":3}`))
	})

	res, err := c.Upload(context.Background(), UploadRequest{
		Path:       path,
		FileFormat: "nested_json",
		Language:   "de",
		Options:    map[string]any{"onlyIfTextEmpty": true},
	})
	if err != nil {
		t.Fatalf("Upload() error: %v", err)
	}
	if want := (UploadResult{Total: 4, Added: 1, Updated: 2, TagUpdates: 3}); res != want {
		t.Errorf("Upload() = %+v, want %+v", res, want)
	}
}

func TestTransferError(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		message string
		missing bool
	}{
		{"json message", `{"message":"Error: Tag with name \"app\" not found"}`, `Error: Tag with name "app" not found`, true},
		{"plain body", "internal failure\n", "internal failure", false},
		{"json without message", `{"error":1}`, `{"error":1}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(tt.body))
			})

			_, err := c.Download(context.Background(), DownloadRequest{FileFormat: "json", Language: "de"})
			var te *TransferError
			if !errors.As(err, &te) {
				t.Fatalf("expected *TransferError, got %v", err)
			}
			if te.Message != tt.message || te.Status != http.StatusBadRequest {
				t.Errorf("got %d %q, want 400 %q", te.Status, te.Message, tt.message)
			}
			if te.Error() != "API response: "+tt.message {
				t.Errorf("Error() = %q", te.Error())
			}
			if te.TagMissing() != tt.missing {
				t.Errorf("TagMissing() = %v, want %v", te.TagMissing(), tt.missing)
			}
		})
	}
}

func TestConnectionError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := srv.URL
	srv.Close()

	c, err := New(Options{BaseURL: base, Token: testToken})
	if err != nil {
		t.Fatal(err)
	}
	_, err = c.App(context.Background())
	var ce *ConnectionError
	if !errors.As(err, &ce) {
		t.Fatalf("expected *ConnectionError, got %v", err)
	}
}

func TestDebugLog(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{}}`))
	}))
	defer srv.Close()

	var lines []string
	c, err := New(Options{BaseURL: srv.URL, Token: testToken, OnLog: func(msg string) { lines = append(lines, msg) }})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.Languages(context.Background(), ""); err != nil {
		t.Fatal(err)
	}
	if len(lines) != 2 {
		t.Errorf("got %d log lines, want 2: %v", len(lines), lines)
	}
}
