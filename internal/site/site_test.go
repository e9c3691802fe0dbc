package site

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"testing/fstest"
	"time"

	"github.com/debemdeboas/folio/internal/cache"
	"github.com/debemdeboas/folio/internal/config"
	"github.com/debemdeboas/folio/internal/model"
	"github.com/debemdeboas/folio/internal/repository"
	"github.com/debemdeboas/folio/internal/view"
	"golang.org/x/time/rate"
)

var testTemplates = fstest.MapFS{
	"templates/layout.html": {Data: []byte(`{{template "content" .}}`)},
	"templates/home.html": {Data: []byte(`{{define "content"}}` +
		`{{range .Featured}}<p class="featured">{{.CompanyName}}</p>{{end}}` +
		`{{range .Blogs}}<p class="blog">{{.Title}} {{.ReadTime}}</p>{{end}}` +
		`{{range .Errors}}<p class="error">{{.}}</p>{{end}}{{end}}`)},
	"templates/projects.html": {Data: []byte(`{{define "content"}}<p class="tab">{{.Tab}}</p>` +
		`{{range .Projects}}<p class="project">{{.CompanyName}}</p>{{end}}{{end}}`)},
	"templates/project.html": {Data: []byte(`{{define "content"}}<h1>{{.Project.CompanyName}}</h1>{{end}}`)},
	"templates/blogs.html": {Data: []byte(`{{define "content"}}` +
		`{{range .Blogs}}<p class="blog">{{.Title}}</p>{{end}}{{.Error}}{{end}}`)},
	"templates/blog.html": {Data: []byte(`{{define "content"}}<h1>{{.Blog.Title}}</h1>` +
		`{{range .Body.Paragraphs}}{{.}}{{end}}{{end}}`)},
	"templates/skills.html": {Data: []byte(`{{define "content"}}{{range .Skills}}<p>{{.Name}}</p>{{end}}{{end}}`)},
	"templates/contact.html": {Data: []byte(`{{define "content"}}{{if .Sent}}<p class="sent">Thanks</p>{{end}}` +
		`{{with .Error}}<p class="error">{{.}}</p>{{end}}` +
		`{{range $k, $v := .FieldErrors}}<p class="field-error">{{$k}}</p>{{end}}{{end}}`)},
	"templates/not_found.html": {Data: []byte(`{{define "content"}}<p class="missing">{{.Message}}</p>{{end}}`)},
}

type fakeBackend struct {
	*httptest.Server
	messages atomic.Int32
	down     map[string]bool
}

func envelope(w http.ResponseWriter, status int, data any, message string) {
	w.Header().Set(config.HCType, config.CTypeJSON)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{"success": status < 300, "data": data, "message": message})
}

func newFakeBackend(t *testing.T, down ...string) *fakeBackend {
	t.Helper()
	b := &fakeBackend{down: map[string]bool{}}
	for _, d := range down {
		b.down[d] = true
	}

	mux := http.NewServeMux()
	guard := func(resource string, h http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if b.down[resource] {
				envelope(w, http.StatusInternalServerError, nil, "Database error")
				return
			}
			h(w, r)
		}
	}
	mux.HandleFunc("GET /api/v1/project", guard("project", func(w http.ResponseWriter, r *http.Request) {
		envelope(w, http.StatusOK, []map[string]any{
			{"_id": "p1", "companyName": "Acme", "type": model.ProjectTypeProfessional},
			{"_id": "p2", "companyName": "Garden", "type": model.ProjectTypePersonal},
			{"_id": "p3", "companyName": "Initech", "type": model.ProjectTypeProfessional},
			{"_id": "p4", "companyName": "Hooli", "type": model.ProjectTypeProfessional},
		}, "")
	}))
	mux.HandleFunc("GET /api/v1/project/{id}", guard("project", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "p1" {
			envelope(w, http.StatusNotFound, nil, "Project not found")
			return
		}
		envelope(w, http.StatusOK, map[string]any{"_id": "p1", "companyName": "Acme"}, "")
	}))
	mux.HandleFunc("GET /api/v1/blog", guard("blog", func(w http.ResponseWriter, r *http.Request) {
		envelope(w, http.StatusOK, []map[string]any{
			{"_id": "b1", "title": "Oldest post", "createdAt": "2024-01-01T00:00:00Z"},
			{"_id": "b2", "title": "Newest post", "createdAt": "2024-04-01T00:00:00Z"},
			{"_id": "b3", "title": "Middle post", "createdAt": "2024-03-01T00:00:00Z"},
			{"_id": "b4", "title": "Early post", "createdAt": "2024-02-01T00:00:00Z"},
		}, "")
	}))
	mux.HandleFunc("GET /api/v1/blog/{id}", guard("blog", func(w http.ResponseWriter, r *http.Request) {
		envelope(w, http.StatusOK, map[string]any{
			"_id":   r.PathValue("id"),
			"title": "A post about <script>",
			"contentDetails": map[string]any{
				"paragraphs": []string{"Hello **world**", "<script>alert(1)</script>"},
			},
		}, "")
	}))
	mux.HandleFunc("GET /api/v1/skills", guard("skills", func(w http.ResponseWriter, r *http.Request) {
		envelope(w, http.StatusOK, []map[string]any{{"_id": "s1", "name": "Go", "rating": 5}}, "")
	}))
	mux.HandleFunc("POST /api/v1/messages", guard("messages", func(w http.ResponseWriter, r *http.Request) {
		b.messages.Add(1)
		envelope(w, http.StatusCreated, map[string]any{"_id": "m1"}, "")
	}))

	b.Server = httptest.NewServer(mux)
	t.Cleanup(b.Close)
	return b
}

func newTestHandler(t *testing.T, b *fakeBackend) (*Handler, *http.ServeMux) {
	t.Helper()
	client := repository.NewClient(b.URL, time.Second)
	h := NewHandler(
		repository.NewBlogStore(client, 0),
		repository.NewProjectStore(client, 0),
		repository.NewSkillStore(client, 0),
		repository.NewMessageStore(client, 0),
		view.New(testTemplates),
		config.ContactConfig{RatePerMinute: 60, Burst: 2},
	)
	mux := http.NewServeMux()
	h.Register(mux)
	return h, mux
}

func serve(mux *http.ServeMux, req *http.Request) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	mux.ServeHTTP(recorder, req)
	return recorder
}

func TestServeHome(t *testing.T) {
	_, mux := newTestHandler(t, newFakeBackend(t))
	recorder := serve(mux, httptest.NewRequest(http.MethodGet, "/", nil))

	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", recorder.Code)
	}
	body := recorder.Body.String()
	if n := strings.Count(body, `class="featured"`); n != model.FeaturedCount {
		t.Errorf("Expected %d featured projects, got %d", model.FeaturedCount, n)
	}
	if n := strings.Count(body, `class="blog"`); n != LatestBlogCount {
		t.Errorf("Expected %d latest blogs, got %d", LatestBlogCount, n)
	}
	if !strings.Contains(body, "Newest post") || strings.Contains(body, "Oldest post") {
		t.Errorf("Expected the most recent posts, got %q", body)
	}
	if strings.Index(body, "Newest post") > strings.Index(body, "Middle post") {
		t.Error("Expected posts ordered newest first")
	}
}

func TestServeHomePartialFailure(t *testing.T) {
	_, mux := newTestHandler(t, newFakeBackend(t, "skills"))
	recorder := serve(mux, httptest.NewRequest(http.MethodGet, "/", nil))

	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", recorder.Code)
	}
	body := recorder.Body.String()
	if !strings.Contains(body, `<p class="error">Database error</p>`) {
		t.Errorf("Expected the failed section to be reported, got %q", body)
	}
	if !strings.Contains(body, "Acme") {
		t.Error("Expected the other sections to render")
	}
}

func TestServeProjects(t *testing.T) {
	_, mux := newTestHandler(t, newFakeBackend(t))

	testCases := []struct {
		query    string
		tab      string
		expected int
	}{
		{"", model.TabAll, 4},
		{"?tab=personal", model.TabPersonal, 1},
		{"?tab=professional", model.TabProfessional, 3},
		{"?tab=bogus", model.TabAll, 4},
	}

	for _, tc := range testCases {
		t.Run(tc.tab+tc.query, func(t *testing.T) {
			recorder := serve(mux, httptest.NewRequest(http.MethodGet, "/projects"+tc.query, nil))
			body := recorder.Body.String()
			if !strings.Contains(body, `<p class="tab">`+tc.tab+`</p>`) {
				t.Errorf("Expected tab %s, got %q", tc.tab, body)
			}
			if n := strings.Count(body, `class="project"`); n != tc.expected {
				t.Errorf("Expected %d projects, got %d", tc.expected, n)
			}
		})
	}
}

func TestServeProject(t *testing.T) {
	_, mux := newTestHandler(t, newFakeBackend(t))

	recorder := serve(mux, httptest.NewRequest(http.MethodGet, "/projects/p1", nil))
	if recorder.Code != http.StatusOK || !strings.Contains(recorder.Body.String(), "<h1>Acme</h1>") {
		t.Errorf("Expected the project page, got %d %q", recorder.Code, recorder.Body.String())
	}

	recorder = serve(mux, httptest.NewRequest(http.MethodGet, "/projects/missing", nil))
	if recorder.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", recorder.Code)
	}
	if !strings.Contains(recorder.Body.String(), "Project not found") {
		t.Errorf("Expected the backend message, got %q", recorder.Body.String())
	}
}

func TestServeBlog(t *testing.T) {
	_, mux := newTestHandler(t, newFakeBackend(t))
	recorder := serve(mux, httptest.NewRequest(http.MethodGet, "/blogs/b1", nil))

	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", recorder.Code)
	}
	body := recorder.Body.String()
	if !strings.Contains(body, "<strong>world</strong>") {
		t.Errorf("Expected rendered markdown, got %q", body)
	}
	if strings.Contains(body, "<script>") {
		t.Errorf("Expected scripts to be escaped or stripped, got %q", body)
	}
}

func TestServeBlogsBackendDown(t *testing.T) {
	_, mux := newTestHandler(t, newFakeBackend(t, "blog"))
	recorder := serve(mux, httptest.NewRequest(http.MethodGet, "/blogs", nil))

	if recorder.Code != http.StatusBadGateway {
		t.Errorf("Expected status 502, got %d", recorder.Code)
	}
	if !strings.Contains(recorder.Body.String(), "Database error") {
		t.Errorf("Expected the backend message, got %q", recorder.Body.String())
	}
}

func contactRequest(form url.Values, ip string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/contact", strings.NewReader(form.Encode()))
	req.Header.Set(config.HCType, "application/x-www-form-urlencoded")
	req.RemoteAddr = ip + ":4711"
	return req
}

func TestHandleContact(t *testing.T) {
	valid := url.Values{
		"name":    {"Ann Lee"},
		"email":   {"ann@example.com"},
		"message": {"I would like to work with you."},
	}

	t.Run("Invalid message", func(t *testing.T) {
		b := newFakeBackend(t)
		_, mux := newTestHandler(t, b)
		form := url.Values{"name": {"A"}, "email": {"nope"}, "message": {"short"}, "social": {"not a url"}}

		recorder := serve(mux, contactRequest(form, "10.0.0.1"))
		if recorder.Code != http.StatusUnprocessableEntity {
			t.Errorf("Expected status 422, got %d", recorder.Code)
		}
		if n := strings.Count(recorder.Body.String(), "field-error"); n != 4 {
			t.Errorf("Expected 4 field errors, got %d", n)
		}
		if b.messages.Load() != 0 {
			t.Error("Expected no backend call")
		}
	})

	t.Run("Rate limited per client", func(t *testing.T) {
		b := newFakeBackend(t)
		_, mux := newTestHandler(t, b)

		for i := 0; i < 2; i++ {
			if recorder := serve(mux, contactRequest(valid, "10.0.0.2")); recorder.Code != http.StatusOK {
				t.Fatalf("Expected status 200, got %d", recorder.Code)
			}
		}
		recorder := serve(mux, contactRequest(valid, "10.0.0.2"))
		if recorder.Code != http.StatusTooManyRequests {
			t.Errorf("Expected status 429, got %d", recorder.Code)
		}
		if recorder := serve(mux, contactRequest(valid, "10.0.0.3")); recorder.Code != http.StatusOK {
			t.Errorf("Expected another client to pass, got %d", recorder.Code)
		}
		if b.messages.Load() != 3 {
			t.Errorf("Expected 3 messages, got %d", b.messages.Load())
		}
	})

	t.Run("Backend failure", func(t *testing.T) {
		_, mux := newTestHandler(t, newFakeBackend(t, "messages"))
		recorder := serve(mux, contactRequest(valid, "10.0.0.4"))
		if recorder.Code != http.StatusBadGateway {
			t.Errorf("Expected status 502, got %d", recorder.Code)
		}
	})
}

func TestClientIP(t *testing.T) {
	direct := &Handler{}
	behindProxy := &Handler{proxies: parseProxies([]string{"10.0.0.0/8", "192.0.2.1", "not-a-proxy"})}

	tests := []struct {
		name    string
		handler *Handler
		remote  string
		forward []string
		want    string
	}{
		{"peer address", direct, "192.0.2.1:1234", nil, "192.0.2.1"},
		{"forwarded header from an untrusted peer", direct, "192.0.2.1:1234", []string{"203.0.113.9"}, "192.0.2.1"},
		{"trusted proxy", behindProxy, "192.0.2.1:1234", []string{"203.0.113.9"}, "203.0.113.9"},
		{"spoofed leftmost hop", behindProxy, "10.1.2.3:443", []string{"198.51.100.7, 203.0.113.9, 10.0.0.5"}, "203.0.113.9"},
		{"repeated headers", behindProxy, "10.1.2.3:443", []string{"198.51.100.7", "203.0.113.9"}, "203.0.113.9"},
		{"only proxies", behindProxy, "10.1.2.3:443", []string{"10.0.0.9"}, "10.0.0.9"},
		{"garbage hop", behindProxy, "10.1.2.3:443", []string{"nonsense"}, "10.1.2.3"},
		{"mapped IPv4 peer", behindProxy, "[::ffff:10.1.2.3]:443", []string{"203.0.113.9"}, "203.0.113.9"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tc.remote
			for _, v := range tc.forward {
				req.Header.Add("X-Forwarded-For", v)
			}
			if ip := tc.handler.clientIP(req); ip != tc.want {
				t.Errorf("Expected %s, got %s", tc.want, ip)
			}
		})
	}

	if len(behindProxy.proxies) != 2 {
		t.Errorf("Expected invalid proxies to be skipped, got %v", behindProxy.proxies)
	}
}

func TestContactRateLimitIgnoresSpoofedHeader(t *testing.T) {
	_, mux := newTestHandler(t, newFakeBackend(t))
	form := url.Values{
		"name":    {"Ann Lee"},
		"email":   {"ann@example.com"},
		"message": {"I would like to work with you."},
	}

	codes := []int{}
	for i := 0; i < 3; i++ {
		req := contactRequest(form, "10.0.0.8")
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("198.51.100.%d", i))
		codes = append(codes, serve(mux, req).Code)
	}
	if codes[2] != http.StatusTooManyRequests {
		t.Errorf("Expected the third message to be limited, got %v", codes)
	}
}

func TestAllowSharesLimiter(t *testing.T) {
	h := &Handler{
		limiters: cache.NewTTLCache[string, *rate.Limiter](time.Minute),
		limit:    rate.Limit(0),
		burst:    5,
	}

	var wg sync.WaitGroup
	var allowed atomic.Int32
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if h.allow("203.0.113.9") {
				allowed.Add(1)
			}
		}()
	}
	wg.Wait()

	if n := allowed.Load(); n != 5 {
		t.Errorf("Expected 5 requests through one bucket, got %d", n)
	}
}

func TestServeNotFound(t *testing.T) {
	_, mux := newTestHandler(t, newFakeBackend(t))
	recorder := serve(mux, httptest.NewRequest(http.MethodGet, "/no/such/page", nil))

	if recorder.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", recorder.Code)
	}
	if !strings.Contains(recorder.Body.String(), `class="missing"`) {
		t.Errorf("Expected the not found page, got %q", recorder.Body.String())
	}
}
