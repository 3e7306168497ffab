package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/modkit/component"
	"github.com/kbukum/modkit/errors"
	"github.com/kbukum/modkit/graph"
	"github.com/kbukum/modkit/logger"
	"github.com/kbukum/modkit/module"
)

type greeter struct{ word string }

type greetController struct {
	g *greeter
}

func (c *greetController) Inject(r *graph.Resolver) error { return r.Fill(&c.g) }

func (c *greetController) Register(r gin.IRouter) {
	r.GET("/greet", c.greet)
}

func (c *greetController) greet(ctx *gin.Context) {
	RespondOK(ctx, gin.H{"word": c.g.word})
}

type greetModule struct{}

func (greetModule) Module() *module.Module {
	return module.New().
		Value(module.Value(&greeter{word: "hello"})).
		Controller(module.Controller[greetController]())
}

type silentController struct{}

func (*silentController) Inject(*graph.Resolver) error { return nil }

type silentModule struct{}

func (silentModule) Module() *module.Module {
	return module.New().Controller(module.Controller[silentController]())
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := Config{}
	cfg.ApplyDefaults()
	cfg.Host = "127.0.0.1"
	cfg.Port = 0
	return New(cfg, logger.Nop())
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, http.NoBody)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestRegisterControllers(t *testing.T) {
	s := newTestServer(t)
	s.ApplyDefaults("test", nil)
	root := module.MustBuild(nil, greetModule{})

	n, err := s.RegisterControllers(root)
	if err != nil || n != 1 {
		t.Fatalf("RegisterControllers() = %d, %v", n, err)
	}

	rr := do(t, s.Handler(), "GET", "/greet", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"word":"hello"`) {
		t.Errorf("unexpected body %s", rr.Body.String())
	}
	if rr.Header().Get("X-Request-Id") == "" {
		t.Error("expected middleware to run around controller routes")
	}
}

func TestRegisterControllers_Unregistrable(t *testing.T) {
	s := newTestServer(t)
	root := module.MustBuild(nil, silentModule{})
	_, err := s.RegisterControllers(root)
	if !errors.HasCode(err, errors.ErrCodeUnregistrable) {
		t.Errorf("expected unregistrable error, got %v", err)
	}
}

func TestHealthEndpoint(t *testing.T) {
	tests := []struct {
		name   string
		status component.HealthStatus
		code   int
	}{
		{"healthy", component.StatusHealthy, http.StatusOK},
		{"degraded", component.StatusDegraded, http.StatusOK},
		{"unhealthy", component.StatusUnhealthy, http.StatusServiceUnavailable},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestServer(t)
			s.ApplyDefaults("books", func(context.Context) []component.Health {
				return []component.Health{
					{Name: "db", Status: component.StatusHealthy},
					{Name: "x", Status: tc.status},
				}
			})
			rr := do(t, s.Handler(), "GET", "/health", "")
			if rr.Code != tc.code {
				t.Errorf("expected %d, got %d", tc.code, rr.Code)
			}
			var body map[string]interface{}
			_ = json.Unmarshal(rr.Body.Bytes(), &body)
			if body["status"] != string(tc.status) || body["service"] != "books" {
				t.Errorf("unexpected body %v", body)
			}
		})
	}
}

type payload struct {
	Title string `json:"title" validate:"required"`
}

func TestResponses(t *testing.T) {
	s := newTestServer(t)
	r := s.Engine()
	r.GET("/missing", func(c *gin.Context) { RespondWithError(c, errors.NotFound("book", "7")) })
	r.GET("/plain", func(c *gin.Context) { RespondWithError(c, context.Canceled) })
	r.DELETE("/gone", RespondNoContent)
	r.POST("/bind", func(c *gin.Context) {
		var p payload
		if err := BindJSON(c, &p); err != nil {
			RespondWithError(c, err)
			return
		}
		RespondCreated(c, p)
	})

	tests := []struct {
		method, path, body string
		code               int
		contains           string
	}{
		{"GET", "/missing", "", http.StatusNotFound, "NOT_FOUND"},
		{"GET", "/plain", "", http.StatusInternalServerError, "INTERNAL_ERROR"},
		{"DELETE", "/gone", "", http.StatusNoContent, ""},
		{"POST", "/bind", `{"title":"Dune"}`, http.StatusCreated, `"title":"Dune"`},
		{"POST", "/bind", `{"title":""}`, http.StatusBadRequest, "title: is required"},
		{"POST", "/bind", `{not json`, http.StatusBadRequest, "INVALID_INPUT"},
	}
	for _, tc := range tests {
		t.Run(tc.method+tc.path+tc.body, func(t *testing.T) {
			rr := do(t, s.Handler(), tc.method, tc.path, tc.body)
			if rr.Code != tc.code {
				t.Errorf("expected %d, got %d: %s", tc.code, rr.Code, rr.Body.String())
			}
			if !strings.Contains(rr.Body.String(), tc.contains) {
				t.Errorf("expected %q in %s", tc.contains, rr.Body.String())
			}
		})
	}
}

func TestServerComponentLifecycle(t *testing.T) {
	s := newTestServer(t)
	s.ApplyDefaults("test", nil)
	sc := NewComponent(s)

	if sc.Health(context.Background()).Status != component.StatusUnhealthy {
		t.Error("expected unhealthy before start")
	}
	if err := sc.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer sc.Stop(context.Background())

	if sc.Health(context.Background()).Status != component.StatusHealthy {
		t.Error("expected healthy after start")
	}
	resp, err := http.Get("http://" + s.Addr() + "/health")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}

func TestRoutesSummary(t *testing.T) {
	s := newTestServer(t)
	s.ApplyDefaults("test", nil)
	root := module.MustBuild(nil, greetModule{})
	if _, err := s.RegisterControllers(root); err != nil {
		t.Fatal(err)
	}

	routes := NewComponent(s).Routes()
	if len(routes) != 2 {
		t.Fatalf("expected 2 routes, got %v", routes)
	}
	if routes[0].Path != "/greet" || routes[1].Path != "/health" {
		t.Errorf("expected API routes before system routes, got %v", routes)
	}
	if routes[0].Handler != "greetController.greet" {
		t.Errorf("unexpected handler name %q", routes[0].Handler)
	}
}

func TestFormatHandlerName(t *testing.T) {
	tests := []struct{ in, want string }{
		{"github.com/org/svc/books.(*BookController).list-fm", "BookController.list"},
		{"github.com/kbukum/modkit/server/endpoint.Health.func1", "health"},
		{"main.handler", "handler"},
	}
	for _, tc := range tests {
		if got := formatHandlerName(tc.in); got != tc.want {
			t.Errorf("formatHandlerName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestConfig(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	if cfg.Port != 8080 || cfg.ReadTimeout != 15 || len(cfg.CORS.AllowedOrigins) != 1 {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error %v", err)
	}
	cfg.Port = 70000
	if err := cfg.Validate(); err == nil {
		t.Error("expected port error")
	}
}
