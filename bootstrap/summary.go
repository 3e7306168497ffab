package bootstrap

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/kbukum/modkit/component"
	"github.com/kbukum/modkit/module"
)

// InfrastructureInfo holds detailed infrastructure component information.
type InfrastructureInfo struct {
	Name    string
	Type    string // e.g. "database", "server"
	Details string
	Port    int
}

// Summary tracks and displays the application bootstrap process.
type Summary struct {
	serviceName     string
	version         string
	startupDuration time.Duration
	modules         []module.Info
	infrastructure  []InfrastructureInfo
	routes          []component.Route
	out             io.Writer
}

// NewSummary creates a new bootstrap summary tracker writing to stdout.
func NewSummary(serviceName, version string) *Summary {
	return &Summary{
		serviceName: serviceName,
		version:     version,
		out:         os.Stdout,
	}
}

// SetOutput redirects the rendered summary.
func (s *Summary) SetOutput(w io.Writer) {
	s.out = w
}

// SetStartupDuration records the total startup time.
func (s *Summary) SetStartupDuration(d time.Duration) {
	s.startupDuration = d
}

// TrackModules records the resolved module tree.
func (s *Summary) TrackModules(infos []module.Info) {
	s.modules = append(s.modules, infos...)
}

// TrackInfrastructure adds an infrastructure component with detailed metadata.
func (s *Summary) TrackInfrastructure(name, componentType, details string, port int) {
	s.infrastructure = append(s.infrastructure, InfrastructureInfo{
		Name:    name,
		Type:    componentType,
		Details: details,
		Port:    port,
	})
}

// TrackRoute records an HTTP route.
func (s *Summary) TrackRoute(method, path, handler string) {
	s.routes = append(s.routes, component.Route{Method: method, Path: path, Handler: handler})
}

// Modules returns the tracked modules.
func (s *Summary) Modules() []module.Info { return s.modules }

// collect refreshes infrastructure and routes from the registry and the
// route providers.
func (s *Summary) collect(registry *component.Registry, routes ...component.RouteProvider) {
	s.infrastructure = s.infrastructure[:0]
	s.routes = s.routes[:0]
	if registry != nil {
		for _, c := range registry.All() {
			d, ok := c.(component.Describable)
			if !ok {
				continue
			}
			desc := d.Describe()
			if desc.Name == "" {
				desc.Name = c.Name()
			}
			s.TrackInfrastructure(desc.Name, desc.Type, desc.Details, desc.Port)
		}
	}
	for _, rp := range routes {
		if rp != nil {
			s.routes = append(s.routes, rp.Routes()...)
		}
	}
}

// DisplaySummary collects from registry and routes, then renders the summary
// with live health to the configured output.
func (s *Summary) DisplaySummary(registry *component.Registry, routes ...component.RouteProvider) {
	s.collect(registry, routes...)
	s.Render(s.out, registry)
}

// Render writes the summary to w. Health is read live from registry when it
// is non-nil.
func (s *Summary) Render(w io.Writer, registry *component.Registry) {
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "🚀 %s v%s started in %.2fs\n\n",
		s.serviceName, s.version, s.startupDuration.Seconds())

	if len(s.modules) > 0 {
		fmt.Fprintf(w, "🧩 Modules (%d)\n", len(s.modules))
		for i, m := range s.modules {
			fmt.Fprintf(w, "   %s %s [entries: %d, controllers: %d]\n",
				treePrefix(i, len(s.modules)), m.Name, m.Entries, m.Controllers)
			if len(m.Exports) > 0 {
				fmt.Fprintf(w, "   %s   exports: %s\n", treeIndent(i, len(s.modules)), strings.Join(m.Exports, ", "))
			}
			if len(m.Imports) > 0 {
				fmt.Fprintf(w, "   %s   imports: %s\n", treeIndent(i, len(s.modules)), strings.Join(m.Imports, ", "))
			}
		}
		fmt.Fprintf(w, "\n")
	}

	if len(s.infrastructure) > 0 {
		fmt.Fprintf(w, "📊 Infrastructure\n")
		for i, inf := range s.infrastructure {
			details := inf.Details
			if inf.Port > 0 && !strings.Contains(details, fmt.Sprintf(":%d", inf.Port)) {
				details = fmt.Sprintf("%s (:%d)", details, inf.Port)
			}
			fmt.Fprintf(w, "   %s %s: %s\n", treePrefix(i, len(s.infrastructure)), inf.Name, details)
		}
		fmt.Fprintf(w, "\n")
	}

	if len(s.routes) > 0 {
		fmt.Fprintf(w, "🌐 Routes (%d)\n", len(s.routes))
		for i, r := range s.routes {
			fmt.Fprintf(w, "   %s %-7s %s → %s\n", treePrefix(i, len(s.routes)), r.Method, r.Path, r.Handler)
		}
		fmt.Fprintf(w, "\n")
	}

	if registry != nil {
		results := registry.HealthAll(context.Background())
		if len(results) > 0 {
			fmt.Fprintf(w, "🏥 Health Check\n")
			healthy := 0
			for i, h := range results {
				msg := ""
				if h.Message != "" {
					msg = fmt.Sprintf(" (%s)", h.Message)
				}
				if h.Status == component.StatusHealthy {
					healthy++
				}
				fmt.Fprintf(w, "   %s %s %s: %s%s\n",
					treePrefix(i, len(results)), healthStatusIcon(h.Status), h.Name, h.Status, msg)
			}
			if healthy == len(results) {
				fmt.Fprintf(w, "\n✅ All components healthy (%d/%d)\n", healthy, len(results))
			} else {
				fmt.Fprintf(w, "\n⚠️  Some components have issues (%d/%d healthy)\n", healthy, len(results))
			}
		}
	}
	if len(s.modules) == 0 && (registry == nil || len(registry.All()) == 0) {
		fmt.Fprintf(w, "   └── No modules or components\n")
	}

	fmt.Fprintf(w, "\n")
}

func treePrefix(i, n int) string {
	if i == n-1 {
		return "└──"
	}
	return "├──"
}

func treeIndent(i, n int) string {
	if i == n-1 {
		return "   "
	}
	return "│  "
}

func healthStatusIcon(status component.HealthStatus) string {
	switch status {
	case component.StatusHealthy:
		return "✅"
	case component.StatusDegraded:
		return "⚠️"
	case component.StatusUnhealthy:
		return "❌"
	default:
		return "❓"
	}
}
