package http

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// Access nivel de acceso de una ruta.
type Access int

const (
	// Public sin credencial.
	Public Access = iota + 1
	// Tenant requiere API key válida y habilitada.
	Tenant
	// Operator requiere JWT de operador de plataforma.
	Operator
)

func (a Access) String() string {
	switch a {
	case Public:
		return "public"
	case Tenant:
		return "tenant"
	case Operator:
		return "operator"
	}
	return fmt.Sprintf("access(%d)", int(a))
}

// Route entrada de la tabla de rutas. Las rutas Tenant usa TenantHandler, que recibe la
// cuenta autenticada como argumento; el resto usa Handler.
type Route struct {
	Method        string
	Path          string
	Access        Access
	Metered       bool // consume cuota mensual (solo Tenant)
	Throttled     bool // limitada por IP (solo Public)
	Handler       fiber.Handler
	TenantHandler TenantHandler
}

func (r Route) String() string { return r.Method + " " + r.Path }

// ValidateRoutes verifica la tabla antes de registrarla: sin duplicados, sin patrones que
// se solapen con distinto acceso y con las banderas coherentes con el acceso.
func ValidateRoutes(routes []Route) error {
	var errs []error
	seen := make(map[string]bool, len(routes))
	for i, r := range routes {
		key := r.Method + " " + normalizePath(r.Path)
		if seen[key] {
			errs = append(errs, fmt.Errorf("ruta duplicada: %s", r))
		}
		seen[key] = true

		switch r.Access {
		case Public, Operator:
			if r.Handler == nil || r.TenantHandler != nil {
				errs = append(errs, fmt.Errorf("%s: ruta %s requiere Handler", r, r.Access))
			}
		case Tenant:
			if r.TenantHandler == nil || r.Handler != nil {
				errs = append(errs, fmt.Errorf("%s: ruta tenant requiere TenantHandler", r))
			}
		default:
			errs = append(errs, fmt.Errorf("%s: acceso no declarado", r))
		}
		if r.Metered && r.Access != Tenant {
			errs = append(errs, fmt.Errorf("%s: Metered solo aplica a rutas tenant", r))
		}
		if r.Throttled && r.Access != Public {
			errs = append(errs, fmt.Errorf("%s: Throttled solo aplica a rutas públicas", r))
		}

		for _, prev := range routes[:i] {
			if prev.Method == r.Method && prev.Access != r.Access && overlaps(prev.Path, r.Path) {
				errs = append(errs, fmt.Errorf("%s (%s) se solapa con %s (%s)", r, r.Access, prev, prev.Access))
			}
		}
	}
	return errors.Join(errs...)
}

// overlaps informa si existe un path concreto que ambos patrones aceptan. Un segmento
// :param acepta cualquier valor.
func overlaps(a, b string) bool {
	sa, sb := segments(a), segments(b)
	if len(sa) != len(sb) {
		return false
	}
	for i := range sa {
		if isParam(sa[i]) || isParam(sb[i]) {
			continue
		}
		if sa[i] != sb[i] {
			return false
		}
	}
	return true
}

func segments(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

func isParam(seg string) bool { return strings.HasPrefix(seg, ":") }

// normalizePath reemplaza los nombres de parámetros para detectar duplicados equivalentes
// (/a/:id y /a/:accountId).
func normalizePath(p string) string {
	segs := segments(p)
	for i, s := range segs {
		if isParam(s) {
			segs[i] = ":"
		}
	}
	return "/" + strings.Join(segs, "/")
}

// PublicRoutes subconjunto público de la tabla.
func PublicRoutes(routes []Route) []Route {
	var out []Route
	for _, r := range routes {
		if r.Access == Public {
			out = append(out, r)
		}
	}
	return out
}
