package server

import (
	"go/ast"
	"go/parser"
	"go/token"
	"path/filepath"
	"runtime"
	"slices"
	"strconv"
	"strings"
	"testing"
)

type registeredRoute struct {
	method  string
	path    string
	handler string
}

func TestMutationRoutesUseCollectionService(t *testing.T) {
	routes := parseRegisteredRoutes(t)
	handlers := parseServerHandlers(t)

	mutationRoutes := make([]registeredRoute, 0)
	for _, route := range routes {
		if isMutationMethod(route.method) && strings.HasPrefix(route.path, "/v1/") {
			mutationRoutes = append(mutationRoutes, route)
		}
	}
	if len(mutationRoutes) == 0 {
		t.Fatal("no mutation routes discovered")
	}

	for _, route := range mutationRoutes {
		fn, ok := handlers[route.handler]
		if !ok {
			t.Fatalf("handler %q for %s %s not found", route.handler, route.method, route.path)
		}
		if calls := serviceCalls(fn); len(calls) == 0 {
			t.Fatalf("handler %q (%s %s) does not call the collection service", route.handler, route.method, route.path)
		}
	}
}

func TestHandlersDoNotImportStorage(t *testing.T) {
	files := handlerFiles(t)
	fset := token.NewFileSet()
	for _, path := range files {
		file, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
		if err != nil {
			t.Fatalf("parse %s: %v", path, err)
		}
		for _, spec := range file.Imports {
			importPath, err := strconv.Unquote(spec.Path.Value)
			if err != nil {
				t.Fatalf("unquote import in %s: %v", path, err)
			}
			switch importPath {
			case "gifstash/internal/store", "gifstash/internal/blobstore":
				t.Fatalf("%s imports %s; handlers must go through CollectionService", filepath.Base(path), importPath)
			}
		}
	}
}

func TestEveryRouteHasHandler(t *testing.T) {
	handlers := parseServerHandlers(t)
	for _, route := range parseRegisteredRoutes(t) {
		if _, ok := handlers[route.handler]; !ok {
			t.Errorf("route %s %s uses unknown handler %q", route.method, route.path, route.handler)
		}
	}
}

func parseRegisteredRoutes(t *testing.T) []registeredRoute {
	t.Helper()

	routesPath := filepath.Join(serverPackageDir(t), "routes.go")
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, routesPath, nil, 0)
	if err != nil {
		t.Fatalf("parse routes.go: %v", err)
	}

	routes := make([]registeredRoute, 0)
	ast.Inspect(file, func(n ast.Node) bool {
		call, ok := n.(*ast.CallExpr)
		if !ok {
			return true
		}
		sel, ok := call.Fun.(*ast.SelectorExpr)
		if !ok || sel.Sel.Name != "HandleFunc" || len(call.Args) != 2 {
			return true
		}

		patternLit, ok := call.Args[0].(*ast.BasicLit)
		if !ok || patternLit.Kind != token.STRING {
			return true
		}
		pattern, err := strconv.Unquote(patternLit.Value)
		if err != nil {
			t.Fatalf("unquote route pattern %q: %v", patternLit.Value, err)
		}
		method, path, ok := strings.Cut(pattern, " ")
		if !ok {
			return true
		}

		handlerSel, ok := call.Args[1].(*ast.SelectorExpr)
		if !ok {
			return true
		}
		if recv, ok := handlerSel.X.(*ast.Ident); !ok || recv.Name != "s" {
			return true
		}

		routes = append(routes, registeredRoute{
			method:  strings.TrimSpace(method),
			path:    strings.TrimSpace(path),
			handler: handlerSel.Sel.Name,
		})
		return true
	})

	if len(routes) == 0 {
		t.Fatal("no routes discovered")
	}
	return routes
}

func handlerFiles(t *testing.T) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(serverPackageDir(t), "handlers*.go"))
	if err != nil {
		t.Fatalf("glob handler files: %v", err)
	}
	files := make([]string, 0, len(matches))
	for _, path := range matches {
		if !strings.HasSuffix(path, "_test.go") {
			files = append(files, path)
		}
	}
	if len(files) == 0 {
		t.Fatal("no handler files found")
	}
	return files
}

func parseServerHandlers(t *testing.T) map[string]*ast.FuncDecl {
	t.Helper()

	out := make(map[string]*ast.FuncDecl)
	fset := token.NewFileSet()
	for _, path := range handlerFiles(t) {
		file, err := parser.ParseFile(fset, path, nil, 0)
		if err != nil {
			t.Fatalf("parse %s: %v", path, err)
		}
		for _, decl := range file.Decls {
			fn, ok := decl.(*ast.FuncDecl)
			if !ok || fn.Recv == nil || fn.Name == nil || !strings.HasPrefix(fn.Name.Name, "handle") {
				continue
			}
			if isServerReceiver(fn.Recv) {
				out[fn.Name.Name] = fn
			}
		}
	}
	return out
}

// serviceCalls lists the s.service methods a handler calls, including calls
// inside closures such as limiter callbacks.
func serviceCalls(fn *ast.FuncDecl) []string {
	var calls []string
	ast.Inspect(fn.Body, func(n ast.Node) bool {
		call, ok := n.(*ast.CallExpr)
		if !ok {
			return true
		}
		selector, ok := call.Fun.(*ast.SelectorExpr)
		if !ok {
			return true
		}
		chain, ok := selector.X.(*ast.SelectorExpr)
		if !ok || chain.Sel.Name != "service" {
			return true
		}
		if recv, ok := chain.X.(*ast.Ident); ok && recv.Name == "s" {
			calls = append(calls, selector.Sel.Name)
		}
		return true
	})
	slices.Sort(calls)
	return slices.Compact(calls)
}

func isMutationMethod(method string) bool {
	switch method {
	case "POST", "PATCH", "PUT", "DELETE":
		return true
	default:
		return false
	}
}

func isServerReceiver(recv *ast.FieldList) bool {
	if recv == nil || len(recv.List) != 1 {
		return false
	}
	star, ok := recv.List[0].Type.(*ast.StarExpr)
	if !ok {
		return false
	}
	ident, ok := star.X.(*ast.Ident)
	return ok && ident.Name == "Server"
}

func serverPackageDir(t *testing.T) string {
	t.Helper()

	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("runtime.Caller failed")
	}
	return filepath.Dir(file)
}
