// Package testutil provides test helpers that enforce package layering.
package testutil

import (
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"testing"
)

// ModulePath is the import path prefix of this module.
const ModulePath = "recordhub"

// ImportRule forbids imports matched by Forbidden. Reason is reported with
// every violation.
type ImportRule struct {
	Forbidden func(importPath string) bool
	Reason    string
}

// ModulePackages matches imports of the given module-relative packages and
// their subpackages, e.g. ModulePackages("internal/core").
func ModulePackages(rel ...string) func(string) bool {
	return func(path string) bool {
		for _, r := range rel {
			full := ModulePath + "/" + strings.Trim(r, "/")
			if path == full || strings.HasPrefix(path, full+"/") {
				return true
			}
		}
		return false
	}
}

// ThirdPartyExcept matches any non-stdlib, non-module import except the
// listed module paths.
func ThirdPartyExcept(allowed ...string) func(string) bool {
	return func(path string) bool {
		first := strings.SplitN(path, "/", 2)[0]
		if !strings.Contains(first, ".") || first == ModulePath {
			return false
		}
		for _, a := range allowed {
			if path == a || strings.HasPrefix(path, a+"/") {
				return false
			}
		}
		return true
	}
}

// AssertImports scans the non-test Go files in dir and fails t when any
// import breaks a rule.
func AssertImports(t testing.TB, dir string, rules ...ImportRule) {
	t.Helper()
	imports, err := DirectImports(dir)
	if err != nil {
		t.Fatalf("read imports in %s: %v", dir, err)
	}
	failIfViolations(t, imports, rules)
}

// DirectImports maps each import path used by non-test files in dir to the
// files importing it. Build tags are not evaluated.
func DirectImports(dir string) (map[string][]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	fset := token.NewFileSet()
	imports := make(map[string][]string)
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			continue
		}
		file, err := parser.ParseFile(fset, filepath.Join(dir, name), nil, parser.ImportsOnly)
		if err != nil {
			return nil, err
		}
		for _, imp := range file.Imports {
			path, err := strconv.Unquote(imp.Path.Value)
			if err != nil {
				return nil, err
			}
			imports[path] = append(imports[path], name)
		}
	}
	return imports, nil
}

type fatalLogger interface {
	Fatalf(format string, args ...any)
}

func failIfViolations(t fatalLogger, imports map[string][]string, rules []ImportRule) {
	var viols []string
	for path, files := range imports {
		for _, rule := range rules {
			if rule.Forbidden(path) {
				viols = append(viols, path+" (in "+strings.Join(files, ", ")+"): "+rule.Reason)
			}
		}
	}
	if len(viols) > 0 {
		sort.Strings(viols)
		t.Fatalf("forbidden imports detected:\n%s", strings.Join(viols, "\n"))
	}
}
