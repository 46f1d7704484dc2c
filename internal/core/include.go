package core

import (
	"sort"
	"strings"

	"recordhub/pkg/domain"
)

// Include is a tree of relations to attach when expanding a record. Paths are
// written as dot-separated relation names joined by commas; a to-many step may
// carry a prefix filter in parentheses:
//
//	books(title:no).author,events.location
type Include struct {
	Match    *PrefixMatch
	children map[string]*Include
}

// ParseInclude parses an include expression. The empty string yields an empty
// tree.
func ParseInclude(expr string) (*Include, error) {
	root := &Include{}
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return root, nil
	}
	paths, err := splitTopLevel(expr)
	if err != nil {
		return nil, err
	}
	for _, path := range paths {
		if err := root.addPath(path); err != nil {
			return nil, err
		}
	}
	return root, nil
}

// Names returns the relation names at this level in sorted order.
func (in *Include) Names() []string {
	if in == nil {
		return nil
	}
	names := make([]string, 0, len(in.children))
	for name := range in.children {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Child returns the subtree for relation name.
func (in *Include) Child(name string) (*Include, bool) {
	if in == nil {
		return nil, false
	}
	child, ok := in.children[name]
	return child, ok
}

// Empty reports whether the tree names no relations.
func (in *Include) Empty() bool {
	return in == nil || len(in.children) == 0
}

func (in *Include) addPath(path string) error {
	node := in
	for _, step := range splitSteps(path) {
		name, match, err := parseStep(step)
		if err != nil {
			return err
		}
		if node.children == nil {
			node.children = make(map[string]*Include)
		}
		child, ok := node.children[name]
		if !ok {
			child = &Include{Match: match}
			node.children[name] = child
		} else if match != nil {
			if child.Match != nil && *child.Match != *match {
				return domain.InvalidArgumentf("conflicting filters for include %q", name)
			}
			child.Match = match
		}
		node = child
	}
	return nil
}

func parseStep(step string) (string, *PrefixMatch, error) {
	step = strings.TrimSpace(step)
	open := strings.IndexByte(step, '(')
	if open < 0 {
		if step == "" || strings.ContainsAny(step, "):") {
			return "", nil, domain.InvalidArgumentf("include step %q", step)
		}
		return step, nil, nil
	}
	if !strings.HasSuffix(step, ")") {
		return "", nil, domain.InvalidArgumentf("unterminated include filter %q", step)
	}
	name := strings.TrimSpace(step[:open])
	field, prefix, ok := strings.Cut(step[open+1:len(step)-1], ":")
	field = strings.TrimSpace(field)
	if name == "" || !ok || field == "" {
		return "", nil, domain.InvalidArgumentf("include filter %q", step)
	}
	return name, &PrefixMatch{Field: field, Prefix: strings.TrimSpace(prefix)}, nil
}

// splitTopLevel splits on commas outside parentheses.
func splitTopLevel(expr string) ([]string, error) {
	var (
		parts []string
		depth int
		start int
	)
	for i, r := range expr {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return nil, domain.InvalidArgumentf("unbalanced include %q", expr)
			}
		case ',':
			if depth == 0 {
				parts = append(parts, expr[start:i])
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, domain.InvalidArgumentf("unbalanced include %q", expr)
	}
	parts = append(parts, expr[start:])
	for _, p := range parts {
		if strings.TrimSpace(p) == "" {
			return nil, domain.InvalidArgumentf("empty include path in %q", expr)
		}
	}
	return parts, nil
}

// splitSteps splits on dots outside parentheses so filter prefixes may
// contain dots.
func splitSteps(path string) []string {
	var (
		steps []string
		depth int
		start int
	)
	for i, r := range path {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case '.':
			if depth == 0 {
				steps = append(steps, path[start:i])
				start = i + 1
			}
		}
	}
	return append(steps, path[start:])
}
