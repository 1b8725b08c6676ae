package inventory

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// HierarchyNode is a feature or a grouping node in the feature hierarchy.
type HierarchyNode struct {
	Name     string
	Parent   *HierarchyNode
	Children []*HierarchyNode
	Depth    int // top-level nodes have depth 1
}

// Descendants counts every node below n.
func (n *HierarchyNode) Descendants() int {
	total := 0
	for _, c := range n.Children {
		total += 1 + c.Descendants()
	}
	return total
}

// Siblings counts the other nodes sharing n's parent.
func (n *HierarchyNode) Siblings(h *Hierarchy) int {
	if n.Parent == nil {
		return len(h.Roots) - 1
	}
	return len(n.Parent.Children) - 1
}

// Hierarchy is the feature dependency tree, in file order.
type Hierarchy struct {
	Roots []*HierarchyNode
	nodes map[string]*HierarchyNode
}

// Find returns the node named name, or nil.
func (h *Hierarchy) Find(name string) *HierarchyNode {
	return h.nodes[name]
}

// Walk visits every node depth-first in file order.
func (h *Hierarchy) Walk(fn func(n *HierarchyNode)) {
	var visit func(n *HierarchyNode)
	visit = func(n *HierarchyNode) {
		fn(n)
		for _, c := range n.Children {
			visit(c)
		}
	}
	for _, r := range h.Roots {
		visit(r)
	}
}

// ReadHierarchy parses a YAML nested mapping. Mapping values are child
// mappings, sequences of leaf names, or null for a leaf.
func ReadHierarchy(r io.Reader) (*Hierarchy, error) {
	if r == nil {
		return nil, errors.New("no input")
	}
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, errors.New("empty document")
	}
	h := &Hierarchy{nodes: make(map[string]*HierarchyNode)}
	roots, err := h.build(doc.Content[0], nil, 1)
	if err != nil {
		return nil, err
	}
	h.Roots = roots
	return h, nil
}

func (h *Hierarchy) build(y *yaml.Node, parent *HierarchyNode, depth int) ([]*HierarchyNode, error) {
	var out []*HierarchyNode
	add := func(name string, line int) (*HierarchyNode, error) {
		if _, dup := h.nodes[name]; dup {
			return nil, fmt.Errorf("line %d: duplicate node %q", line, name)
		}
		n := &HierarchyNode{Name: name, Parent: parent, Depth: depth}
		h.nodes[name] = n
		out = append(out, n)
		return n, nil
	}

	switch y.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(y.Content); i += 2 {
			key, val := y.Content[i], y.Content[i+1]
			n, err := add(key.Value, key.Line)
			if err != nil {
				return nil, err
			}
			if val.Kind == yaml.ScalarNode && val.ShortTag() == "!!null" {
				continue
			}
			children, err := h.build(val, n, depth+1)
			if err != nil {
				return nil, err
			}
			n.Children = children
		}
	case yaml.SequenceNode:
		for _, item := range y.Content {
			if item.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("line %d: sequence items must be leaf names", item.Line)
			}
			if _, err := add(item.Value, item.Line); err != nil {
				return nil, err
			}
		}
	default:
		return nil, fmt.Errorf("line %d: expected mapping or sequence", y.Line)
	}
	return out, nil
}
