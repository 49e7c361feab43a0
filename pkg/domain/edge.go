package domain

import (
	"maps"
	"slices"
)

// edge is one parent/child relationship table. Both directions live in the
// same value so every write updates them together.
type edge struct {
	parent   map[ID]ID
	children map[ID][]ID
}

func newEdge() edge {
	return edge{parent: make(map[ID]ID), children: make(map[ID][]ID)}
}

func (e edge) parentOf(child ID) (ID, bool) {
	p, ok := e.parent[child]
	return p, ok
}

func (e edge) childrenOf(parent ID) []ID {
	return slices.Clone(e.children[parent])
}

func (e edge) contains(parent, child ID) bool {
	return slices.Contains(e.children[parent], child)
}

// set moves child under parent. An empty parent only detaches. Setting the
// current parent again changes nothing.
func (e edge) set(child, parent ID) {
	if current, ok := e.parent[child]; ok {
		if current == parent {
			return
		}
		e.detach(child, current)
	}
	if parent == "" {
		return
	}
	e.parent[child] = parent
	if !slices.Contains(e.children[parent], child) {
		e.children[parent] = append(e.children[parent], child)
	}
}

func (e edge) detach(child, parent ID) {
	delete(e.parent, child)
	kids := slices.DeleteFunc(e.children[parent], func(id ID) bool { return id == child })
	if len(kids) == 0 {
		delete(e.children, parent)
		return
	}
	e.children[parent] = kids
}

func (e edge) dropChild(child ID) {
	if p, ok := e.parent[child]; ok {
		e.detach(child, p)
	}
}

// dropParent detaches every child of parent and returns them in insertion order.
func (e edge) dropParent(parent ID) []ID {
	kids := e.children[parent]
	delete(e.children, parent)
	for _, k := range kids {
		delete(e.parent, k)
	}
	return kids
}

func (e edge) clone() edge {
	out := edge{parent: maps.Clone(e.parent), children: make(map[ID][]ID, len(e.children))}
	for k, v := range e.children {
		out.children[k] = slices.Clone(v)
	}
	return out
}

func (e edge) links() map[ID][]ID {
	out := make(map[ID][]ID, len(e.children))
	for k, v := range e.children {
		out[k] = slices.Clone(v)
	}
	return out
}
