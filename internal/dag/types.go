package dag

import "sync"

// Graph is a collection of nodes and their dependencies, representing a DAG.
// Nodes and edges remember their insertion order so that every traversal is
// deterministic. All operations on the graph are concurrency-safe.
type Graph struct {
	// mutex protects the node index during concurrent access.
	mutex sync.RWMutex
	// nodes stores all nodes in the graph, keyed by their unique ID.
	nodes map[string]*node
	// order holds node IDs in the order they were first added.
	order []string
}

// node represents a single vertex in the graph. It is un-exported to
// enforce interaction with the graph via the public API (using string IDs),
// not by direct struct manipulation.
type node struct {
	// id is the unique identifier for the node.
	id string
	// deps holds the nodes this node depends on (predecessors), in edge order.
	deps []*node
}

func (n *node) hasDep(id string) bool {
	for _, d := range n.deps {
		if d.id == id {
			return true
		}
	}
	return false
}
