// Package dag is a small string-keyed directed acyclic graph. Nodes and
// edges remember their insertion order, so TopologicalOrder is
// deterministic: nodes are visited in the order they were added and each
// node's dependencies in the order its edges were added.
package dag
