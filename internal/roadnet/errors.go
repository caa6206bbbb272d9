package roadnet

import "errors"

// Sentinel errors returned while building or querying a road network.
var (
	// ErrMalformedInput indicates map data that cannot be parsed or that
	// references nodes it never declares. No graph is returned with it.
	ErrMalformedInput = errors.New("roadnet: malformed map data")

	// ErrEmptyGraph indicates a nearest-node query on a graph without nodes.
	ErrEmptyGraph = errors.New("roadnet: graph has no nodes")

	// ErrDuplicateNode indicates a second node declared with an existing ID.
	ErrDuplicateNode = errors.New("roadnet: duplicate node")

	// ErrUnknownNode indicates a segment endpoint that was never added.
	ErrUnknownNode = errors.New("roadnet: unknown node")

	// ErrSelfLoop indicates a segment whose endpoints are the same node.
	ErrSelfLoop = errors.New("roadnet: segment connects a node to itself")
)
