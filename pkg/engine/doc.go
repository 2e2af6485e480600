// Package engine provides the core stub server: endpoint resolution,
// response writing, dynamic CORS enforcement, and the HTTP listener that
// serves both stub traffic and the mounted management API.
package engine
