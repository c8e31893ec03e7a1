// Package tabular contains the core components of Tabular, an in-memory
// columnar table engine with explicit copy-versus-share ownership semantics,
// grouping, joining and reshaping. This root package defines the types which
// are employed during regular use of the engine, as well as in its extension,
// and is an excellent overview of Tabular's key concepts.
package tabular
