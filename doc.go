// Package skoslens provides a SPARQL endpoint access layer: query
// execution, failure classification, capability detection, and display-name
// resolution for SKOS vocabulary endpoints.
//
// # Architecture
//
// The module is layered leaf-first:
//
//   - sanitize: escaping and validation for untrusted strings entering
//     query text, HTML output, or links, plus endpoint security and trust
//     checks and session-scoped credential storage.
//   - errors: a closed taxonomy of classified endpoint errors; the query
//     executor is the sole classification point, so callers never see raw
//     transport failures.
//   - prefix: URI to prefix:localName resolution through a static table, a
//     durable cache, and an external reverse lookup.
//   - sparql: the query executor itself; SPARQL 1.1 Protocol over HTTP POST
//     with auth negotiation, retry with exponential backoff, and
//     JSON-first/XML-fallback result parsing.
//   - detect: fail-safe capability probes (named graphs, SKOS graphs,
//     duplicate triples, label languages) built on the executor.
//
// Supporting packages under pkg/ provide the generic infrastructure:
// kvstore (session and durable key-value stores with statistics and
// Prometheus metrics), retry (exponential backoff), and worker (a bounded
// generic worker pool used for batched language detection).
//
// The cmd/skoslens binary wires everything into an analyze/query/test/
// resolve command line tool.
package skoslens
