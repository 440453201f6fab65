// Package prefix resolves predicate and type URIs to namespace-prefix plus
// local-name pairs for display. Resolution consults a static table of
// well-known vocabularies, then a durable cache, then an external reverse
// lookup service. Unresolvable namespaces degrade to an empty prefix rather
// than an error; a missing prefix degrades display, not function.
package prefix

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cognizone/skoslens/pkg/kvstore"
	"github.com/cognizone/skoslens/sanitize"
)

// Entry is a resolved URI: a namespace prefix (possibly empty when the
// namespace is unknown) and the URI's local name.
type Entry struct {
	Prefix    string `json:"prefix"`
	LocalName string `json:"localName"`
}

// cacheKeyPrefix namespaces resolver entries inside the shared store.
const cacheKeyPrefix = "prefix:"

// Resolver maps URIs to Entry values. The cache is append-only: entries are
// never evicted, only overwritten, and negative results are cached too so a
// failing namespace is looked up at most once.
type Resolver struct {
	cache  kvstore.Store
	lookup Lookup
	logger *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver) error

// WithLookup sets the external reverse-namespace lookup. Without one,
// unknown namespaces resolve to an empty prefix immediately.
func WithLookup(l Lookup) Option {
	return func(r *Resolver) error {
		r.lookup = l
		return nil
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		r.logger = logger
		return nil
	}
}

// NewResolver creates a Resolver backed by the given cache store. The store
// is expected to be durable; resolution results have no expiry.
func NewResolver(cache kvstore.Store, options ...Option) (*Resolver, error) {
	if cache == nil {
		return nil, fmt.Errorf("cache store cannot be nil")
	}
	r := &Resolver{
		cache:  cache,
		logger: slog.Default(),
	}
	for _, opt := range options {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// ResolveURI resolves one URI to its prefix and local name. Invalid or
// unsplittable URIs resolve to an empty prefix with the whole input as the
// local name.
func (r *Resolver) ResolveURI(ctx context.Context, uri string) Entry {
	trimmed, ok := sanitize.ValidateURI(uri)
	if !ok {
		return Entry{LocalName: strings.TrimSpace(uri)}
	}

	namespace, local, ok := SplitURI(trimmed)
	if !ok {
		return Entry{LocalName: trimmed}
	}

	return Entry{Prefix: r.resolveNamespace(ctx, namespace), LocalName: local}
}

// ResolveURIs resolves a batch of URIs. URIs sharing a namespace are grouped
// first so each namespace costs at most one cache read and one external
// lookup for the whole batch.
func (r *Resolver) ResolveURIs(ctx context.Context, uris []string) map[string]Entry {
	out := make(map[string]Entry, len(uris))

	type member struct {
		uri   string
		local string
	}
	groups := make(map[string][]member)

	for _, uri := range uris {
		trimmed, ok := sanitize.ValidateURI(uri)
		if !ok {
			out[uri] = Entry{LocalName: strings.TrimSpace(uri)}
			continue
		}
		namespace, local, ok := SplitURI(trimmed)
		if !ok {
			out[uri] = Entry{LocalName: trimmed}
			continue
		}
		groups[namespace] = append(groups[namespace], member{uri: uri, local: local})
	}

	for namespace, members := range groups {
		prefix := r.resolveNamespace(ctx, namespace)
		for _, m := range members {
			out[m.uri] = Entry{Prefix: prefix, LocalName: m.local}
		}
	}
	return out
}

// resolveNamespace returns the prefix for one namespace: static table first,
// then the durable cache, then the external lookup. Lookup outcomes, empty
// ones included, are written back to the cache.
func (r *Resolver) resolveNamespace(ctx context.Context, namespace string) string {
	if prefix, ok := KnownPrefix(namespace); ok {
		return prefix
	}

	if prefix, ok := r.cache.Get(cacheKeyPrefix + namespace); ok {
		return prefix
	}

	prefix := ""
	if r.lookup != nil {
		found, err := r.lookup.ReversePrefix(ctx, namespace)
		if err != nil {
			r.logger.Debug("prefix lookup failed", "namespace", namespace, "error", err)
		} else {
			prefix = found
		}
	}

	if _, err := r.cache.Set(cacheKeyPrefix+namespace, prefix); err != nil {
		r.logger.Debug("prefix cache write failed", "namespace", namespace, "error", err)
	}
	return prefix
}

// SplitURI splits a URI into namespace and local name at the last '#' or,
// failing that, the last '/'. The separator stays with the namespace.
func SplitURI(uri string) (namespace, local string, ok bool) {
	if idx := strings.LastIndexByte(uri, '#'); idx >= 0 && idx < len(uri)-1 {
		return uri[:idx+1], uri[idx+1:], true
	}
	if idx := strings.LastIndexByte(uri, '/'); idx >= 0 && idx < len(uri)-1 {
		return uri[:idx+1], uri[idx+1:], true
	}
	return "", "", false
}

// FormatQualifiedName renders an Entry as "prefix:localName", or the bare
// local name when the prefix is empty.
func FormatQualifiedName(e Entry) string {
	if e.Prefix == "" {
		return e.LocalName
	}
	return e.Prefix + ":" + e.LocalName
}
