// Package source turns directive source references into document text.
//
// A reference such as "Page", "wiki:Page@3", "https://example.org/x.txt",
// "source:trunk/README@42" or "ticket:12:comment:3" is parsed into a Ref and
// handed to a Resolver. The Mux routes each scheme to its resolver; the
// concrete resolvers live in the remote, pages, repo and tickets
// subpackages. Capability checks are performed by the caller before a
// resolver is consulted.
package source
