// Package document provides in-memory text documents and the registry of
// open documents.
//
// A Buffer stores its text as lines and bumps a revision counter on every
// change, so derived data such as resolved scopes can be cached per
// revision. Lines are 1-indexed. An empty document has one empty line.
package document
