// Package listing implements the marketplace write path: creating,
// updating, and deleting listings, with embedding generation and vector
// index synchronization on every change.
package listing
