// Package spell provides query spelling correction backed by a frequency
// dictionary built from item titles, descriptions, and categories.
package spell
