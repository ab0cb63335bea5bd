// Package featured maintains the featured listings carousel: a background
// loop that keeps the featured flag on the most popular active items.
package featured
