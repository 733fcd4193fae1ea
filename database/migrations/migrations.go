// Package migrations holds the schema history. Each file registers its
// migrations from init(); the CLI imports this package for the side effect.
package migrations
