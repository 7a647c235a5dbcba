// Package migrations holds the sql store's schema migrations. Each file
// registers itself from init(); cmd/storefront imports the package for its
// side effect.
package migrations
