// Package models holds the storefront's persisted entities. Field tags serve
// all three stores: json for the API, bson for MongoDB and gorm for SQL.
package models

import "github.com/shopspring/decimal"

func init() {
	// Prices travel as JSON numbers, matching what browsers send.
	decimal.MarshalJSONWithoutQuotes = true
}

// Roles carried in the identity token.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)
