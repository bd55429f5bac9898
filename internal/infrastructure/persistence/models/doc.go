// Package models contains the GORM persistence models of the relational
// analytics store. The tables mirror the storefront order, catalog and account
// documents: nested vendor orders and line items are normalized into their own
// tables keyed by the parent order.
//
// Models are read-only from this service's perspective; the mappers convert
// them into domain read models.
package models
