// Package models holds the GORM models of the sync tables. Repositories map
// them to and from the partner and integration domain types with ToDomain and
// FromDomain, so the domain packages carry no ORM tags.
package models
