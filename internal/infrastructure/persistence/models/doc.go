// Package models contains the GORM persistence models of the return workflow.
// Domain types carry no ORM tags; each model maps to one table and converts
// to and from its domain counterpart with ToDomain and FromDomain.
package models
