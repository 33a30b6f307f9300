// Package models contains GORM-specific persistence models that map to database tables.
// Domain entities stay free of GORM tags; repositories convert with ToDomain and FromDomain.
package models
