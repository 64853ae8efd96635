// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// Key Principles:
// 1. Domain entities should be free of GORM tags and infrastructure concerns
// 2. Persistence models contain all GORM annotations and table mappings
// 3. Mappers convert between domain entities and persistence models
// 4. Repositories use persistence models for database operations
//
// Structure:
// - base.go: Base persistence models (BaseModel, AggregateModel, OrgAggregateModel)
// - identity.go: Identity context models (User, Role)
// - outbox.go: Outbox pattern model for event delivery
//
// Most reporting aggregates carry their GORM tags directly on the domain struct;
// this package holds the contexts where the mapping is too involved for that.
package models
