// Package service contains the application-specific use cases and business
// logic. It orchestrates interactions between domain objects and repositories
// (defined in internal/store) to fulfill application features.
//
// Services receive their dependencies through constructor injection, apply
// application-level rules that span entity and repository (ID generation,
// due-date normalization, optimistic concurrency), and translate storage
// errors into meaningful conditions for the API layer. The service layer
// depends on domain entities and repository interfaces (from store), but
// never on specific infrastructure implementations.
package service
