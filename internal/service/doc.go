// Package service contains the application-specific use cases and business
// logic. It orchestrates interactions between domain objects and repositories
// (defined in internal/store) to fulfill application features.
//
// The service package implements the application layer in the clean architecture,
// coordinating the flow of data between the HTTP handlers and the domain layer.
// Services apply transactional boundaries when an operation spans multiple
// stores (task mutations and the owner's counters), enforce authorization rules
// that need the loaded entity (creator-or-admin checks), and translate store
// errors into application-level errors the API layer maps to status codes.
//
// Services receive dependencies through constructor injection: stores, the
// database handle for transactions, the image store, the leaderboard cache,
// and the event emitter. They depend on interfaces, never on the concrete
// platform implementations.
package service
