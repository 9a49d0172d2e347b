// Package store defines the persistence interfaces consumed by the
// application core, together with the sentinel errors and transaction
// helpers shared by all implementations. The scheduler itself never touches
// storage; callers load cards through these interfaces and persist the
// values the scheduling engine returns.
package store
