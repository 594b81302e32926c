// Package store defines the persistence interfaces of the school domain and
// the transaction helpers shared by their implementations. Every store can
// be bound to a transaction with WithTx so services compose several writes
// atomically.
package store
