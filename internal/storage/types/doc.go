// Package types defines the core data types used throughout the store.
//
// Key types:
//   - DataPoint: a single immutable tagged measurement
package types
