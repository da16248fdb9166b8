// Package filter normalizes decoded CIP responses before they reach callers.
//
// The service encodes some values specially inside JSON strings. Dates, for
// instance, arrive as "/Date(1318781876000)/". A Normalizer walks the whole
// response tree and offers each scalar to an ordered list of Filters, which
// may replace it with a native Go value (DateFilter yields time.Time).
//
// # Ordering
//
// Filters run in registration order and are chained: each sees the value
// produced by the previous one. A filter that does not recognise a value
// returns it untouched, so adding filters never breaks a traversal.
//
// # Registration
//
// The filter list is fixed when a Normalizer is built. Defaults returns the
// built-in set; callers add their own with Func and limit them to a single
// service or operation with Scoped.
package filter
