// Package transitmodel builds and holds the frozen multimodal model: the
// timetable (stops, routes, trips, transfers), the per-stop walking access
// into the street graph, and TransitPoint endpoints bound to it. Everything
// here is constructed once and is immutable afterward (spec §3
// "Lifecycle"); internal cross-references are (array, index) pairs, never
// back-pointers (spec §9).
package transitmodel

// Dense integer identifiers, used as direct slice indices throughout the
// RAPTOR core and query orchestrators for cache-friendly scans (spec §3,
// §9). These replace the teacher's generic ID type parameter: the spec's
// array-of-structs / struct-of-arrays layout needs ids that are indices,
// not arbitrary comparable keys.
type StopID int32
type RouteID int32
type TripID int32

// Unreachable mirrors street.Unreachable for stop-to-stop and access
// durations that never resolved.
const Unreachable int32 = 1<<31 - 1
