// Package rostime provides the two clock domains used by the runtime:
// Time (possibly simulated, may jump) and WallTime (monotonic), plus
// their signed Duration/WallDuration analogues and the Rate/WallRate
// sleep helpers built on top of them.
//
// Time and WallTime are distinct named types with no shared arithmetic
// operators, so mixing the two clock domains is a compile error rather
// than an implicit, silently wrong conversion.
package rostime
