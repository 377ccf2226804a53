// Package align maps a playback position onto the transcript line that
// should be displayed.
//
// ActiveAt is the pure lookup: the rightmost segment whose start is at or
// before the clock, found by binary search. Cursor wraps it with the
// installed transcript and a one-entry cache that is invalidated whenever a
// transcript is installed or cleared. Clock is a lock-free float64 holder
// for the current playback position.
package align
