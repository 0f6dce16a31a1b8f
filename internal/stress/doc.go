// Package stress generates synthetic transaction input for load-testing the
// engine, and reports the running process's memory footprint while it does.
//
// Both capabilities mirror
// the original generator: generate_random_transactions and
// get_current_memory. Neither has a third-party equivalent anywhere in the
// dependency corpus this module draws from (no rand crate analogue, no
// sysinfo analogue), so both are implemented on the standard library
// (math/rand/v2 and runtime) — see DESIGN.md.
package stress
