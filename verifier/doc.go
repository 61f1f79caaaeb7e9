// Package verifier checks a decoded module for structural consistency.
//
// Verification guarantees that an index into any module table uniquely
// names the entry at that index, and additionally that:
//   - struct and field definitions are consistent
//   - the handles in struct and function definitions point to the self
//     module
//   - every struct and function handle pointing to the self module has
//     a definition
//
// This is the first gate an untrusted module passes after decoding.
// The checker is a pure read-only predicate: it never mutates the
// module, holds no state between calls, and two concurrent checks
// need no coordination.
//
// Run the check:
//
//	if err := verifier.VerifyModule(m); err != nil {
//	    var v *verifier.Violation
//	    if errors.As(err, &v) {
//	        log.Printf("rejected: %s table, index %d: %s", v.Table, v.Index, v.Reason)
//	    }
//	}
//
// On failure the error is always a single *Violation naming the table,
// the 0-based position of the offending entry, and the invariant that
// broke. Checks run in a fixed order and stop at the first failure, so
// the result is deterministic for a given module.
package verifier
