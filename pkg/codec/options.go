package codec

// Options controls per-call codec behavior. SkipValidate disables the
// Validate() call that Parse functions would otherwise run on the value
// they decode, while parse-time length and tag checks in Parse/Skip always
// run regardless of this flag — per spec §4.1, validation toggling never
// weakens wire-format safety. Constructors take no Options.
//
// This is threaded explicitly through Parse calls rather than held as
// package-level mutable state: the reference implementation's
// process-wide flag is an ergonomic choice, not part of the contract
// (spec design note 9).
type Options struct {
	SkipValidate bool
}

// Default returns the standard options: validation enabled.
func Default() Options {
	return Options{SkipValidate: false}
}

// NoValidate returns options with parse-time Validate() calls disabled,
// for bulk issuance throughput (spec §4.1 "Validation toggle").
func NoValidate() Options {
	return Options{SkipValidate: true}
}
