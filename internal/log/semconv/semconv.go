package semconv

// Formula
const (
	// Stable ID of the formula as stored by the caller. Empty for ad-hoc sources.
	FormulaID = "formula_id"

	// Unique ID for a single call to Execute.
	ExecutionID = "execution_id"
)

// Cache
const (
	// Hex encoded BLAKE2b-256 digest of the formula identity and its inputs.
	CacheKey = "cache_key"

	// Whether the result was served from the cache.
	Cached = "cached"
)

// Evaluation
const (
	// Loop iterations spent by one evaluation, counted against the shared budget.
	LoopIterations = "loop_iterations"
)

// Errors & sandbox
const (
	// Error taxonomy kind, e.g. "SyntaxError".
	ErrorKind = "error_kind"

	// Kind of a security event, e.g. "unauthorized_call".
	SecurityEvent = "security_event"

	// The call name, query or identifier a security event is about.
	Identifier = "identifier"
)
