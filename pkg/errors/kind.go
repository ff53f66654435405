package errors

// Kind classifies an error for callers that need to branch on it.
type Kind int

const (
	// KindUnknown is the kind of errors that were never classified.
	KindUnknown Kind = iota
	// KindInvalidParams marks malformed caller input.
	KindInvalidParams
	// KindNotFound marks a block number the chain does not know.
	KindNotFound
	// KindUpstreamUnavailable marks a failed chain or runtime read.
	KindUpstreamUnavailable
	// KindDecodeError marks bytes that could not be decoded.
	KindDecodeError
	// KindBuildError marks a failed flatten, pad or extend step.
	KindBuildError
	// KindProofError marks a failed opening proof.
	KindProofError
	// KindCacheUnavailable marks a poisoned extension cache.
	KindCacheUnavailable
	// KindInternal marks a broken internal invariant.
	KindInternal
)

var kindNames = map[Kind]string{
	KindUnknown:             "unknown",
	KindInvalidParams:       "invalid_params",
	KindNotFound:            "not_found",
	KindUpstreamUnavailable: "upstream_unavailable",
	KindDecodeError:         "decode_error",
	KindBuildError:          "build_error",
	KindProofError:          "proof_error",
	KindCacheUnavailable:    "cache_unavailable",
	KindInternal:            "internal",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// KindOf returns the outermost kind set in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	for err != nil {
		if e, ok := err.(*Error); ok && e.kind != KindUnknown {
			return e.kind
		}
		err = Unwrap(err)
	}
	return KindUnknown
}

// IsKind reports whether err is classified as kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// IsRetryable reports whether the same call may succeed later without any
// change on the caller's side.
func IsRetryable(err error) bool {
	switch KindOf(err) {
	case KindUpstreamUnavailable, KindCacheUnavailable:
		return true
	default:
		return false
	}
}
