package validitywindow

import "fmt"

// VerificationReason names why a certificate or a window rotation was
// rejected, so callers can distinguish a stale batch from a forged
// proof without parsing error strings.
type VerificationReason string

const (
	ReasonWrongIssuer        VerificationReason = "wrong_issuer"
	ReasonOutOfWindow        VerificationReason = "out_of_window"
	ReasonRootMismatch       VerificationReason = "root_mismatch"
	ReasonBadSignature       VerificationReason = "bad_signature"
	ReasonNonContiguousBatch VerificationReason = "non_contiguous_batch"
	ReasonUnknownProofType   VerificationReason = "unknown_proof_type"
)

// VerificationError reports that a certificate or a window rotation
// failed a cryptographic or logical check, naming the specific reason
// so the failure is actionable.
type VerificationError struct {
	Reason  VerificationReason
	Message string
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("verification failed (%s): %s", e.Reason, e.Message)
}

// NewVerificationError builds a VerificationError for reason with a
// formatted message.
func NewVerificationError(reason VerificationReason, format string, args ...interface{}) *VerificationError {
	return &VerificationError{Reason: reason, Message: fmt.Sprintf(format, args...)}
}
