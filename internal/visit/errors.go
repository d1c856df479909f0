package visit

import (
	"errors"
	"fmt"

	"github.com/roach88/qnorm/internal/ambient"
)

// ErrorCode categorizes normalization failures.
type ErrorCode string

const (
	// ErrCodeMissingState indicates a rule needed a capability the context
	// did not carry.
	ErrCodeMissingState ErrorCode = "MISSING_STATE"

	// ErrCodeRuleFailed indicates a rule returned an error of its own.
	ErrCodeRuleFailed ErrorCode = "RULE_FAILED"

	// ErrCodeInvalidResult indicates a rule returned a nil node without
	// an error.
	ErrCodeInvalidResult ErrorCode = "INVALID_RESULT"

	// ErrCodeInvalidNode indicates a nil node was submitted for resolution.
	ErrCodeInvalidNode ErrorCode = "INVALID_NODE"

	// ErrCodeDepthExceeded indicates recursion went deeper than the
	// engine's limit.
	ErrCodeDepthExceeded ErrorCode = "DEPTH_EXCEEDED"
)

// RuntimeError reports a failed normalization pass.
type RuntimeError struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// PassID identifies the pass that failed.
	PassID string

	// Rule names the rule that failed, when one did.
	Rule string

	// Kind is the variant of the node being resolved.
	Kind string

	// Details contains additional context.
	Details map[string]string

	// Err is the underlying error, if any.
	Err error
}

func (e *RuntimeError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Rule != "" {
		msg = fmt.Sprintf("%s (rule=%s, kind=%s)", msg, e.Rule, e.Kind)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// IsMissingState reports whether err stems from missing ambient state.
func IsMissingState(err error) bool {
	var re *RuntimeError
	if errors.As(err, &re) && re.Code == ErrCodeMissingState {
		return true
	}
	var me *ambient.MissingStateError
	return errors.As(err, &me)
}

// IsRuleFailure reports whether err is a rule's own failure.
func IsRuleFailure(err error) bool {
	var re *RuntimeError
	return errors.As(err, &re) && re.Code == ErrCodeRuleFailed
}

// IsDepthExceeded reports whether err is a recursion limit error.
func IsDepthExceeded(err error) bool {
	var re *RuntimeError
	return errors.As(err, &re) && re.Code == ErrCodeDepthExceeded
}

// CodeOf returns the code of the RuntimeError in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code
	}
	return ""
}

// newRuleError wraps an error returned by rule. An error that already is a
// RuntimeError came from a nested resolution and is passed through, so the
// report names the innermost failing rule.
func newRuleError(passID, rule, kind string, err error) error {
	var re *RuntimeError
	if errors.As(err, &re) {
		return err
	}

	var me *ambient.MissingStateError
	if errors.As(err, &me) {
		return &RuntimeError{
			Code:    ErrCodeMissingState,
			Message: fmt.Sprintf("rule requires %s in the visit context", me.Capability),
			PassID:  passID,
			Rule:    rule,
			Kind:    kind,
			Details: map[string]string{"capability": me.Capability},
			Err:     err,
		}
	}

	return &RuntimeError{
		Code:    ErrCodeRuleFailed,
		Message: "rule failed",
		PassID:  passID,
		Rule:    rule,
		Kind:    kind,
		Err:     err,
	}
}

func newDepthError(passID string, depth, maxDepth int) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeDepthExceeded,
		Message: fmt.Sprintf("resolution depth %d exceeds limit %d", depth, maxDepth),
		PassID:  passID,
		Details: map[string]string{
			"depth":     fmt.Sprintf("%d", depth),
			"max_depth": fmt.Sprintf("%d", maxDepth),
		},
	}
}
