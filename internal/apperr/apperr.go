// Package apperr defines the error taxonomy shared by the store, envelope,
// and upgrade packages. Every kind named in spec.md §7 has a sentinel here;
// callers compare with errors.Is rather than type assertions, mirroring how
// pkg/ntag424/errors.go exposes Is* predicates over its SWError type.
package apperr

import "errors"

// Kind identifies one of the error categories surfaced to the dispatcher.
type Kind int

const (
	KindUnknown Kind = iota
	KindWrongMasterPassword
	KindCorruptionLikely
	KindCorruptionError
	KindOutdatedBinary
	KindNeedUpgradeFromV1
	KindNoUpgrade
	KindAppExists
	KindAppNotFound
	KindWeakParams
	KindInvalidLength
	KindIO
)

func (k Kind) String() string {
	switch k {
	case KindWrongMasterPassword:
		return "wrong master password"
	case KindCorruptionLikely:
		return "corruption likely"
	case KindCorruptionError:
		return "corruption error"
	case KindOutdatedBinary:
		return "outdated binary"
	case KindNeedUpgradeFromV1:
		return "needs upgrade from v1"
	case KindNoUpgrade:
		return "upgrade declined"
	case KindAppExists:
		return "entry already exists"
	case KindAppNotFound:
		return "entry not found"
	case KindWeakParams:
		return "weak scrypt parameters"
	case KindInvalidLength:
		return "invalid length"
	case KindIO:
		return "io error"
	default:
		return "unknown error"
	}
}

// Error is the concrete error type carrying a Kind. Its message never
// includes secret material; callers that need more context wrap it with
// fmt.Errorf("...: %w", err) rather than embedding extra fields here.
type Error struct {
	Kind Kind
	msg  string
}

func (e *Error) Error() string {
	if e.msg != "" {
		return e.msg
	}
	return e.Kind.String()
}

// Is lets errors.Is match any *Error sharing the same Kind, so the package
// sentinels below (ErrWrongMasterPassword, etc.) work as comparison targets
// even against an Error built with New and a custom message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// New builds an Error for kind with an optional custom message. An empty
// msg falls back to the Kind's description.
func New(kind Kind, msg string) error {
	return &Error{Kind: kind, msg: msg}
}

// Is reports whether err (or anything it wraps) carries kind. This is the
// primary way callers should branch on error category.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// Sentinels for errors.Is-style comparison where no extra message is
// needed.
var (
	ErrWrongMasterPassword = New(KindWrongMasterPassword, "")
	ErrCorruptionLikely    = New(KindCorruptionLikely, "")
	ErrCorruptionError     = New(KindCorruptionError, "")
	ErrOutdatedBinary      = New(KindOutdatedBinary, "")
	ErrNeedUpgradeFromV1   = New(KindNeedUpgradeFromV1, "")
	ErrNoUpgrade           = New(KindNoUpgrade, "")
	ErrAppExists           = New(KindAppExists, "")
	ErrAppNotFound         = New(KindAppNotFound, "")
	ErrWeakParams          = New(KindWeakParams, "")
	ErrInvalidLength       = New(KindInvalidLength, "")
	ErrIO                  = New(KindIO, "")
)
