package errs

import cr "github.com/cockroachdb/errors"

// Kind is the error code surfaced to callers of the core.
type Kind string

const (
	KindNotFound         Kind = "NOT_FOUND"
	KindInvalidState     Kind = "INVALID_STATE"
	KindInvalidArgument  Kind = "INVALID_ARGUMENT"
	KindUserHasActive    Kind = "CONFLICT_USER_HAS_ACTIVE"
	KindLotBusy          Kind = "CONFLICT_LOT_BUSY"
	KindDuplicate        Kind = "CONFLICT_DUPLICATE"
	KindNoSpotAvailable  Kind = "NO_SPOT_AVAILABLE"
	KindNotParked        Kind = "NOT_PARKED"
	KindPermissionDenied Kind = "PERMISSION_DENIED"
	KindUnauthenticated  Kind = "UNAUTHENTICATED"
	KindTimeout          Kind = "TIMEOUT"
	KindTransientStore   Kind = "TRANSIENT_STORE"
	KindInternal         Kind = "INTERNAL"
)

// Sentinel errors for the usecase layers. Wrap or Mark them; compare with errors.Is.
var (
	ErrNotFound         = cr.New("entity not found")
	ErrInvalidState     = cr.New("operation not allowed in current state")
	ErrInvalidArgument  = cr.New("invalid argument")
	ErrUserHasActive    = cr.New("user already has an active reservation")
	ErrLotBusy          = cr.New("lot has occupied spots or active reservations")
	ErrDuplicate        = cr.New("duplicate entity")
	ErrNoSpotAvailable  = cr.New("no spot available")
	ErrNotParked        = cr.New("reservation is not parked")
	ErrPermissionDenied = cr.New("permission denied")
	ErrUnauthenticated  = cr.New("invalid credentials")
	ErrTimeout          = cr.New("deadline exceeded")
	ErrTransientStore   = cr.New("store unavailable")
	ErrInternal         = cr.New("internal error")
)

var kinds = []struct {
	sentinel error
	kind     Kind
}{
	{ErrNotFound, KindNotFound},
	{ErrInvalidState, KindInvalidState},
	{ErrInvalidArgument, KindInvalidArgument},
	{ErrUserHasActive, KindUserHasActive},
	{ErrLotBusy, KindLotBusy},
	{ErrDuplicate, KindDuplicate},
	{ErrNoSpotAvailable, KindNoSpotAvailable},
	{ErrNotParked, KindNotParked},
	{ErrPermissionDenied, KindPermissionDenied},
	{ErrUnauthenticated, KindUnauthenticated},
	{ErrTimeout, KindTimeout},
	{ErrTransientStore, KindTransientStore},
}

// KindOf classifies err; anything unrecognized is INTERNAL.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if cr.Is(err, k.sentinel) {
			return k.kind
		}
	}
	return KindInternal
}

func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
