package commands

import (
	"context"

	"parking-lot-manager/internal/domain/event"
	"parking-lot-manager/internal/infra"
	"parking-lot-manager/internal/pkg/errs"
	"parking-lot-manager/internal/usecase/shared"
)

func requireAdmin(caller shared.Caller) error {
	if !caller.IsAdmin {
		return errs.Wrap(errs.ErrPermissionDenied, "admin only")
	}
	return nil
}

// translateConflict maps unique-index violations raised at commit time to
// the error the precondition check would have reported.
func translateConflict(err error) error {
	if !infra.IsKind(err, infra.KindDuplicateKey) {
		return err
	}
	switch infra.Constraint(err) {
	case infra.ConstraintActivePerUser:
		return errs.Wrap(errs.ErrUserHasActive, "reserve")
	case infra.ConstraintActivePerSpot:
		return errs.Wrap(errs.ErrNoSpotAvailable, "reserve")
	default:
		return err
	}
}

// outbox collects events inside a transaction closure. It is reset on each
// attempt because the unit of work may re-run the closure.
type outbox struct {
	events []event.Event
}

func (o *outbox) reset()                 { o.events = o.events[:0] }
func (o *outbox) add(evs ...event.Event) { o.events = append(o.events, evs...) }

func (o *outbox) flush(ctx context.Context, pub shared.EventPublisher) {
	if pub == nil || len(o.events) == 0 {
		return
	}
	pub.Publish(ctx, o.events...)
}
