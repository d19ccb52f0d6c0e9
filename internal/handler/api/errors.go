package api

import "parking-lot-manager/internal/pkg/errs"

// errUnauthenticated is returned when a route lost its auth middleware.
var errUnauthenticated = errs.Wrap(errs.ErrUnauthenticated, "caller missing from context")
