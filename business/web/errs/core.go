package errs

import (
	"errors"
	"net/http"

	"github.com/ardanlabs/simwallet/business/core/dashboard"
	"github.com/ardanlabs/simwallet/business/core/explorer"
)

// coreStatus maps the expected errors of the core packages to the status
// a caller receives for them.
var coreStatus = []struct {
	err    error
	status int
}{
	{dashboard.ErrUnknownTab, http.StatusNotFound},
	{explorer.ErrOutOfRange, http.StatusNotFound},
	{explorer.ErrNotOpen, http.StatusConflict},
	{explorer.ErrUnknownDirection, http.StatusBadRequest},
	{explorer.ErrUnknownScroll, http.StatusBadRequest},
	{explorer.ErrUnknownTarget, http.StatusBadRequest},
}

// FromCore wraps an expected core error as a Trusted error with its status.
// Any other error is returned as is and ends up as a 500.
func FromCore(err error) error {
	if err == nil || IsTrusted(err) {
		return err
	}

	for _, cs := range coreStatus {
		if errors.Is(err, cs.err) {
			return NewTrusted(err, cs.status)
		}
	}

	return err
}
