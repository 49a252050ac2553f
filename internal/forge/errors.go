package forge

import (
	"fmt"

	"github.com/pkg/errors"
)

// Error kinds the portal reacts to. 401 always forces a session clear and
// redirect to login; 403 redirects to the dashboard; anything else is
// surfaced to the user and the prior state is kept.
var (
	ErrUnauthenticated = errors.New("forge: unauthenticated")
	ErrForbidden       = errors.New("forge: forbidden")
	ErrNotFound        = errors.New("forge: not found")
)

// RemoteError carries a non-2xx response that is not one of the sentinel
// kinds above: a server fault or a rejected request.
type RemoteError struct {
	StatusCode int
	Detail     string
}

func (e *RemoteError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("forge: remote error %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("forge: remote error %d", e.StatusCode)
}
