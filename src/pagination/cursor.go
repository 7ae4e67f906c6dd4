// backend/src/pagination/cursor.go
package pagination

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Phase is the upstream record category a cursor currently targets.
type Phase string

const (
	PhaseTransfers  Phase = "transfers"
	PhaseExtrinsics Phase = "extrinsics"
)

var ErrBadCursor = errors.New("invalid cursor")

// Cursor is a resumable position in a paginated fetch sequence. The zero
// page of the transfers phase is the start of every session. Externally it
// travels as the opaque string "phase:page" for backward compatibility.
type Cursor struct {
	Phase Phase
	Page  int
}

func (c Cursor) String() string {
	return fmt.Sprintf("%s:%d", c.Phase, c.Page)
}

// ParseCursor decodes the opaque wire form. An empty string is the initial
// cursor ("transfers:0").
func ParseCursor(s string) (Cursor, error) {
	if s == "" {
		return Cursor{Phase: PhaseTransfers, Page: 0}, nil
	}
	phaseStr, pageStr, ok := strings.Cut(s, ":")
	if !ok {
		return Cursor{}, fmt.Errorf("%w: %q", ErrBadCursor, s)
	}
	phase := Phase(phaseStr)
	if phase != PhaseTransfers && phase != PhaseExtrinsics {
		return Cursor{}, fmt.Errorf("%w: unknown phase %q", ErrBadCursor, phaseStr)
	}
	page, err := strconv.Atoi(pageStr)
	if err != nil || page < 0 {
		return Cursor{}, fmt.Errorf("%w: bad page %q", ErrBadCursor, pageStr)
	}
	return Cursor{Phase: phase, Page: page}, nil
}
