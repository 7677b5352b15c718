// Package idx mints the identifiers of idstub resources. IDs are ULIDs, so
// they sort by creation time and are safe to use as the last segment of a
// resource href.
package idx

import (
	"crypto/rand"
	"errors"
	"net/url"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

type ID string

// Zero is the empty ID.
const Zero ID = ""

// ErrInvalid reports a malformed ULID string.
var ErrInvalid = errors.New("idx: invalid ulid")

var (
	mu      sync.Mutex
	entropy = ulid.Monotonic(rand.Reader, 0)
)

// New returns an ID for the current time. IDs minted within the same
// millisecond still increase.
func New() ID {
	return NewAt(time.Now())
}

// NewAt returns an ID carrying t.
func NewAt(t time.Time) ID {
	mu.Lock()
	defer mu.Unlock()
	return ID(ulid.MustNew(ulid.Timestamp(t.UTC()), entropy).String())
}

// Parse validates s as a ULID.
func Parse(s string) (ID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Zero, ErrInvalid
	}
	if _, err := ulid.ParseStrict(s); err != nil {
		return Zero, ErrInvalid
	}
	return ID(s), nil
}

// MustParse parses or panics. For fixed IDs in tests.
func MustParse(s string) ID {
	id, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return id
}

// FromHref returns the last path segment of a resource href, such as the
// account id of ".../v1/accounts/{id}". The segment is not validated, so
// hrefs minted by another service pass through unchanged.
func FromHref(href string) ID {
	if u, err := url.Parse(href); err == nil {
		href = u.Path
	}
	href = strings.TrimRight(href, "/")
	if href == "" {
		return Zero
	}
	return ID(path.Base(href))
}

func (id ID) IsZero() bool   { return id == Zero }
func (id ID) String() string { return string(id) }

// Time is the creation time embedded in id, or the zero time when id is not
// a ULID.
func (id ID) Time() time.Time {
	u, err := ulid.ParseStrict(id.String())
	if err != nil {
		return time.Time{}
	}
	return ulid.Time(u.Time())
}

// Compare orders a and b by creation time.
func Compare(a, b ID) int {
	return strings.Compare(a.String(), b.String())
}
