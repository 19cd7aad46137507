package store

import (
	"errors"
	"fmt"
)

// ErrUnavailable indicates the backing resource is missing, corrupt or
// otherwise unreadable. Callers surface it to the user as a generic failure
// and must not assume the write happened.
var ErrUnavailable = errors.New("store unavailable")

// User is a registered participant. Created once, never mutated.
type User struct {
	ID       int64
	FullName string
}

// Submission is one completed period+importance entry. Append-only;
// FullName is a denormalized copy of the user's name at submission time.
type Submission struct {
	UserID     int64
	FullName   string
	Period     string
	Importance string
}

// Tables holds both collections of the backing resource. Submissions keep
// insertion order, which is the natural display order.
type Tables struct {
	Users       []User
	Submissions []Submission
}

func (t *Tables) FindUser(id int64) (User, bool) {
	for _, u := range t.Users {
		if u.ID == id {
			return u, true
		}
	}
	return User{}, false
}

// UserSubmissions returns the submissions of one user in insertion order.
func (t *Tables) UserSubmissions(id int64) []Submission {
	var out []Submission
	for _, s := range t.Submissions {
		if s.UserID == id {
			out = append(out, s)
		}
	}
	return out
}

// Store abstracts persistence of the two tables.
// Save is a full overwrite of the backing resource; there is no partial
// write. Update runs load+mutate+save under a single writer lock so that
// overlapping conversations cannot lose each other's rows.
// Implementations must be safe for concurrent use.
type Store interface {
	Load() (Tables, error)
	Save(Tables) error
	Update(fn func(*Tables) error) error
	Export() (name string, data []byte, err error)
}

func markUnavailable(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrUnavailable, err)
}
