package repositories

import (
	"errors"

	"github.com/lib/pq"
)

// ErrReferenceMissing reports an insert that points at a user or chat row
// that does not exist (or vanished concurrently).
var ErrReferenceMissing = errors.New("referenced row does not exist")

const pqForeignKeyViolation = "23503"

func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqForeignKeyViolation
}
