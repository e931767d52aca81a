package store

import (
	"errors"

	"github.com/lib/pq"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// ErrReferenceViolation is returned when a write breaks a foreign key,
// e.g. a product pointing at a missing category.
var ErrReferenceViolation = errors.New("reference violation")

const pqForeignKeyViolation = pq.ErrorCode("23503")

// translate maps driver errors onto the package's sentinel errors.
func translate(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pqForeignKeyViolation {
		return errors.Join(ErrReferenceViolation, err)
	}
	return err
}
