package repositories

import (
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
)

var (
	// ErrNotFound is returned when a document does not exist.
	ErrNotFound = errors.New("document not found")

	// ErrDuplicateSlug is returned when a write violates the unique slug
	// index. The post service retries once with a recomputed slug.
	ErrDuplicateSlug = errors.New("duplicate slug")
)

// mapWriteErr converts driver errors into the repository error taxonomy.
func mapWriteErr(err error) error {
	if err == nil {
		return nil
	}
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateSlug
	}
	return err
}
