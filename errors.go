package retriever

import (
	"errors"
	"fmt"
)

var (
	// ErrShapeMismatch is returned when a batch of identifiers does not have
	// the same length as the batch of documents it labels.
	ErrShapeMismatch = errors.New("shapes of documents and ids do not match")

	// ErrNotFitted is returned when an operation needs an index built by Fit.
	ErrNotFitted = errors.New("index has not been fitted")

	// ErrEmptyVocabulary is returned by Fit when no token survives analysis.
	ErrEmptyVocabulary = errors.New("empty vocabulary: documents contain no indexable terms")

	// ErrInvalidK is returned when the requested number of results is not positive.
	ErrInvalidK = errors.New("k must be positive")

	// ErrIDSpaceExhausted is returned when automatic id assignment would overflow uint32.
	ErrIDSpaceExhausted = errors.New("document id space exhausted")

	// ErrMisaligned is returned when the term matrix, weight matrix and ids
	// disagree on the number of rows.
	ErrMisaligned = errors.New("index rows are misaligned")

	// ErrStaleBatch is returned when a query batch was vectorized against an
	// index that has since been refitted.
	ErrStaleBatch = errors.New("query batch was vectorized against a previous fit")

	// ErrNilBatch is returned when Score or QueryBatchResults get no batch.
	ErrNilBatch = errors.New("query batch is nil")
)

// ShapeMismatchError reports the two lengths that disagreed.
// It matches ErrShapeMismatch with errors.Is.
type ShapeMismatchError struct {
	Documents int
	IDs       int
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("%s: %d documents, %d ids", ErrShapeMismatch, e.Documents, e.IDs)
}

// Is reports whether target is ErrShapeMismatch.
func (e *ShapeMismatchError) Is(target error) bool {
	return target == ErrShapeMismatch
}

// checkShape returns a *ShapeMismatchError when ids is non-nil and its length
// differs from the number of documents. A nil ids slice means "assign ids".
func checkShape(documents []string, ids []uint32) error {
	if ids == nil {
		return nil
	}
	if len(documents) != len(ids) {
		return &ShapeMismatchError{Documents: len(documents), IDs: len(ids)}
	}
	return nil
}
