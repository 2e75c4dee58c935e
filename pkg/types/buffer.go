package types

// StagingBuffer holds extracted cases between the navigation phase and the
// persistence phase. It is append-only while navigating and read as a whole
// batch when committing.
type StagingBuffer interface {
	// Append adds one case to the end of the batch. Implementations must
	// make the record durable before returning.
	Append(c Case) error

	// ReadAll returns the whole staged batch in append order. An absent
	// buffer reads as an empty batch.
	ReadAll() ([]Case, error)

	// Clear removes the staged batch. Callers invoke it only after the batch
	// has been committed.
	Clear() error
}
