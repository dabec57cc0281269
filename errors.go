package optics

import "errors"

var (
	// ErrAlreadyExists is returned by Create when a cell with that name
	// already exists.
	ErrAlreadyExists = errors.New("optics: metric already exists")
	// ErrNotFound reports a lookup that found no cell. No function in this
	// package returns it: Get reports a missing name through its boolean
	// result, and the Open functions create the cell instead.
	ErrNotFound = errors.New("optics: metric not found")
	// ErrTypeMismatch is returned when Open is called against an existing
	// name registered under a different metric type.
	ErrTypeMismatch = errors.New("optics: metric type mismatch")
	// ErrNameTooLong is returned when a metric or prefix name exceeds
	// maxNameLen bytes.
	ErrNameTooLong = errors.New("optics: name too long")
	// ErrNameEmpty is returned for an empty metric or prefix name.
	ErrNameEmpty = errors.New("optics: name is empty")
	// ErrBusy is returned by a Dist read when the retired slot's spinlock
	// is currently held by a straggling recorder; the caller should skip
	// this cell for the current sweep.
	ErrBusy = errors.New("optics: metric busy, retry next sweep")
	// ErrInvalidBucketEdges is returned (wrapped) by CreateHistogram and
	// OpenHistogram when the supplied edges are not strictly ascending or
	// describe fewer than 1 or more than maxHistogramBuckets buckets.
	ErrInvalidBucketEdges = errors.New("optics: invalid histogram bucket edges")
	// ErrInvalidQuantile is returned (wrapped) by CreateQuantile and
	// OpenQuantile when q is not in (0,1).
	ErrInvalidQuantile = errors.New("optics: quantile target must be in (0,1)")
	// ErrClosed is returned by Create/Open calls against a Registry that
	// has already been closed.
	ErrClosed = errors.New("optics: closed")
	// ErrNilBackend is returned by AddBackend(nil).
	ErrNilBackend = errors.New("optics: nil backend")
	// ErrStopIteration is returned by a ForEach callback to end traversal
	// early without signalling an error to the caller.
	ErrStopIteration = errors.New("optics: stop iteration")
)
