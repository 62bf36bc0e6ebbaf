package solid

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// GeometryError reports a brush whose faces do not close into a valid solid.
type GeometryError struct {
	BrushID uint64
	FaceID  uint64
	Reason  string
}

func (e *GeometryError) Error() string {
	return fmt.Sprintf("solid %d side %d: %s", e.BrushID, e.FaceID, e.Reason)
}

// DecodeError reports a solid block with values that cannot be read.
type DecodeError struct {
	BrushID uint64
	Line    int
	Err     error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("solid %d (line %d): %v", e.BrushID, e.Line, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// ImportLog collects per-brush import failures. It is safe for concurrent use.
type ImportLog struct {
	mu     sync.Mutex
	errs   []error
	logger *zap.Logger
}

// NewImportLog returns an empty log that also reports each entry to logger.
// A nil logger disables reporting.
func NewImportLog(logger *zap.Logger) *ImportLog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImportLog{logger: logger}
}

// Append records err.
func (l *ImportLog) Append(err error) {
	l.mu.Lock()
	l.errs = append(l.errs, err)
	l.mu.Unlock()

	switch e := err.(type) {
	case *GeometryError:
		l.logger.Warn("invalid brush skipped",
			zap.Uint64("brush", e.BrushID),
			zap.Uint64("side", e.FaceID),
			zap.String("reason", e.Reason),
		)
	default:
		l.logger.Warn("brush skipped", zap.Error(err))
	}
}

// Errors returns a copy of the recorded errors in append order.
func (l *ImportLog) Errors() []error {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]error, len(l.errs))
	copy(out, l.errs)
	return out
}

// Len returns the number of recorded errors.
func (l *ImportLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.errs)
}
