package safe

import (
	"context"
	"io"

	"github.com/cybergard/ebiosgard/pkg/utils/logging"
)

// Close closes an io.Closer, logging the error instead of returning
// it. Meant for defer sites where the report has already been written
// and a close failure must not change the command outcome.
func Close(ctx context.Context, closer io.Closer) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logging.From(ctx).Error("failed to close", "error", err)
	}
}

// Write writes rendered output to w, logging a failure instead of
// returning it. Nil writers are ignored.
func Write(ctx context.Context, w io.Writer, data []byte) {
	if w == nil {
		return
	}
	if _, err := w.Write(data); err != nil {
		logging.From(ctx).Error("failed to write", "error", err)
	}
}
