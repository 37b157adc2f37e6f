package fetch

import (
	"context"
	stderrors "errors"

	"github.com/matzehuels/gdatamvn/pkg/cache"
	"github.com/matzehuels/gdatamvn/pkg/httputil"
)

func isNotFound(err error) bool {
	return stderrors.Is(err, httputil.ErrNotFound)
}

func isCanceled(err error) bool {
	return stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded)
}

func isNotProduced(err error) bool {
	return stderrors.Is(err, cache.ErrNotProduced)
}
