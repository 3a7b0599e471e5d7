package benchmark

import (
	"github.com/turboprint/turboprint/core"
	"github.com/turboprint/turboprint/handler"
)

type noopHandler struct{}

func newNoopHandler() handler.Handler {
	return noopHandler{}
}

func (noopHandler) Handle(_ handler.Owner, rec *core.Record) error {
	_ = len(rec.Message)
	return nil
}

func (noopHandler) Close() error {
	return nil
}
