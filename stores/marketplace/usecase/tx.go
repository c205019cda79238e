package usecase

import (
	"github.com/Alanle1011/contract-marketplace/base/ctx"
)

// tx stages the store mutations of one engine operation so the
// external transfer can be attempted before anything becomes
// observable. Flush applies the staged mutations in order, dropping
// the tx discards them all.
type tx struct {
	ops []func(c ctx.Ctx) error
}

func (t *tx) stage(op func(c ctx.Ctx) error) {
	t.ops = append(t.ops, op)
}

func (t *tx) flush(c ctx.Ctx) error {
	for _, op := range t.ops {
		if err := op(c); err != nil {
			return err
		}
	}
	t.ops = nil
	return nil
}
