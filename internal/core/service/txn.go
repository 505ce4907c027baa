package service

import (
	"sync"

	"github.com/kompu/storefront/internal/core/domain"
	"github.com/kompu/storefront/internal/core/ports"
)

// Txn serialises read-modify-write cycles over whole collections within one
// process. It is not reentrant: a function running under Do must not call
// another service method that also takes the lock.
type Txn struct {
	mu sync.Mutex
}

func NewTxn() *Txn {
	return &Txn{}
}

// Do runs fn while holding the lock.
func (t *Txn) Do(fn func() error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return fn()
}

type nopRecorder struct{}

func (nopRecorder) Skipped(string, string)  {}
func (nopRecorder) Defaulted(string)        {}
func (nopRecorder) OrderRecorded(float64)   {}
func (nopRecorder) CheckoutFinished(string) {}

func orNop(r ports.Recorder) ports.Recorder {
	if r == nil {
		return nopRecorder{}
	}
	return r
}

// skip records the skipped operation and returns the typed error.
func skip(rec ports.Recorder, op string, reason domain.SkipReason) error {
	rec.Skipped(op, string(reason))
	return domain.Skip(op, reason)
}
