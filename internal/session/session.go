// Package session keeps each browser session's base and current datasets.
// Sessions never share datasets; a slot is replaced only by a successful load.
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/Llorsque/monitor-dashboard-CO/internal/datanorm"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrInvalidSlot     = errors.New("invalid dataset slot")
)

// Slot names one of the two datasets a session holds.
type Slot string

const (
	SlotBase    Slot = "base"
	SlotCurrent Slot = "current"
)

// Slots lists every slot in display order.
var Slots = []Slot{SlotBase, SlotCurrent}

// ParseSlot validates a slot name taken from a request.
func ParseSlot(s string) (Slot, error) {
	switch Slot(s) {
	case SlotBase, SlotCurrent:
		return Slot(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidSlot, s)
}

// State is the dataset pair of one session. Either side may be nil.
type State struct {
	Base    *datanorm.Dataset `json:"base,omitempty"`
	Current *datanorm.Dataset `json:"current,omitempty"`
}

// Dataset returns the dataset held in slot.
func (s *State) Dataset(slot Slot) *datanorm.Dataset {
	if s == nil {
		return nil
	}
	if slot == SlotBase {
		return s.Base
	}
	return s.Current
}

func (s *State) set(slot Slot, ds *datanorm.Dataset) {
	if slot == SlotBase {
		s.Base = ds
		return
	}
	s.Current = ds
}

// Empty reports whether neither slot holds a dataset.
func (s *State) Empty() bool {
	return s == nil || (s.Base == nil && s.Current == nil)
}

// Store persists session state. Get returns ErrSessionNotFound when the
// session holds no datasets.
type Store interface {
	Get(ctx context.Context, id string) (*State, error)
	Put(ctx context.Context, id string, slot Slot, ds *datanorm.Dataset) error
	Delete(ctx context.Context, id string, slot Slot) error
	Clear(ctx context.Context, id string) error
}
