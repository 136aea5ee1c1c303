package session

import (
	"errors"
	"sync"
)

// Kind names a class of optimistic operation. At most one of each kind is in flight.
type Kind string

const (
	KindVote       Kind = "vote"
	KindReveal     Kind = "reveal"
	KindNewRound   Kind = "new_round"
	KindConfidence Kind = "confidence"
	KindProfile    Kind = "profile"
)

// ErrInFlight is returned when an operation of the same kind has not resolved yet.
var ErrInFlight = errors.New("operation already in flight")

// Token is the handle of one tentative local change.
type Token struct {
	kind Kind
	id   uint64
	undo func()
}

// Pending tracks tentative local changes until their write resolves.
type Pending struct {
	mu       sync.Mutex
	next     uint64
	inFlight map[Kind]uint64
}

func NewPending() *Pending {
	return &Pending{inFlight: make(map[Kind]uint64)}
}

// Apply runs tentative, which makes the local change and returns how to undo it.
func (p *Pending) Apply(kind Kind, tentative func() (undo func())) (*Token, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, busy := p.inFlight[kind]; busy {
		return nil, ErrInFlight
	}
	p.next++
	t := &Token{kind: kind, id: p.next}
	p.inFlight[kind] = t.id
	if tentative != nil {
		t.undo = tentative()
	}
	return t, nil
}

// Confirm keeps the tentative change and frees the kind.
func (p *Pending) Confirm(t *Token) {
	p.release(t)
}

// Rollback undoes the tentative change and frees the kind. Resolved tokens are ignored.
func (p *Pending) Rollback(t *Token) {
	if p.release(t) && t.undo != nil {
		t.undo()
	}
}

// Resolve confirms t when err is nil and rolls it back otherwise.
func (p *Pending) Resolve(t *Token, err error) {
	if err != nil {
		p.Rollback(t)
		return
	}
	p.Confirm(t)
}

// InFlight reports whether kind has an unresolved operation.
func (p *Pending) InFlight(kind Kind) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, busy := p.inFlight[kind]
	return busy
}

func (p *Pending) release(t *Token) bool {
	if t == nil {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if id, ok := p.inFlight[t.kind]; !ok || id != t.id {
		return false
	}
	delete(p.inFlight, t.kind)
	return true
}
