package models

import (
	"fmt"
	"strings"
	"time"
)

const (
	// MaxLegs is the longest connection chain a path search will assemble.
	MaxLegs = 3

	// MinConnection is the shortest allowed gap between two legs of one path.
	MinConnection = 60 * time.Minute
)

type Mode string

const (
	ModeUnknown Mode = ""
	ModeTrain   Mode = "TRAIN"
	ModePlane   Mode = "PLANE"
)

var modeAliases = map[string]Mode{
	"TRAIN":  ModeTrain,
	"RAIL":   ModeTrain,
	"PLANE":  ModePlane,
	"AIR":    ModePlane,
	"FLIGHT": ModePlane,
}

// ParseMode maps a free-form mode name onto the closed Mode set.
// An empty string yields ModeUnknown.
func ParseMode(s string) (Mode, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return ModeUnknown, nil
	}
	if m, ok := modeAliases[s]; ok {
		return m, nil
	}
	return ModeUnknown, fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

func (m Mode) Known() bool {
	return m != ModeUnknown
}

type TransportLeg struct {
	Origin      string    `json:"origin"`
	Destination string    `json:"destination"`
	Departure   time.Time `json:"departure"`
	Arrival     time.Time `json:"arrival"`
	Mode        Mode      `json:"mode,omitempty"`
	Price       float64   `json:"price"`
}

// Duration reports the travel time of the leg. The second value is false
// when either timestamp is missing.
func (l TransportLeg) Duration() (time.Duration, bool) {
	if l.Departure.IsZero() || l.Arrival.IsZero() {
		return 0, false
	}
	return l.Arrival.Sub(l.Departure), true
}

func (l TransportLeg) Validate() error {
	if l.Origin == "" || l.Destination == "" {
		return fmt.Errorf("%w: leg without origin or destination", ErrInvalidLeg)
	}
	if l.Price < 0 {
		return fmt.Errorf("%w: negative price %.2f", ErrInvalidLeg, l.Price)
	}
	if !l.Arrival.After(l.Departure) {
		return fmt.Errorf("%w: %s -> %s arrives before it departs", ErrInvalidLeg, l.Origin, l.Destination)
	}
	return nil
}

// SameCity compares city names the way catalogs do: case-insensitively.
func SameCity(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

type TransportPath struct {
	Legs []TransportLeg `json:"legs"`
}

func NewTransportPath(legs ...TransportLeg) *TransportPath {
	return &TransportPath{Legs: append([]TransportLeg(nil), legs...)}
}

// Validate checks the path invariants: non-empty, at most MaxLegs legs,
// city continuity, a single mode, and MinConnection between legs.
func (p *TransportPath) Validate() error {
	if p == nil || len(p.Legs) == 0 {
		return ErrEmptyPath
	}
	if len(p.Legs) > MaxLegs {
		return fmt.Errorf("%w: %d legs", ErrTooManyLegs, len(p.Legs))
	}
	if p.HasModeInfo() {
		mode := p.Legs[0].Mode
		for _, l := range p.Legs[1:] {
			if l.Mode != mode {
				return fmt.Errorf("%w: %s and %s", ErrMixedModes, mode, l.Mode)
			}
		}
	}
	for i := 0; i < len(p.Legs)-1; i++ {
		cur, next := p.Legs[i], p.Legs[i+1]
		if !SameCity(cur.Destination, next.Origin) {
			return fmt.Errorf("%w: %s then %s", ErrBrokenContinuity, cur.Destination, next.Origin)
		}
		if cur.Arrival.IsZero() || next.Departure.IsZero() {
			return fmt.Errorf("%w: missing timestamp at %s", ErrShortConnection, cur.Destination)
		}
		if gap := next.Departure.Sub(cur.Arrival); gap < MinConnection {
			return fmt.Errorf("%w: %s at %s", ErrShortConnection, gap, cur.Destination)
		}
	}
	return nil
}

func (p *TransportPath) HasModeInfo() bool {
	if p == nil {
		return false
	}
	for _, l := range p.Legs {
		if l.Mode.Known() {
			return true
		}
	}
	return false
}

func (p *TransportPath) Mode() Mode {
	if p == nil || len(p.Legs) == 0 {
		return ModeUnknown
	}
	return p.Legs[0].Mode
}

func (p *TransportPath) TotalPrice() float64 {
	if p == nil {
		return 0
	}
	total := 0.0
	for _, l := range p.Legs {
		total += l.Price
	}
	return total
}

func (p *TransportPath) IsDirect() bool {
	return p != nil && len(p.Legs) == 1
}

// FirstDeparture is the earliest known departure of the path.
func (p *TransportPath) FirstDeparture() (time.Time, bool) {
	var first time.Time
	if p == nil {
		return first, false
	}
	for _, l := range p.Legs {
		if l.Departure.IsZero() {
			continue
		}
		if first.IsZero() || l.Departure.Before(first) {
			first = l.Departure
		}
	}
	return first, !first.IsZero()
}

// LastArrival is the latest known arrival of the path.
func (p *TransportPath) LastArrival() (time.Time, bool) {
	var last time.Time
	if p == nil {
		return last, false
	}
	for _, l := range p.Legs {
		if l.Arrival.After(last) {
			last = l.Arrival
		}
	}
	return last, !last.IsZero()
}

// Duration spans first departure to last arrival.
func (p *TransportPath) Duration() time.Duration {
	dep, okDep := p.FirstDeparture()
	arr, okArr := p.LastArrival()
	if !okDep || !okArr {
		return 0
	}
	return arr.Sub(dep)
}

type LookupKind int

const (
	LookupNone LookupKind = iota
	LookupDirect
	LookupPath
)

func (k LookupKind) String() string {
	switch k {
	case LookupDirect:
		return "direct"
	case LookupPath:
		return "path"
	default:
		return "none"
	}
}

// TransportLookup is what a transport catalog answers: either independent
// single-leg alternatives or one already assembled multi-leg path.
type TransportLookup struct {
	Kind       LookupKind
	Candidates []TransportLeg
	Path       *TransportPath
}

func DirectCandidates(legs []TransportLeg) TransportLookup {
	if len(legs) == 0 {
		return NoTransport()
	}
	return TransportLookup{Kind: LookupDirect, Candidates: legs}
}

func AssembledPath(p *TransportPath) TransportLookup {
	if p == nil || len(p.Legs) == 0 {
		return NoTransport()
	}
	return TransportLookup{Kind: LookupPath, Path: p}
}

func NoTransport() TransportLookup {
	return TransportLookup{Kind: LookupNone}
}

func (l TransportLookup) Empty() bool {
	return l.Kind == LookupNone
}
