package app

import (
	"fmt"

	"github.com/dkeye/Rendezvous/internal/domain"
)

type BackpressureAction int

const (
	// DropFrame discards the event and keeps the connection.
	DropFrame BackpressureAction = iota
	// KickConnection closes a connection whose send queue is full.
	KickConnection
)

func (a BackpressureAction) String() string {
	switch a {
	case DropFrame:
		return "drop"
	case KickConnection:
		return "kick"
	default:
		return fmt.Sprintf("BackpressureAction(%d)", int(a))
	}
}

// ParseBackpressureAction maps a config value onto an action.
func ParseBackpressureAction(s string) (BackpressureAction, error) {
	switch s {
	case "drop":
		return DropFrame, nil
	case "kick", "":
		return KickConnection, nil
	default:
		return 0, fmt.Errorf("unknown backpressure policy %q", s)
	}
}

// Policy decides what happens to a connection that cannot keep up.
type Policy interface {
	OnBackPressure(conn domain.ConnID) BackpressureAction
}

type SimplePolicy struct {
	Action BackpressureAction
}

func (p SimplePolicy) OnBackPressure(domain.ConnID) BackpressureAction {
	return p.Action
}
