package app

import "github.com/dkeye/Parlor/internal/domain"

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	DropFrame
	KickMember
)

// Policy decides what happens to a connection whose outbound queue
// rejected a frame.
type Policy interface {
	OnBackPressure(sid domain.SessionID, err error) BackpressureAction
}

// SimplePolicy kicks slow connections; the transport then reports a
// regular disconnect.
type SimplePolicy struct{}

func (SimplePolicy) OnBackPressure(domain.SessionID, error) BackpressureAction {
	return KickMember
}

// LenientPolicy drops the frame and keeps the connection.
type LenientPolicy struct{}

func (LenientPolicy) OnBackPressure(domain.SessionID, error) BackpressureAction {
	return DropFrame
}
