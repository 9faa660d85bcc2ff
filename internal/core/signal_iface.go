package core

//go:generate mockgen -destination=mocks/signal_mock.go -package=mocks github.com/dkeye/Parlor/internal/core SignalConnection

// Frame is one encoded outbound event.
type Frame []byte

// SignalConnection abstracts for a system messaging transport
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}
