package app

import (
	"github.com/dkeye/Parlor/internal/core"
	"github.com/dkeye/Parlor/internal/domain"
)

type EventKind int

const (
	EventConnect EventKind = iota
	EventCreateRoom
	EventJoinRoom
	EventChat
	EventFileUpload
	EventTyping
	EventStopTyping
	EventDisconnect

	eventQuery
)

func (k EventKind) String() string {
	switch k {
	case EventConnect:
		return "connect"
	case EventCreateRoom:
		return core.EventCreateRoom
	case EventJoinRoom:
		return core.EventJoinRoom
	case EventChat:
		return core.EventChatMessage
	case EventFileUpload:
		return core.EventFileUpload
	case EventTyping:
		return core.EventTyping
	case EventStopTyping:
		return core.EventStopTyping
	case EventDisconnect:
		return "disconnect"
	default:
		return "unknown"
	}
}

// Event is one inbound request from a connection. Only the fields relevant
// to Kind are set.
type Event struct {
	Kind EventKind
	SID  domain.SessionID

	// connect
	Conn   core.SignalConnection
	Client string

	// create room / join room request
	Room     domain.RoomName
	Password string
	Username string

	// chat message
	Text string

	// file upload
	File *domain.FileUpload

	query func()
}

func Connect(sid domain.SessionID, conn core.SignalConnection, client string) Event {
	return Event{Kind: EventConnect, SID: sid, Conn: conn, Client: client}
}

func CreateRoom(sid domain.SessionID, room, password, username string) Event {
	return Event{Kind: EventCreateRoom, SID: sid, Room: domain.RoomName(room), Password: password, Username: username}
}

func JoinRoom(sid domain.SessionID, room, password, username string) Event {
	return Event{Kind: EventJoinRoom, SID: sid, Room: domain.RoomName(room), Password: password, Username: username}
}

func Chat(sid domain.SessionID, text string) Event {
	return Event{Kind: EventChat, SID: sid, Text: text}
}

func FileUpload(sid domain.SessionID, f *domain.FileUpload) Event {
	return Event{Kind: EventFileUpload, SID: sid, File: f}
}

func Typing(sid domain.SessionID, username string) Event {
	return Event{Kind: EventTyping, SID: sid, Username: username}
}

func StopTyping(sid domain.SessionID, username string) Event {
	return Event{Kind: EventStopTyping, SID: sid, Username: username}
}

func Disconnect(sid domain.SessionID) Event {
	return Event{Kind: EventDisconnect, SID: sid}
}
