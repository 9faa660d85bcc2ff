package app

import (
	"errors"

	"github.com/dkeye/Parlor/internal/core"
	"github.com/dkeye/Parlor/internal/domain"
	"github.com/rs/zerolog/log"
)

type createRequest struct {
	Room     string `validate:"required"`
	Password string `validate:"required"`
	Username string `validate:"required"`
}

type joinRequest struct {
	Room     string `validate:"required"`
	Password string
	Username string `validate:"required"`
}

func (r *Relay) onConnect(ev Event) {
	if ev.Conn == nil {
		return
	}
	r.sessions.Bind(ev.SID, ev.Conn, ev.Client)
	r.emitTo(ev.SID, core.EventRoomList, r.rooms.Names())
}

func (r *Relay) onCreateRoom(ev Event) {
	sess, ok := r.admit(ev, createRequest{Room: string(ev.Room), Password: ev.Password, Username: ev.Username})
	if !ok {
		return
	}
	created, err := r.rooms.Create(ev.Room, ev.Password, domain.NewMember(ev.Username, ev.SID))
	if err != nil {
		r.reject(ev, err)
		return
	}
	log.Info().Str("module", "app.relay").Str("sid", string(ev.SID)).Str("room", string(ev.Room)).Bool("created", created).Msg("create room")
	r.enter(sess, ev)
}

func (r *Relay) onJoinRoom(ev Event) {
	sess, ok := r.admit(ev, joinRequest{Room: string(ev.Room), Password: ev.Password, Username: ev.Username})
	if !ok {
		return
	}
	if err := r.rooms.Join(ev.Room, ev.Password, domain.NewMember(ev.Username, ev.SID)); err != nil {
		r.reject(ev, err)
		return
	}
	log.Info().Str("module", "app.relay").Str("sid", string(ev.SID)).Str("room", string(ev.Room)).Msg("join room")
	r.enter(sess, ev)
}

// admit validates a create/join request. Failures are silent no-ops.
func (r *Relay) admit(ev Event, req any) (*session, bool) {
	sess, ok := r.sessions.Get(ev.SID)
	if !ok {
		return nil, false
	}
	if err := r.validate.Struct(req); err != nil {
		log.Debug().Err(err).Str("module", "app.relay").Str("sid", string(ev.SID)).Str("event", ev.Kind.String()).Msg("invalid request ignored")
		return nil, false
	}
	return sess, true
}

func (r *Relay) reject(ev Event, err error) {
	log.Info().Err(err).Str("module", "app.relay").Str("sid", string(ev.SID)).Str("room", string(ev.Room)).Str("event", ev.Kind.String()).Msg("request rejected")
	switch {
	case errors.Is(err, core.ErrRoomNotFound):
		r.emitTo(ev.SID, core.EventNoSuchRoom)
	case errors.Is(err, core.ErrWrongPassword):
		r.emitTo(ev.SID, core.EventWrongPassword)
	}
}

// enter is the shared success path of create and join. A connection that
// was already in a room keeps that membership; only CurrentRoom moves.
func (r *Relay) enter(sess *session, ev Event) {
	sess.CurrentRoom = ev.Room
	r.emitTo(ev.SID, core.EventRoomJoined, ev.Room)
	r.emitRoom(ev.Room, ev.SID, core.EventChatMessage, domain.SystemMessage(domain.JoinedText(ev.Username)))
	r.emitAll(core.EventRoomList, r.rooms.Names())
}

// currentRoom resolves the room of the sending connection.
func (r *Relay) currentRoom(sid domain.SessionID) (domain.RoomName, bool) {
	sess, ok := r.sessions.Get(sid)
	if !ok || !sess.InRoom() {
		return "", false
	}
	return sess.CurrentRoom, true
}

func (r *Relay) onChat(ev Event) {
	room, ok := r.currentRoom(ev.SID)
	if !ok {
		return
	}
	msg := domain.ChatMessage{User: r.rooms.Username(room, ev.SID), Text: ev.Text}
	r.emitRoom(room, "", core.EventChatMessage, msg)
}

func (r *Relay) onFileUpload(ev Event) {
	room, ok := r.currentRoom(ev.SID)
	if !ok || ev.File == nil {
		return
	}
	msg := domain.FileMessage{User: r.rooms.Username(room, ev.SID), FileUpload: normalizeFile(*ev.File)}
	log.Debug().Str("module", "app.relay").Str("sid", string(ev.SID)).Str("room", string(room)).Str("file", msg.FileName).Str("type", msg.FileType).Msg("file upload")
	r.emitRoom(room, "", core.EventFileMessage, msg)
}

func (r *Relay) onTyping(ev Event) {
	room, ok := r.currentRoom(ev.SID)
	if !ok {
		return
	}
	name := core.EventTyping
	if ev.Kind == EventStopTyping {
		name = core.EventStopTyping
	}
	r.emitRoom(room, ev.SID, name, ev.Username)
}

func (r *Relay) onDisconnect(ev Event) {
	r.sessions.Unbind(ev.SID)
	deps := r.rooms.RemoveSession(ev.SID)
	for _, d := range deps {
		if d.Deleted {
			log.Info().Str("module", "app.relay").Str("room", string(d.Room)).Msg("room deleted")
			r.emitAll(core.EventRoomList, r.rooms.Names())
			continue
		}
		r.emitRoom(d.Room, "", core.EventChatMessage, domain.SystemMessage(domain.LeftText))
	}
}
