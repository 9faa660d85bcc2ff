package app

import (
	"github.com/dkeye/Parlor/internal/core"
	"github.com/dkeye/Parlor/internal/domain"
	"github.com/rs/zerolog/log"
)

func (r *Relay) emitTo(sid domain.SessionID, event string, args ...any) {
	sess, ok := r.sessions.Get(sid)
	if !ok {
		return
	}
	f, ok := r.encode(event, args...)
	if !ok {
		return
	}
	r.send(sess, f)
}

// emitRoom sends to every member of room except the session `except`
// (pass "" to include everyone).
func (r *Relay) emitRoom(room domain.RoomName, except domain.SessionID, event string, args ...any) {
	f, ok := r.encode(event, args...)
	if !ok {
		return
	}
	sent := 0
	for _, m := range r.rooms.Members(room) {
		if m.SID == except {
			continue
		}
		sess, ok := r.sessions.Get(m.SID)
		if !ok {
			continue
		}
		if r.send(sess, f) {
			sent++
		}
	}
	log.Debug().Str("module", "app.relay").Str("room", string(room)).Str("event", event).Int("sent_to", sent).Msg("room emit")
}

func (r *Relay) emitAll(event string, args ...any) {
	f, ok := r.encode(event, args...)
	if !ok {
		return
	}
	for _, sess := range r.sessions.All() {
		r.send(sess, f)
	}
}

func (r *Relay) encode(event string, args ...any) (core.Frame, bool) {
	f, err := core.Encode(event, args...)
	if err != nil {
		log.Error().Err(err).Str("module", "app.relay").Msg("encode")
		return nil, false
	}
	return f, true
}

// send is fire-and-forget; a rejected frame is handed to the policy.
func (r *Relay) send(sess *session, f core.Frame) bool {
	if sess.Kicked {
		return false
	}
	err := sess.Conn.TrySend(f)
	if err == nil {
		return true
	}
	action := NoAction
	if r.policy != nil {
		action = r.policy.OnBackPressure(sess.SID, err)
	}
	switch action {
	case KickMember:
		log.Warn().Err(err).Str("module", "app.relay").Str("sid", string(sess.SID)).Msg("slow connection kicked")
		sess.Kicked = true
		sess.Conn.Close()
	case DropFrame, NoAction:
		log.Warn().Err(err).Str("module", "app.relay").Str("sid", string(sess.SID)).Msg("frame dropped")
	}
	return false
}
