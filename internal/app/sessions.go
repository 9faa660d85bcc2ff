package app

import (
	"github.com/dkeye/Parlor/internal/core"
	"github.com/dkeye/Parlor/internal/domain"
	"github.com/rs/zerolog/log"
)

// session is the per-connection record. CurrentRoom is empty while the
// connection has not joined anything. Kicked is set once the policy has
// closed the connection; later frames are skipped until it disconnects.
type session struct {
	SID         domain.SessionID
	Conn        core.SignalConnection
	Client      string
	CurrentRoom domain.RoomName
	Kicked      bool
}

func (s *session) InRoom() bool { return s.CurrentRoom != "" }

// sessions is owned by the relay loop and needs no locking.
type sessions struct {
	bySID map[domain.SessionID]*session
	order []domain.SessionID
}

func newSessions() *sessions {
	return &sessions{bySID: make(map[domain.SessionID]*session)}
}

func (s *sessions) Bind(sid domain.SessionID, conn core.SignalConnection, client string) *session {
	sess := &session{SID: sid, Conn: conn, Client: client}
	if _, ok := s.bySID[sid]; !ok {
		s.order = append(s.order, sid)
	}
	s.bySID[sid] = sess
	log.Info().Str("module", "app.sessions").Str("sid", string(sid)).Str("client", client).Msg("bound session")
	return sess
}

func (s *sessions) Get(sid domain.SessionID) (*session, bool) {
	sess, ok := s.bySID[sid]
	return sess, ok
}

func (s *sessions) Unbind(sid domain.SessionID) {
	if _, ok := s.bySID[sid]; !ok {
		return
	}
	delete(s.bySID, sid)
	for i, id := range s.order {
		if id == sid {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	log.Info().Str("module", "app.sessions").Str("sid", string(sid)).Msg("unbind session")
}

// All returns sessions in connect order.
func (s *sessions) All() []*session {
	out := make([]*session, 0, len(s.order))
	for _, sid := range s.order {
		out = append(out, s.bySID[sid])
	}
	return out
}
