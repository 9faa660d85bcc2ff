package core

import (
	"errors"
	"slices"

	"github.com/dkeye/Parlor/internal/domain"
	"github.com/rs/zerolog/log"
)

var (
	ErrRoomNotFound  = errors.New("no such room")
	ErrWrongPassword = errors.New("wrong password")
)

// Registry is the in-memory table of active rooms.
// It is not safe for concurrent use; the relay loop owns it.
type Registry struct {
	rooms map[domain.RoomName]*domain.Room
	order []domain.RoomName
}

func NewRegistry() *Registry {
	return &Registry{rooms: make(map[domain.RoomName]*domain.Room)}
}

func (r *Registry) Get(name domain.RoomName) (*domain.Room, bool) {
	room, ok := r.rooms[name]
	return room, ok
}

func (r *Registry) Len() int { return len(r.rooms) }

// Create adds m to the room called name, creating the room with password
// when it does not exist yet. An existing room still checks its password.
func (r *Registry) Create(name domain.RoomName, password string, m domain.Member) (bool, error) {
	room, ok := r.rooms[name]
	if !ok {
		room = domain.NewRoom(name, password)
		r.rooms[name] = room
		r.order = append(r.order, name)
		log.Info().Str("module", "core.registry").Str("room", string(name)).Msg("room created")
	}
	if ok && !room.Authorize(password) {
		return false, ErrWrongPassword
	}
	r.add(room, m)
	return !ok, nil
}

// Join adds m to an existing room.
func (r *Registry) Join(name domain.RoomName, password string, m domain.Member) error {
	room, ok := r.rooms[name]
	if !ok {
		return ErrRoomNotFound
	}
	if !room.Authorize(password) {
		return ErrWrongPassword
	}
	r.add(room, m)
	return nil
}

func (r *Registry) add(room *domain.Room, m domain.Member) {
	room.Members = append(room.Members, m)
	log.Info().
		Str("module", "core.registry").
		Str("room", string(room.Name)).
		Str("sid", string(m.SID)).
		Str("username", m.Username).
		Int("members", len(room.Members)).
		Msg("member added")
}

// Username resolves the display name of sid inside the room, falling back
// to domain.UnknownUser.
func (r *Registry) Username(name domain.RoomName, sid domain.SessionID) string {
	room, ok := r.rooms[name]
	if !ok {
		return domain.UnknownUser
	}
	for _, m := range room.Members {
		if m.SID == sid {
			return m.Username
		}
	}
	return domain.UnknownUser
}

// Members returns a copy of the room's member list in join order.
func (r *Registry) Members(name domain.RoomName) []domain.Member {
	room, ok := r.rooms[name]
	if !ok {
		return nil
	}
	return slices.Clone(room.Members)
}

// Departure describes what removing a session did to one room.
type Departure struct {
	Room    domain.RoomName
	Deleted bool
}

// RemoveSession purges sid from every room, not only its current one, and
// deletes rooms left empty. Only rooms whose membership changed are reported.
func (r *Registry) RemoveSession(sid domain.SessionID) []Departure {
	var out []Departure
	for _, name := range r.Names() {
		room := r.rooms[name]
		before := len(room.Members)
		room.Members = slices.DeleteFunc(room.Members, func(m domain.Member) bool {
			return m.SID == sid
		})
		if len(room.Members) == before {
			continue
		}
		d := Departure{Room: name}
		if room.Empty() {
			delete(r.rooms, name)
			r.order = slices.DeleteFunc(r.order, func(n domain.RoomName) bool { return n == name })
			d.Deleted = true
		}
		log.Info().
			Str("module", "core.registry").
			Str("room", string(name)).
			Str("sid", string(sid)).
			Bool("deleted", d.Deleted).
			Msg("member removed")
		out = append(out, d)
	}
	return out
}

// Names returns the room names in creation order.
func (r *Registry) Names() []domain.RoomName {
	return slices.Clone(r.order)
}

func (r *Registry) List() []domain.RoomInfo {
	out := make([]domain.RoomInfo, 0, len(r.rooms))
	for _, name := range r.Names() {
		out = append(out, domain.RoomInfo{Name: name, MemberCount: len(r.rooms[name].Members)})
	}
	return out
}
