package domain

type RoomName string

// Room is a password-gated set of members. Members keep join order.
type Room struct {
	Name     RoomName
	Password string
	Members  []Member
}

func NewRoom(name RoomName, password string) *Room {
	return &Room{Name: name, Password: password}
}

// Authorize compares the supplied password verbatim.
func (r *Room) Authorize(password string) bool {
	return r.Password == password
}

func (r *Room) Empty() bool { return len(r.Members) == 0 }
