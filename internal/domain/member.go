package domain

// SessionID identifies one transport connection for the life of the process.
type SessionID string

// Member represents one connection's participation in a room.
// No transport or lifecycle logic here.
type Member struct {
	Username string
	SID      SessionID
}

// NewMember avoids raw literals in adapters and keeps construction obvious.
func NewMember(username string, sid SessionID) Member {
	return Member{Username: username, SID: sid}
}
