package domain

// Member represents a connection's participation in a room.
// No transport or lifecycle logic here.
type Member struct {
	ID          ConnID
	DisplayName *string
}

// NewMember avoids raw literals in callers; the display name starts unset.
func NewMember(id ConnID) *Member {
	return &Member{ID: id}
}

// MemberList is an insertion-ordered set of members keyed by connection id.
// The first entry is always the earliest admitted member still present.
type MemberList struct {
	order []ConnID
	byID  map[ConnID]*Member
}

func NewMemberList() *MemberList {
	return &MemberList{byID: make(map[ConnID]*Member)}
}

func (l *MemberList) Len() int { return len(l.order) }

func (l *MemberList) Has(id ConnID) bool {
	_, ok := l.byID[id]
	return ok
}

func (l *MemberList) Get(id ConnID) (*Member, bool) {
	m, ok := l.byID[id]
	return m, ok
}

// Add appends m unless a member with the same id is already present.
func (l *MemberList) Add(m *Member) bool {
	if _, ok := l.byID[m.ID]; ok {
		return false
	}
	l.byID[m.ID] = m
	l.order = append(l.order, m.ID)
	return true
}

func (l *MemberList) Remove(id ConnID) (*Member, bool) {
	m, ok := l.byID[id]
	if !ok {
		return nil, false
	}
	delete(l.byID, id)
	for i, cur := range l.order {
		if cur == id {
			l.order = append(l.order[:i], l.order[i+1:]...)
			break
		}
	}
	return m, true
}

// First returns the earliest admitted member.
func (l *MemberList) First() (*Member, bool) {
	if len(l.order) == 0 {
		return nil, false
	}
	return l.byID[l.order[0]], true
}

// Each visits members in insertion order.
func (l *MemberList) Each(fn func(m *Member)) {
	for _, id := range l.order {
		fn(l.byID[id])
	}
}

// IDs returns a copy of the member ids in insertion order.
func (l *MemberList) IDs() []ConnID {
	out := make([]ConnID, len(l.order))
	copy(out, l.order)
	return out
}
