package app

import (
	"fmt"
	"sync"
	"time"

	"github.com/dkeye/Rendezvous/internal/core"
	"github.com/dkeye/Rendezvous/internal/domain"
	"github.com/rs/zerolog/log"
)

const (
	DefaultCapacity = 20
	DefaultIDLength = 10
)

type Options struct {
	// DefaultCapacity applies when a create request names no positive capacity.
	DefaultCapacity int
	// MaxCapacity clamps requested capacities. Zero means no clamp.
	MaxCapacity int
	// HostReassignment migrates the host role to the earliest-joined
	// survivor when the host leaves.
	HostReassignment bool
	IDGenerator      IDGenerator
	Now              func() time.Time
}

// CreateResult describes a freshly created room.
type CreateResult struct {
	RoomID   domain.RoomID
	Capacity int
}

// JoinResult is what an admitted connection needs to start negotiating.
type JoinResult struct {
	RoomID  domain.RoomID
	HostID  domain.ConnID
	IsHost  bool
	PeerIDs []domain.ConnID
	Roster  []domain.RosterEntry
}

// RoomInfo is a read-only view for APIs.
type RoomInfo struct {
	ID        domain.RoomID `json:"roomId"`
	Members   int           `json:"members"`
	Capacity  int           `json:"capacity"`
	CreatedAt time.Time     `json:"createdAt"`
}

// Coordinator owns the room store and performs every membership and
// routing transition. A single mutex serialises transitions together with
// the notifications they produce, so members of one room observe events in
// commit order and concurrent admissions at the last slot resolve
// first-committed-wins.
type Coordinator struct {
	mu       sync.Mutex
	store    *RoomStore
	registry *Registry
	notify   *Notifier
	emit     core.Emitter
	opts     Options
}

func NewCoordinator(emit core.Emitter, opts Options) *Coordinator {
	if opts.DefaultCapacity <= 0 {
		opts.DefaultCapacity = DefaultCapacity
	}
	if opts.IDGenerator == nil {
		opts.IDGenerator = RandomRoomID(DefaultIDLength)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Coordinator{
		store:    NewRoomStore(opts.IDGenerator),
		registry: NewRegistry(),
		notify:   NewNotifier(emit),
		emit:     emit,
		opts:     opts,
	}
}

func (c *Coordinator) capacity(requested int) int {
	if requested <= 0 {
		requested = c.opts.DefaultCapacity
	}
	if c.opts.MaxCapacity > 0 && requested > c.opts.MaxCapacity {
		requested = c.opts.MaxCapacity
	}
	return requested
}

// CreateRoom allocates a room with the requester as sole member and host.
// A requester already in another room leaves it first.
func (c *Coordinator) CreateRoom(requester domain.ConnID, capacity int) CreateResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.leaveCurrentLocked(requester)

	room := c.store.Create(c.capacity(capacity), c.opts.Now())
	room.Members.Add(domain.NewMember(requester))
	room.HostID = requester
	c.registry.Bind(requester, room.ID)

	log.Info().Str("module", "app.coordinator").Str("conn", string(requester)).Str("room", string(room.ID)).
		Int("capacity", room.Capacity).Msg("room created")
	return CreateResult{RoomID: room.ID, Capacity: room.Capacity}
}

// JoinRoom admits requester into room id. Re-joining a room the requester is
// already in succeeds without side effects.
func (c *Coordinator) JoinRoom(requester domain.ConnID, id domain.RoomID) (JoinResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	room, ok := c.store.Get(id)
	if !ok {
		return JoinResult{}, ErrRoomNotFound
	}
	if room.Members.Has(requester) {
		return joinResult(room, requester), nil
	}
	if room.Full() {
		return JoinResult{}, fmt.Errorf("%w (%d users max)", ErrRoomFull, room.Capacity)
	}

	c.leaveCurrentLocked(requester)

	room.Members.Add(domain.NewMember(requester))
	c.registry.Bind(requester, room.ID)

	log.Info().Str("module", "app.coordinator").Str("conn", string(requester)).Str("room", string(room.ID)).
		Int("members", room.Members.Len()).Msg("member joined")

	c.notify.RosterUpdated(room)
	c.notify.PeerJoined(room, requester)
	return joinResult(room, requester), nil
}

func joinResult(room *domain.Room, requester domain.ConnID) JoinResult {
	return JoinResult{
		RoomID:  room.ID,
		HostID:  room.HostID,
		IsHost:  room.IsHost(requester),
		PeerIDs: room.PeerIDs(requester),
		Roster:  room.Roster(),
	}
}

// Rename sets the requester's own display name; nil clears it.
// Missing room or membership is a no-op reported as an error for diagnostics.
func (c *Coordinator) Rename(requester domain.ConnID, id domain.RoomID, name *string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	room, ok := c.store.Get(id)
	if !ok {
		return ErrRoomNotFound
	}
	m, ok := room.Members.Get(requester)
	if !ok {
		return ErrNotAMember
	}
	m.DisplayName = name

	log.Debug().Str("module", "app.coordinator").Str("conn", string(requester)).Str("room", string(id)).Msg("member renamed")
	c.notify.RosterUpdated(room)
	return nil
}

// Leave removes requester from room id.
func (c *Coordinator) Leave(requester domain.ConnID, id domain.RoomID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	room, ok := c.store.Get(id)
	if !ok {
		return ErrRoomNotFound
	}
	if !room.Members.Has(requester) {
		return ErrNotAMember
	}
	c.removeLocked(room, requester)
	return nil
}

// Disconnect cancels every membership of requester. It is idempotent and never fails.
func (c *Coordinator) Disconnect(requester domain.ConnID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.leaveCurrentLocked(requester)
}

func (c *Coordinator) leaveCurrentLocked(requester domain.ConnID) {
	id, ok := c.registry.RoomOf(requester)
	if !ok {
		return
	}
	room, ok := c.store.Get(id)
	if !ok || !room.Members.Has(requester) {
		c.registry.Unbind(requester)
		return
	}
	c.removeLocked(room, requester)
}

// removeLocked drops a member, deletes the room if it became empty and
// otherwise migrates the host and notifies the survivors.
func (c *Coordinator) removeLocked(room *domain.Room, requester domain.ConnID) {
	room.Members.Remove(requester)
	c.registry.Unbind(requester)
	wasHost := room.HostID == requester

	if room.Empty() {
		c.store.Delete(room.ID)
		log.Info().Str("module", "app.coordinator").Str("room", string(room.ID)).Msg("room deleted (empty)")
		return
	}

	log.Info().Str("module", "app.coordinator").Str("conn", string(requester)).Str("room", string(room.ID)).
		Int("remaining", room.Members.Len()).Msg("member left")

	if wasHost {
		if c.opts.HostReassignment {
			next, _ := room.Members.First()
			room.HostID = next.ID
			log.Info().Str("module", "app.coordinator").Str("room", string(room.ID)).Str("host", string(next.ID)).Msg("host changed")
			c.notify.HostChanged(room)
		} else {
			room.HostID = ""
		}
	}
	c.notify.RosterUpdated(room)
	c.notify.PeerLeft(room, requester)
}

// RoomOf reports the room a connection currently belongs to.
func (c *Coordinator) RoomOf(conn domain.ConnID) (domain.RoomID, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.registry.RoomOf(conn)
}

func (c *Coordinator) RoomInfo(id domain.RoomID) (RoomInfo, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	room, ok := c.store.Get(id)
	if !ok {
		return RoomInfo{}, false
	}
	return RoomInfo{ID: room.ID, Members: room.Members.Len(), Capacity: room.Capacity, CreatedAt: room.CreatedAt}, true
}

func (c *Coordinator) RoomCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Len()
}

// SweepEmpty deletes rooms that have no members and are older than retention.
func (c *Coordinator) SweepEmpty(now time.Time, retention time.Duration) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	c.store.ForEach(func(room *domain.Room) bool {
		if room.Empty() && now.Sub(room.CreatedAt) > retention {
			c.store.Delete(room.ID)
			removed++
			log.Info().Str("module", "app.reaper").Str("room", string(room.ID)).Msg("cleaned up stale room")
		}
		return true
	})
	return removed
}

func (c *Coordinator) now() time.Time {
	return c.opts.Now()
}
