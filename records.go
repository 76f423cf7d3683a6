package main

import "time"

type House string

const (
	HouseGryffindor House = "Gryffindor"
	HouseSlytherin  House = "Slytherin"
	HouseRavenclaw  House = "Ravenclaw"
	HouseHufflepuff House = "Hufflepuff"
)

var houses = []House{HouseGryffindor, HouseSlytherin, HouseRavenclaw, HouseHufflepuff}

// PlayerRecord is the published shape of one participant, stored under
// rooms/{roomId}/users/{playerId}. Timestamps are Unix milliseconds to keep
// the wire format comparable across clients.
type PlayerRecord struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	House      House   `json:"house"`
	Name       string  `json:"name"`
	RoomID     string  `json:"roomId"`
	IsIdle     bool    `json:"isIdle"`
	Banned     bool    `json:"banned"`
	IsRunning  bool    `json:"isRunning,omitempty"`
	Direction  float64 `json:"direction,omitempty"`
	LastMoveAt int64   `json:"lastMoveAt"`
	UpdatedAt  int64   `json:"updatedAt"`

	// Transient effect flags written by peers and applied by the record's
	// own client.
	Invisible      bool    `json:"invisible,omitempty"`
	PolyjuiceAs    string  `json:"polyjuiceAs,omitempty"`
	PolyjuiceHouse House   `json:"polyjuiceHouse,omitempty"`
	Blinded        bool    `json:"blinded,omitempty"`
	BlindedUntil   int64   `json:"blindedUntil,omitempty"`
	BlindedBy      string  `json:"blindedBy,omitempty"`
	KnockedBack    bool    `json:"knockedBack,omitempty"`
	KnockbackX     float64 `json:"knockbackX,omitempty"`
	KnockbackY     float64 `json:"knockbackY,omitempty"`
	KnockedBackBy  string  `json:"knockedBackBy,omitempty"`

	BannedAt     int64 `json:"bannedAt,omitempty"`
	ReportsCount int   `json:"reportsCount,omitempty"`
}

func (r PlayerRecord) position() vec2 {
	return vec2{X: r.X, Y: r.Y}
}

// activeAt reports whether the record should be treated as present. A stale
// record is indistinguishable from a deleted one for every reader.
func (r PlayerRecord) activeAt(now time.Time) bool {
	if r.Banned {
		return false
	}
	age := now.UnixMilli() - r.UpdatedAt
	return age <= activeWindow.Milliseconds()
}

// RoomRecord mirrors the per-room subtree the shared store holds.
type RoomRecord struct {
	Users    map[string]PlayerRecord       `json:"users,omitempty"`
	Blocks   map[string]map[string]bool    `json:"blocks,omitempty"`
	Reports  map[string]map[string]bool    `json:"reports,omitempty"`
	Messages map[string]ConversationRecord `json:"messages,omitempty"`
}

// ConversationRecord is keyed by the sorted pair of participant ids.
type ConversationRecord struct {
	Participants map[string]bool     `json:"participants,omitempty"`
	Status       ConversationStatus  `json:"status,omitempty"`
	Messages     map[string]Message  `json:"messages,omitempty"`
}

type ConversationStatus struct {
	Active bool            `json:"active"`
	Users  map[string]bool `json:"users,omitempty"`
}

type Message struct {
	Text        string          `json:"text"`
	Sender      string          `json:"sender"`
	SenderName  string          `json:"senderName"`
	SenderHouse House           `json:"senderHouse"`
	CreatedAt   int64           `json:"createdAt"`
	DeliveredTo map[string]bool `json:"deliveredTo,omitempty"`
	SeenBy      map[string]bool `json:"seenBy,omitempty"`
}

// ChosenOneRecord rotates the timed special status among active players.
type ChosenOneRecord struct {
	UID       string `json:"uid"`
	Name      string `json:"name"`
	ExpiresAt int64  `json:"expiresAt"`
}

type GalleonRecord struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Collected bool    `json:"collected"`
}

// LeaderboardEntry is one row of the per-room galleon tally, keyed by
// player uid.
type LeaderboardEntry struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

type OwlPostRecord struct {
	Message   string `json:"message"`
	Sender    string `json:"sender"`
	House     House  `json:"house"`
	Timestamp int64  `json:"timestamp"`
}

type FeedbackRecord struct {
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
	UserName  string `json:"userName"`
	House     House  `json:"house"`
	RoomID    string `json:"roomId"`
	Timestamp int64  `json:"timestamp"`
}
