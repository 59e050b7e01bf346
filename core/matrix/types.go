package matrix

import "encoding/json"

// Event types and message types the bot reads or writes.
const (
	EventMessage    = "m.room.message"
	EventReaction   = "m.reaction"
	EventRoomMember = "m.room.member"

	MsgText   = "m.text"
	MsgNotice = "m.notice"
	MsgImage  = "m.image"

	EventSticker = "m.sticker"

	FormatHTML = "org.matrix.custom.html"

	RelAnnotation = "m.annotation"
	RelReplace    = "m.replace"
)

// RawEvent is a room event as it comes off the wire.
type RawEvent struct {
	EventID        string         `json:"event_id"`
	Type           string         `json:"type"`
	Sender         string         `json:"sender"`
	OriginServerTS int64          `json:"origin_server_ts"`
	RoomID         string         `json:"room_id,omitempty"`
	Content        map[string]any `json:"content"`
	StateKey       *string        `json:"state_key,omitempty"`
	Redacts        string         `json:"redacts,omitempty"`
}

// Member is a joined room member.
type Member struct {
	UserID      string
	DisplayName string
}

type Profile struct {
	DisplayName string `json:"displayname,omitempty"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}

// MessageContent is the content of an m.room.message we send.
type MessageContent struct {
	MsgType       string          `json:"msgtype,omitempty"`
	Body          string          `json:"body"`
	Format        string          `json:"format,omitempty"`
	FormattedBody string          `json:"formatted_body,omitempty"`
	URL           string          `json:"url,omitempty"`
	Info          *MediaInfo      `json:"info,omitempty"`
	Mentions      *Mentions       `json:"m.mentions,omitempty"`
	RelatesTo     *RelatesTo      `json:"m.relates_to,omitempty"`
	NewContent    *MessageContent `json:"m.new_content,omitempty"`
}

type MediaInfo struct {
	MimeType string `json:"mimetype,omitempty"`
	Width    int    `json:"w,omitempty"`
	Height   int    `json:"h,omitempty"`
	Size     int64  `json:"size,omitempty"`
}

type Mentions struct {
	UserIDs []string `json:"user_ids,omitempty"`
}

type RelatesTo struct {
	RelType   string     `json:"rel_type,omitempty"`
	EventID   string     `json:"event_id,omitempty"`
	Key       string     `json:"key,omitempty"`
	InReplyTo *InReplyTo `json:"m.in_reply_to,omitempty"`
}

type InReplyTo struct {
	EventID string `json:"event_id"`
}

// ReactionContent is the content of an m.reaction.
type ReactionContent struct {
	RelatesTo RelatesTo `json:"m.relates_to"`
}

// MemberContent is the content of an m.room.member state event.
type MemberContent struct {
	Membership  string `json:"membership"`
	DisplayName string `json:"displayname,omitempty"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}

type SyncResponse struct {
	NextBatch string       `json:"next_batch"`
	Rooms     RoomsSection `json:"rooms"`
}

type RoomsSection struct {
	Join   map[string]JoinedRoom  `json:"join"`
	Invite map[string]InvitedRoom `json:"invite"`
}

type JoinedRoom struct {
	Timeline TimelineSection `json:"timeline"`
}

type InvitedRoom struct{}

type TimelineSection struct {
	Events  []RawEvent `json:"events"`
	Limited bool       `json:"limited"`
}

// ToMap converts typed content into the generic map form RawEvent carries.
func ToMap(content any) (map[string]any, error) {
	if m, ok := content.(map[string]any); ok {
		return m, nil
	}
	raw, err := json.Marshal(content)
	if err != nil {
		return nil, err
	}
	m := map[string]any{}
	return m, json.Unmarshal(raw, &m)
}
