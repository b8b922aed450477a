package ws

// Envelope wraps every server→client frame. Data carries the event payload
// and is omitted for events without one.
type Envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// Server→client event names.
const (
	EventConnectSuccess = "connect_success"
	EventConnectError   = "connect_error"
	EventNewMessage     = "new_message"
	EventMessageError   = "message_error"
)

// Client→server frame types.
const (
	frameJoin    = "join"
	frameMessage = "message"
)

// inboundFrame is the single client→server frame shape. Type selects which
// fields are meaningful: "join" reads Room, "message" reads Token, Message,
// ListingID, and the optional ClientMsgID.
type inboundFrame struct {
	Type        string `json:"type"`
	Room        string `json:"room,omitempty"`
	Token       string `json:"token,omitempty"`
	Message     string `json:"message,omitempty"`
	ListingID   int64  `json:"listing_id,omitempty"`
	ClientMsgID string `json:"client_msg_id,omitempty"`
}

type errorPayload struct {
	Error string `json:"error"`
}

type infoPayload struct {
	Message string `json:"message"`
}
