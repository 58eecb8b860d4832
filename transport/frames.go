package transport

// Inbound frame types.
const (
	FrameInput    = "input"
	FrameImage    = "image"
	FrameTransfer = "transfer"
	FrameCancel   = "cancel"
)

// Outbound frame types.
const (
	FrameReady       = "ready"
	FrameItem        = "item"
	FrameTransferred = "transferred"
	FrameError       = "error"
)

// Inbound is a client frame. Data is base64 in JSON.
type Inbound struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
	Name string `json:"name,omitempty"`
	Data []byte `json:"data,omitempty"`
}

// Outbound is a server frame.
type Outbound struct {
	Type    string `json:"type"`
	Session string `json:"session,omitempty"`
	Agent   string `json:"agent,omitempty"`
	ItemID  string `json:"item_id,omitempty"`
	Text    string `json:"text,omitempty"`
	Ref     string `json:"ref,omitempty"`
	Error   string `json:"error,omitempty"`
}
