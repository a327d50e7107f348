package assistant

// ActionNavigate is the only action type the assistant emits.
const ActionNavigate = "navigate"

// Action is a client-side directive attached to a reply.
type Action struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

// Reply is the assistant's answer to a single message.
type Reply struct {
	Reply  string  `json:"reply"`
	Action *Action `json:"action,omitempty"`
}

// Route is a page the client can navigate to.
type Route struct {
	URL   string `json:"url"`
	Label string `json:"label,omitempty"`
}

// Navigate builds a reply carrying a navigate action.
func Navigate(text, url string) Reply {
	return Reply{Reply: text, Action: &Action{Type: ActionNavigate, URL: url}}
}
