package ui

// NavigateMsg asks the root model to switch to the view at Path. Arriving
// at the dashboard reloads it; navigating to the view already shown is a
// no-op.
type NavigateMsg struct {
	Path string

	// Visit is set on redirects issued by the chat view. It names the chat
	// visit the redirect belongs to; once the user has left that visit the
	// redirect is dropped. Zero means a direct request.
	Visit int
}

// Redirect reports whether the message came from a deferred chat redirect.
func (m NavigateMsg) Redirect() bool {
	return m.Visit > 0
}

// Paths understood by the root model.
const (
	PathChat     = "/chat"
	PathSettings = "/settings"
)
