package app

import "sync"

// notice is the one-line notification shown in the status bar until the
// next key press. It is shared by pointer so copies of the root model see
// the same message.
type notice struct {
	mu   sync.Mutex
	text string
}

// Notify implements triage.Notifier.
func (n *notice) Notify(message string) {
	n.mu.Lock()
	n.text = message
	n.mu.Unlock()
}

func (n *notice) Text() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.text
}

func (n *notice) Clear() {
	n.Notify("")
}
