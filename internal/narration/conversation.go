package narration

import "sync"

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of a conversation.
type Message struct {
	Role    string
	Content string
}

// Conversations keeps a bounded message history per addressee.
// It is safe for concurrent use.
type Conversations struct {
	mu      sync.Mutex
	keep    int
	send    int
	threads map[Addressee][]Message
}

// NewConversations retains keep messages per addressee and returns the last
// send of them from Recent.
//
// Precondition: 0 <= send <= keep; keep <= 0 uses 20 and 15.
func NewConversations(keep, send int) *Conversations {
	if keep <= 0 {
		keep, send = 20, 15
	}
	if send < 0 || send > keep {
		send = keep
	}
	return &Conversations{keep: keep, send: send, threads: make(map[Addressee][]Message)}
}

// Append records a message, dropping the oldest beyond the keep limit.
func (c *Conversations) Append(to Addressee, role, content string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := append(c.threads[to], Message{Role: role, Content: content})
	if over := len(t) - c.keep; over > 0 {
		t = append([]Message(nil), t[over:]...)
	}
	c.threads[to] = t
}

// Recent returns a copy of the last send messages for to.
func (c *Conversations) Recent(to Addressee) []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.threads[to]
	if len(t) > c.send {
		t = t[len(t)-c.send:]
	}
	return append([]Message(nil), t...)
}

// Len returns the retained message count for to.
func (c *Conversations) Len(to Addressee) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.threads[to])
}

// Reset forgets every conversation, as after loading a different game.
func (c *Conversations) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.threads = make(map[Addressee][]Message)
}
