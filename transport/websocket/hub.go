package websocket

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

type client struct {
	conn *websocket.Conn

	writeMu sync.Mutex
	matchID string
}

func (that *client) write(messageType int, data []byte) error {
	that.writeMu.Lock()
	defer that.writeMu.Unlock()

	if err := that.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}

	return that.conn.WriteMessage(messageType, data)
}

// hub tracks which connections follow which match.
type hub struct {
	mu      sync.RWMutex
	matches map[string]map[*client]struct{}
}

func newHub() *hub {
	return &hub{
		matches: make(map[string]map[*client]struct{}),
	}
}

// join moves the client to matchID, leaving any match it followed before.
func (that *hub) join(c *client, matchID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.removeLocked(c)

	subscribers, ok := that.matches[matchID]
	if !ok {
		subscribers = make(map[*client]struct{})
		that.matches[matchID] = subscribers
	}

	subscribers[c] = struct{}{}
	c.matchID = matchID
}

func (that *hub) leave(c *client) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.removeLocked(c)
}

func (that *hub) removeLocked(c *client) {
	if c.matchID == "" {
		return
	}

	subscribers := that.matches[c.matchID]
	delete(subscribers, c)

	if len(subscribers) == 0 {
		delete(that.matches, c.matchID)
	}

	c.matchID = ""
}

func (that *hub) subscribers(matchID string) []*client {
	that.mu.RLock()
	defer that.mu.RUnlock()

	clients := make([]*client, 0, len(that.matches[matchID]))
	for c := range that.matches[matchID] {
		clients = append(clients, c)
	}

	return clients
}

func (that *hub) matchOf(c *client) string {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return c.matchID
}
