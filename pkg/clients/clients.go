package clients

import (
	"fmt"
	"sync"
)

const (
	// ClientIDMaxRetries represents the maximum number of retries when generating a unique ID
	ClientIDMaxRetries = 1024
	// SendBufferSize is the number of messages buffered per client before
	// broadcasts to it are dropped.
	SendBufferSize = 64
)

// Client is a connected debug event subscriber.
type Client struct {
	ID         uint32
	RemoteAddr string
	send       chan []byte
}

// Send returns the channel of messages waiting to be written to the client.
// It is closed when the client is removed.
func (c *Client) Send() <-chan []byte {
	return c.send
}

// ClientManager manages connected clients
type ClientManager struct {
	clients     map[uint32]*Client
	clientsLock sync.RWMutex
	nextID      uint32
}

// NewClientManager creates a new ClientManager
func NewClientManager() *ClientManager {
	return &ClientManager{
		clients: make(map[uint32]*Client),
		nextID:  1,
	}
}

// GetClients returns a list of all connected clients
func (cm *ClientManager) GetClients() []*Client {
	cm.clientsLock.RLock()
	defer cm.clientsLock.RUnlock()
	clients := make([]*Client, 0, len(cm.clients))
	for _, client := range cm.clients {
		clients = append(clients, client)
	}
	return clients
}

// AddClient adds a new client to the manager
func (cm *ClientManager) AddClient(remoteAddr string) (*Client, error) {
	cm.clientsLock.Lock()
	defer cm.clientsLock.Unlock()
	clientID, err := cm.GenerateUniqueID(ClientIDMaxRetries)
	if err != nil {
		return nil, fmt.Errorf("failed to generate a unique ID: %v", err)
	}
	client := &Client{
		ID:         clientID,
		RemoteAddr: remoteAddr,
		send:       make(chan []byte, SendBufferSize),
	}
	cm.clients[clientID] = client
	return client, nil
}

// RemoveClient removes a client from the manager and closes its send channel.
func (cm *ClientManager) RemoveClient(clientID uint32) {
	cm.clientsLock.Lock()
	defer cm.clientsLock.Unlock()

	if client, exists := cm.clients[clientID]; exists {
		close(client.send)
		delete(cm.clients, clientID)
	}
}

// GetClientByID retrieves a client by its ID
func (cm *ClientManager) GetClientByID(clientID uint32) *Client {
	cm.clientsLock.RLock()
	defer cm.clientsLock.RUnlock()
	return cm.clients[clientID]
}

func (cm *ClientManager) Exists(clientID uint32) bool {
	cm.clientsLock.RLock()
	defer cm.clientsLock.RUnlock()
	_, ok := cm.clients[clientID]
	return ok
}

// Broadcast queues msg for every client without blocking and returns the
// number of clients whose buffer was full.
func (cm *ClientManager) Broadcast(msg []byte) int {
	cm.clientsLock.RLock()
	defer cm.clientsLock.RUnlock()
	dropped := 0
	for _, client := range cm.clients {
		select {
		case client.send <- msg:
		default:
			dropped++
		}
	}
	return dropped
}

// GenerateUniqueID generates a unique client ID with a maximum number of retries
// it reads from the clients, so it needs to be locked before calling
func (cm *ClientManager) GenerateUniqueID(maxRetries int) (uint32, error) {
	for attempt := 0; attempt < maxRetries; attempt++ {
		id := cm.nextID
		if _, ok := cm.clients[id]; !ok && id != 0 {
			cm.nextID++
			return id, nil
		}
		cm.nextID++
	}

	return 0, fmt.Errorf("failed to generate a unique ID after %d attempts", maxRetries)
}
