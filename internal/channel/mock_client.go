// internal/channel/mock_client.go
package channel

import "sync"

// Call records one send issued through the mock.
type Call struct {
	Kind     string
	SenderID int
	Phone    string
	Text     string
	FilePath string
	Caption  string
}

// MockClient is an in-memory Client used by tests and the dev worker.
// SendFunc, when set, decides the outcome of every call.
type MockClient struct {
	mu       sync.Mutex
	SendFunc func(call Call) error
	Calls    []Call
}

func (m *MockClient) send(call Call) error {
	m.mu.Lock()
	m.Calls = append(m.Calls, call)
	fn := m.SendFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(call)
	}
	return nil
}

func (m *MockClient) SendText(senderID int, phone, text string) error {
	return m.send(Call{Kind: "text", SenderID: senderID, Phone: phone, Text: text})
}

func (m *MockClient) SendImage(senderID int, phone, filePath, caption string) error {
	return m.send(Call{Kind: "image", SenderID: senderID, Phone: phone, FilePath: filePath, Caption: caption})
}

func (m *MockClient) SendDocument(senderID int, phone, filePath, caption string) error {
	return m.send(Call{Kind: "document", SenderID: senderID, Phone: phone, FilePath: filePath, Caption: caption})
}

func (m *MockClient) SendAudio(senderID int, phone, filePath, caption string) error {
	return m.send(Call{Kind: "audio", SenderID: senderID, Phone: phone, FilePath: filePath, Caption: caption})
}

// CallLog returns a copy of the recorded calls.
func (m *MockClient) CallLog() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Call, len(m.Calls))
	copy(out, m.Calls)
	return out
}

var _ Client = (*MockClient)(nil)
