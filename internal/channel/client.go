// internal/channel/client.go
package channel

import "errors"

// ErrReconnecting is reported by a provider while the sender account is
// mid-reconnect. Callers may wait and retry once before giving up.
var ErrReconnecting = errors.New("sender account is reconnecting")

// Client is the channel-send capability for one provider connection pool.
// Implementations enforce their own timeouts.
type Client interface {
	SendText(senderID int, phone, text string) error
	SendImage(senderID int, phone, filePath, caption string) error
	SendDocument(senderID int, phone, filePath, caption string) error
	SendAudio(senderID int, phone, filePath, caption string) error
}
