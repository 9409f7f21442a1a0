// internal/controllers/chat/config.go
package chat

import "time"

type Config struct {
	ChatURL    string
	StatusURL  string
	Timeout    time.Duration
	MaxRetries int
	MockMode   bool
}
