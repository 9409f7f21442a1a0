// internal/controllers/classify-change/config.go
package classifychange

import "time"

type Config struct {
	ClassifyURL string
	Timeout     time.Duration
	MaxRetries  int
}
