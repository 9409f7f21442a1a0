// internal/controllers/chat/models.go
package chat

// chatRequest is the wire shape for POST /mpcdc/chat.
type chatRequest struct {
	Message string `json:"message"`
}

// chatResponse is the backend's reply. Exactly one of Response or Error is
// meaningful.
type chatResponse struct {
	Response string `json:"response"`
	Error    string `json:"error"`
}

// StatusReport describes the backend's availability as seen by the status
// probe.
type StatusReport struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

const (
	StatusConnected = "connected"
	StatusDemo      = "demo"
	StatusError     = "error"
)
