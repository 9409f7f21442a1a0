// internal/transcript/transcript.go

// Package transcript keeps the append-only conversation log. Turns never
// mutate after append; rendering always replays the whole log.
package transcript

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/BrunoManzanoCTTI/MVP-MPCDC/internal/models"
)

// Log is a concurrency-safe append-only list of chat turns.
type Log struct {
	mu    sync.Mutex
	turns []models.ChatTurn
	now   func() time.Time
}

func NewLog() *Log {
	return &Log{now: time.Now}
}

// AppendUser records a user turn verbatim and returns it.
func (l *Log) AppendUser(content string) models.ChatTurn {
	return l.append(models.SpeakerUser, content)
}

// AppendAssistant records an assistant turn and returns it.
func (l *Log) AppendAssistant(content string) models.ChatTurn {
	return l.append(models.SpeakerAssistant, content)
}

func (l *Log) append(speaker models.Speaker, content string) models.ChatTurn {
	l.mu.Lock()
	defer l.mu.Unlock()

	turn := models.ChatTurn{
		ID:      uuid.NewString(),
		Speaker: speaker,
		Content: content,
		At:      l.now(),
	}
	l.turns = append(l.turns, turn)
	return turn
}

// Turns returns a copy of the log in append order.
func (l *Log) Turns() []models.ChatTurn {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]models.ChatTurn, len(l.turns))
	copy(out, l.turns)
	return out
}

// Len reports the number of recorded turns.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.turns)
}
