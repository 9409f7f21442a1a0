// internal/transcript/transcript_test.go
package transcript

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BrunoManzanoCTTI/MVP-MPCDC/internal/models"
)

func TestAppendPreservesOrderAndContent(t *testing.T) {
	log := NewLog()

	log.AppendUser("What is the risk here?")
	log.AppendAssistant("The risk is moderate.")
	log.AppendUser("And the mitigation?")

	turns := log.Turns()
	require.Len(t, turns, 3)

	assert.Equal(t, models.SpeakerUser, turns[0].Speaker)
	assert.Equal(t, "What is the risk here?", turns[0].Content)
	assert.Equal(t, models.SpeakerAssistant, turns[1].Speaker)
	assert.Equal(t, models.SpeakerUser, turns[2].Speaker)
}

func TestTurnIDsAreUnique(t *testing.T) {
	log := NewLog()

	a := log.AppendUser("first")
	b := log.AppendUser("second")

	assert.NotEmpty(t, a.ID)
	assert.NotEmpty(t, b.ID)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestTurnsReturnsCopy(t *testing.T) {
	log := NewLog()
	log.AppendUser("original")

	turns := log.Turns()
	turns[0].Content = "mutated"

	assert.Equal(t, "original", log.Turns()[0].Content)
	assert.Equal(t, 1, log.Len())
}
