package a2a

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

// genArtifactID generates a small pool of artifact identifiers so that
// generated event sequences interleave updates to the same artifact.
func genArtifactID() *rapid.Generator[string] {
	return rapid.SampledFrom([]string{"art-a", "art-b", "art-c"})
}

func genChunk() *rapid.Generator[string] {
	return rapid.StringMatching(`[a-zA-Z0-9 ]{0,20}`)
}

// TestArtifactAccumulator_MatchesSequentialModel checks the accumulator
// against a naive model: replace resets the text, append concatenates, and
// arrival order of first sightings is preserved.
func TestArtifactAccumulator_MatchesSequentialModel(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		acc := NewArtifactAccumulator()
		model := make(map[string]*strings.Builder)
		order := []string{}

		n := rapid.IntRange(0, 40).Draw(rt, "events")
		for i := 0; i < n; i++ {
			id := genArtifactID().Draw(rt, fmt.Sprintf("id_%d", i))
			chunk := genChunk().Draw(rt, fmt.Sprintf("chunk_%d", i))
			isAppend := rapid.Bool().Draw(rt, fmt.Sprintf("append_%d", i))

			got := acc.Apply(&TaskArtifactUpdateEvent{
				Kind:     KindArtifactUpdate,
				TaskID:   "task-1",
				Artifact: Artifact{ArtifactID: id, Parts: []Part{NewTextPart(chunk)}},
				Append:   isAppend,
			})

			if _, ok := model[id]; !ok {
				model[id] = &strings.Builder{}
				order = append(order, id)
			}
			if !isAppend {
				model[id].Reset()
			}
			model[id].WriteString(chunk)

			assert.Equal(rt, model[id].String(), got)
		}

		assert.Equal(rt, order, acc.IDs())
		for id, want := range model {
			text, ok := acc.Text(id)
			assert.True(rt, ok)
			assert.Equal(rt, want.String(), text)
		}
	})
}

// TestTaskState_NormalizeIdempotent checks that normalizing any state twice
// equals normalizing it once, and that normalization never flips terminality
// for recognized states.
func TestTaskState_NormalizeIdempotent(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		state := TaskState(rapid.StringMatching(`[a-z-]{0,16}`).Draw(rt, "state"))

		once := state.Normalize()
		assert.Equal(rt, once, once.Normalize())

		if state.Terminal() {
			assert.True(rt, once.Terminal())
		}
	})
}
