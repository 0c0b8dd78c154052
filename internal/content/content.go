// Package content supplies the static study text: revision notes per
// (subject, topic) and the gentle nudges used by attention alerts.
package content

import (
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// Library serves revision notes and attention nudges from a built-in set.
type Library struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New creates a library with a time-seeded nudge picker.
func New() *Library {
	return &Library{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// PromptFor returns the revision note for a (subject, topic) pair.
func (l *Library) PromptFor(subject, topic string) (string, error) {
	notes, ok := revisionNotes[subject]
	if !ok {
		return "", fmt.Errorf("no revision content for subject %q", subject)
	}
	note, ok := notes[topic]
	if !ok {
		// Fall back to a generic prompt rather than failing the summary.
		return fmt.Sprintf("Take another look at %s and try a few practice questions.", topic), nil
	}
	return note, nil
}

// AttentionNudge returns one of the rotating focus reminders.
func (l *Library) AttentionNudge() (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return nudges[l.rng.Intn(len(nudges))], nil
}

var nudges = []string{
	"Eyes on the screen! Your next question is waiting.",
	"Take a deep breath and refocus. You've got this!",
	"Quick stretch, then back to it. One question at a time.",
	"Losing steam? Try reading the question out loud.",
	"Almost there! Stay with it for a few more minutes.",
}

var revisionNotes = map[string]map[string]string{
	"math": {
		"addition":       "When adding, start from the bigger number and count up. For bigger sums, add the tens first, then the ones.",
		"subtraction":    "Think of subtraction as finding the distance between two numbers. Check your answer by adding it back.",
		"multiplication": "Multiplication is repeated addition. Practice the times tables up to 12 until they feel automatic.",
		"division":       "Division asks how many equal groups fit. If 6 x 4 = 24, then 24 / 4 = 6. Use the times table backwards.",
	},
	"science": {
		"animals": "Group animals by what they share: mammals feed milk, birds have feathers, fish breathe with gills.",
		"plants":  "Follow the journey of a plant: roots drink, stems carry, leaves cook food with sunlight, flowers make seeds.",
		"space":   "Picture the solar system from the Sun outward. Remember that gravity keeps everything in orbit.",
	},
}
