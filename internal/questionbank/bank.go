// Package questionbank supplies quiz questions. Math questions are generated
// arithmetic problems with tier-scaled operands; science questions come from
// a curated static set.
package questionbank

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/studyquest/internal/quiz"
)

const (
	SubjectMath    = "math"
	SubjectScience = "science"
)

var mathTopics = []string{"addition", "subtraction", "multiplication", "division"}

// Bank implements quiz.QuestionBank over generated math problems and the
// static science set.
type Bank struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New creates a bank with a time-seeded generator.
func New() *Bank {
	return &Bank{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// NewSeeded creates a bank with a fixed seed, for reproducible output.
func NewSeeded(seed int64) *Bank {
	return &Bank{rng: rand.New(rand.NewSource(seed))}
}

// Subjects lists the subjects the bank can serve.
func (b *Bank) Subjects() []string {
	return []string{SubjectMath, SubjectScience}
}

// Topics lists the bank's topics for a subject, in round-robin fill order.
func (b *Bank) Topics(subject string) []string {
	switch subject {
	case SubjectMath:
		return append([]string(nil), mathTopics...)
	case SubjectScience:
		return scienceTopics()
	default:
		return nil
	}
}

// FetchQuestions returns up to count questions for the subject at the given
// tier, cycling over the requested topics in order so earlier (weaker)
// topics are covered first. Unknown topics are skipped.
func (b *Bank) FetchQuestions(ctx context.Context, subject string, topics []string, difficulty quiz.Difficulty, count int) ([]quiz.Question, error) {
	if count <= 0 {
		return nil, nil
	}
	known := b.Topics(subject)
	if known == nil {
		return nil, fmt.Errorf("unknown subject %q", subject)
	}
	topics = intersect(topics, known)
	if len(topics) == 0 {
		topics = known
	}

	switch subject {
	case SubjectMath:
		return b.generateMath(topics, difficulty, count), nil
	default:
		return b.pickScience(topics, difficulty, count), nil
	}
}

func (b *Bank) generateMath(topics []string, difficulty quiz.Difficulty, count int) []quiz.Question {
	b.mu.Lock()
	defer b.mu.Unlock()

	questions := make([]quiz.Question, 0, count)
	for i := 0; i < count; i++ {
		topic := topics[i%len(topics)]
		questions = append(questions, b.mathQuestion(topic, difficulty))
	}
	return questions
}

// operandRange scales operands with the tier.
func operandRange(difficulty quiz.Difficulty) (lo, hi int) {
	switch difficulty {
	case quiz.Hard:
		return 25, 200
	case quiz.Medium:
		return 10, 50
	default:
		return 1, 10
	}
}

func (b *Bank) mathQuestion(topic string, difficulty quiz.Difficulty) quiz.Question {
	lo, hi := operandRange(difficulty)
	a := lo + b.rng.Intn(hi-lo+1)
	c := lo + b.rng.Intn(hi-lo+1)

	var prompt, hint string
	var answer int
	switch topic {
	case "subtraction":
		if c > a {
			a, c = c, a
		}
		prompt = fmt.Sprintf("What is %d - %d?", a, c)
		hint = fmt.Sprintf("Count down from %d.", a)
		answer = a - c
	case "multiplication":
		// Keep one factor small enough to stay in times-table territory.
		c = 2 + b.rng.Intn(11)
		prompt = fmt.Sprintf("What is %d x %d?", a, c)
		hint = fmt.Sprintf("Add %d together %d times.", a, c)
		answer = a * c
	case "division":
		// Build from the product so the quotient is exact.
		c = 2 + b.rng.Intn(11)
		answer = a
		a = a * c
		prompt = fmt.Sprintf("What is %d / %d?", a, c)
		hint = fmt.Sprintf("How many groups of %d fit in %d?", c, a)
	default:
		prompt = fmt.Sprintf("What is %d + %d?", a, c)
		hint = fmt.Sprintf("Count up from %d.", a)
		answer = a + c
	}

	options, correct := b.distractors(answer)
	return quiz.Question{
		ID:          uuid.New().String(),
		Subject:     SubjectMath,
		Topic:       topic,
		Difficulty:  difficulty,
		Prompt:      prompt,
		Options:     options,
		Correct:     correct,
		Explanation: fmt.Sprintf("The answer is %d.", answer),
		Hint:        hint,
	}
}

// distractors builds four options around the answer and returns them with
// the index of the correct one.
func (b *Bank) distractors(answer int) ([]string, int) {
	values := map[int]bool{answer: true}
	options := []int{answer}
	for len(options) < 4 {
		delta := 1 + b.rng.Intn(10)
		if b.rng.Intn(2) == 0 {
			delta = -delta
		}
		v := answer + delta
		if v < 0 || values[v] {
			continue
		}
		values[v] = true
		options = append(options, v)
	}

	b.rng.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})

	out := make([]string, len(options))
	correct := 0
	for i, v := range options {
		out[i] = fmt.Sprintf("%d", v)
		if v == answer {
			correct = i
		}
	}
	return out, correct
}

func (b *Bank) pickScience(topics []string, difficulty quiz.Difficulty, count int) []quiz.Question {
	byTopic := make(map[string][]quiz.Question)
	for _, q := range scienceQuestions {
		if q.Difficulty == difficulty {
			byTopic[q.Topic] = append(byTopic[q.Topic], q)
		}
	}

	b.mu.Lock()
	for _, pool := range byTopic {
		b.rng.Shuffle(len(pool), func(i, j int) {
			pool[i], pool[j] = pool[j], pool[i]
		})
	}
	b.mu.Unlock()

	// Round-robin over the requested topic order until count is reached or
	// every pool is drained.
	var questions []quiz.Question
	for len(questions) < count {
		progressed := false
		for _, topic := range topics {
			pool := byTopic[topic]
			if len(pool) == 0 {
				continue
			}
			questions = append(questions, pool[0])
			byTopic[topic] = pool[1:]
			progressed = true
			if len(questions) == count {
				break
			}
		}
		if !progressed {
			break
		}
	}
	return questions
}

// intersect keeps the entries of want that appear in have, preserving
// want's order.
func intersect(want, have []string) []string {
	set := make(map[string]bool, len(have))
	for _, h := range have {
		set[h] = true
	}
	var out []string
	for _, w := range want {
		if set[w] {
			out = append(out, w)
		}
	}
	return out
}
