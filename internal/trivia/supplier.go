package trivia

import (
	"context"
	"html"
	"math/rand"
	"sync"
	"time"

	"quizzle/internal/domain"
)

// Supplier turns raw provider payloads into normalized questions:
// HTML entities decoded, alternatives shuffled into display order.
type Supplier struct {
	client *Client

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewSupplier(client *Client) *Supplier {
	return &Supplier{
		client: client,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// FetchQuestions fetches and normalizes a question batch. The returned
// sequence may be shorter than opts.QuestionCount when the provider
// cannot supply enough questions for the chosen filters.
func (s *Supplier) FetchQuestions(ctx context.Context, opts domain.QuizOptions, token string) ([]domain.Question, error) {
	raw, err := s.client.FetchQuestions(ctx, opts, token)
	if err != nil {
		return nil, err
	}

	questions := make([]domain.Question, 0, len(raw))
	for _, r := range raw {
		questions = append(questions, s.normalize(r))
	}
	return questions, nil
}

func (s *Supplier) normalize(r RawQuestion) domain.Question {
	correct := html.UnescapeString(r.CorrectAnswer)

	alternatives := make([]string, 0, len(r.IncorrectAnswers)+1)
	for _, a := range r.IncorrectAnswers {
		alternatives = append(alternatives, html.UnescapeString(a))
	}
	alternatives = append(alternatives, correct)
	s.shuffle(alternatives)

	return domain.Question{
		Text:               html.UnescapeString(r.Question),
		Alternatives:       alternatives,
		CorrectAlternative: correct,
		Difficulty:         domain.Difficulty(r.Difficulty),
	}
}

// shuffle is an in-place Fisher-Yates shuffle; every permutation is
// equally likely.
func (s *Supplier) shuffle(alternatives []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(alternatives) - 1; i > 0; i-- {
		j := s.rnd.Intn(i + 1)
		alternatives[i], alternatives[j] = alternatives[j], alternatives[i]
	}
}
