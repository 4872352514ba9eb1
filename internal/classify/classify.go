package classify

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Unknown is the category assigned whenever no trustworthy classification exists.
const Unknown = "Unknown"

const (
	defaultTimeout       = 20 * time.Second
	defaultMinConfidence = 0.3
)

type Request struct {
	Counterparty string
	Amount       decimal.Decimal
	Fields       map[string]any
	Vocabulary   []string
}

// Result is always populated. A failed classification is {Unknown, 0}.
type Result struct {
	Category   string
	Confidence float64
	Reasoning  string
}

func (r Result) Failed() bool {
	return r.Category == Unknown && r.Confidence == 0
}

//go:generate mockgen -source=classify.go -destination=classifier_mock.go -package=classify
type Classifier interface {
	Classify(ctx context.Context, req Request) (Result, error)
}

type Adapter struct {
	classifier    Classifier
	log           zerolog.Logger
	timeout       time.Duration
	minConfidence float64
}

type Option func(*Adapter)

func WithTimeout(d time.Duration) Option {
	return func(a *Adapter) { a.timeout = d }
}

// WithMinConfidence sets the threshold below which the category is replaced by Unknown.
func WithMinConfidence(c float64) Option {
	return func(a *Adapter) { a.minConfidence = c }
}

func NewAdapter(classifier Classifier, log zerolog.Logger, opts ...Option) *Adapter {
	a := &Adapter{
		classifier:    classifier,
		log:           log,
		timeout:       defaultTimeout,
		minConfidence: defaultMinConfidence,
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Explicit is the result for a caller supplied category. The collaborator is not consulted.
func Explicit(category string) Result {
	return Result{Category: category, Confidence: 1.0}
}

func failed() Result {
	return Result{Category: Unknown, Confidence: 0}
}

// Classify calls the collaborator once. Errors never propagate.
func (a *Adapter) Classify(ctx context.Context, req Request) Result {
	if a.classifier == nil {
		return failed()
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	res, err := a.classifier.Classify(ctx, req)
	if err != nil {
		a.log.Warn().Err(err).Str("counterparty", req.Counterparty).Msg("classification failed, using fallback category")
		return failed()
	}

	res.Confidence = clamp(res.Confidence)

	category, ok := match(req.Vocabulary, res.Category)
	if !ok {
		a.log.Warn().Str("category", res.Category).Msg("classifier returned category outside vocabulary")
		return Result{Category: Unknown, Confidence: res.Confidence, Reasoning: res.Reasoning}
	}

	if res.Confidence < a.minConfidence {
		return Result{Category: Unknown, Confidence: res.Confidence, Reasoning: res.Reasoning}
	}

	res.Category = category

	return res
}

// match finds category in vocabulary ignoring case. An empty vocabulary accepts anything non-empty.
func match(vocabulary []string, category string) (string, bool) {
	category = strings.TrimSpace(category)
	if category == "" {
		return "", false
	}

	if len(vocabulary) == 0 {
		return category, true
	}

	for _, v := range vocabulary {
		if strings.EqualFold(v, category) {
			return v, true
		}
	}

	return "", false
}

func clamp(c float64) float64 {
	switch {
	case c < 0:
		return 0
	case c > 1:
		return 1
	}

	return c
}
