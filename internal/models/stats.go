package models

import (
	"fmt"
	"sort"
	"time"

	"github.com/dmitrijs2005/patrimonio/internal/common"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type AccessibleMoney struct {
	Bank1    float64 `json:"bank1"`
	Bank2    float64 `json:"bank2"`
	Physical float64 `json:"physical"`
}

type Investments struct {
	Savings float64 `json:"savings"`
	Tesouro float64 `json:"tesouro"`
	Stocks  float64 `json:"stocks"`
	Others  float64 `json:"others"`
}

type ConfidenceScore struct {
	Clarity         float64 `json:"clarity"`
	Consistency     float64 `json:"consistency"`
	Diversification float64 `json:"diversification"`
	Progress        float64 `json:"progress"`
	Education       float64 `json:"education"`
	Total           float64 `json:"total"`
}

// Recalculate sets Total to the sum of the five sub-scores.
func (c *ConfidenceScore) Recalculate() {
	c.Total = sum(c.Clarity, c.Consistency, c.Diversification, c.Progress, c.Education)
}

// MaxSubScore caps each confidence sub-score, so Total never exceeds 100.
const MaxSubScore = 20

// refreshScore derives the sub-scores that follow from the stats: clarity
// once any balance is recorded, diversification per funded investment,
// consistency from the streak and education per answered challenge.
// Progress is left as stored.
func (s *UserStats) refreshScore() {
	c := &s.ConfidenceScore

	c.Clarity = 0
	if s.Total() > 0 {
		c.Clarity = MaxSubScore
	}

	funded := 0
	for _, v := range []float64{s.Investments.Savings, s.Investments.Tesouro, s.Investments.Stocks, s.Investments.Others} {
		if v > 0 {
			funded++
		}
	}
	c.Diversification = float64(funded * MaxSubScore / 4)

	c.Consistency = capScore(2 * s.Streak)
	c.Education = capScore(2 * len(s.TrainingHistory))

	c.Recalculate()
}

func capScore(v int) float64 {
	return float64(min(v, MaxSubScore))
}

// TrainingEntry records one answered investment challenge.
type TrainingEntry struct {
	ID        string    `json:"id"`
	Choice    string    `json:"choice"`
	Amount    float64   `json:"amount"`
	Feedback  string    `json:"feedback"`
	CreatedAt time.Time `json:"createdAt"`
}

type UserStats struct {
	AccessibleMoney AccessibleMoney `json:"accessibleMoney"`
	Investments     Investments     `json:"investments"`
	ConfidenceScore ConfidenceScore `json:"confidenceScore"`
	Streak          int             `json:"streak"`
	TrainingHistory []TrainingEntry `json:"trainingHistory"`
}

// NewUserStats returns all-zero stats with an empty history.
func NewUserStats() UserStats {
	return UserStats{TrainingHistory: []TrainingEntry{}}
}

// Liquid is the sum of the accessible money buckets.
func (s UserStats) Liquid() float64 {
	m := s.AccessibleMoney
	return sum(m.Bank1, m.Bank2, m.Physical)
}

// Invested is the sum of the investment buckets.
func (s UserStats) Invested() float64 {
	i := s.Investments
	return sum(i.Savings, i.Tesouro, i.Stocks, i.Others)
}

// Total is liquid plus invested money.
func (s UserStats) Total() float64 {
	return sum(s.Liquid(), s.Invested())
}

// AddTraining appends a challenge outcome to the history, bumps the streak
// and refreshes the confidence score.
func (s *UserStats) AddTraining(choice string, amount float64, feedback string) TrainingEntry {
	e := TrainingEntry{
		ID:        uuid.NewString(),
		Choice:    choice,
		Amount:    amount,
		Feedback:  feedback,
		CreatedAt: time.Now().UTC(),
	}
	s.TrainingHistory = append(s.TrainingHistory, e)
	s.Streak++
	s.refreshScore()
	return e
}

// Bucket names accepted by SetBucket.
const (
	BucketBank1    = "bank1"
	BucketBank2    = "bank2"
	BucketPhysical = "physical"
	BucketSavings  = "savings"
	BucketTesouro  = "tesouro"
	BucketStocks   = "stocks"
	BucketOthers   = "others"
)

func (s *UserStats) buckets() map[string]*float64 {
	return map[string]*float64{
		BucketBank1:    &s.AccessibleMoney.Bank1,
		BucketBank2:    &s.AccessibleMoney.Bank2,
		BucketPhysical: &s.AccessibleMoney.Physical,
		BucketSavings:  &s.Investments.Savings,
		BucketTesouro:  &s.Investments.Tesouro,
		BucketStocks:   &s.Investments.Stocks,
		BucketOthers:   &s.Investments.Others,
	}
}

// BucketNames lists the valid bucket names in sorted order.
func BucketNames() []string {
	var s UserStats
	names := make([]string, 0, 7)
	for n := range s.buckets() {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// SetBucket sets one named money bucket and refreshes the confidence score.
// Amounts must be non-negative.
func (s *UserStats) SetBucket(name string, amount float64) error {
	if amount < 0 {
		return fmt.Errorf("%w: negative amount for %s", common.ErrValidation, name)
	}
	p, ok := s.buckets()[name]
	if !ok {
		return fmt.Errorf("%w: unknown bucket %q", common.ErrValidation, name)
	}
	*p = amount
	s.refreshScore()
	return nil
}

func sum(values ...float64) float64 {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(decimal.NewFromFloat(v))
	}
	f, _ := total.Float64()
	return f
}
