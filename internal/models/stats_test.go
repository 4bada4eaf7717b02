package models

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/dmitrijs2005/patrimonio/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUserStats_AllZero(t *testing.T) {
	s := NewUserStats()

	assert.Zero(t, s.AccessibleMoney)
	assert.Zero(t, s.Investments)
	assert.Zero(t, s.ConfidenceScore)
	assert.Zero(t, s.Streak)
	require.NotNil(t, s.TrainingHistory)
	assert.Empty(t, s.TrainingHistory)
}

func TestNewUserStats_SerializesEmptyHistoryAsArray(t *testing.T) {
	b, err := json.Marshal(NewUserStats())
	require.NoError(t, err)
	assert.Contains(t, string(b), `"trainingHistory":[]`)
	assert.Contains(t, string(b), `"accessibleMoney":{"bank1":0,"bank2":0,"physical":0}`)
}

func TestAggregates(t *testing.T) {
	s := NewUserStats()
	s.AccessibleMoney = AccessibleMoney{Bank1: 0.1, Bank2: 0.2, Physical: 100}
	s.Investments = Investments{Savings: 500, Tesouro: 1000, Stocks: 250.5, Others: 0}

	assert.Equal(t, 100.3, s.Liquid())
	assert.Equal(t, 1750.5, s.Invested())
	assert.Equal(t, 1850.8, s.Total())
}

func TestConfidenceScore_Recalculate(t *testing.T) {
	c := ConfidenceScore{Clarity: 10, Consistency: 20, Diversification: 5, Progress: 1.5, Education: 3.5}
	c.Recalculate()
	assert.Equal(t, 40.0, c.Total)
}

func TestSetBucket(t *testing.T) {
	s := NewUserStats()

	require.NoError(t, s.SetBucket(BucketBank1, 1200))
	require.NoError(t, s.SetBucket(BucketTesouro, 300))
	assert.Equal(t, 1200.0, s.AccessibleMoney.Bank1)
	assert.Equal(t, 300.0, s.Investments.Tesouro)

	err := s.SetBucket(BucketStocks, -1)
	require.True(t, errors.Is(err, common.ErrValidation))
	assert.Zero(t, s.Investments.Stocks)

	err = s.SetBucket("crypto", 10)
	require.True(t, errors.Is(err, common.ErrValidation))
}

func TestBucketNames(t *testing.T) {
	assert.Equal(t, []string{"bank1", "bank2", "others", "physical", "savings", "stocks", "tesouro"}, BucketNames())
}

func TestAddTraining(t *testing.T) {
	s := NewUserStats()

	e := s.AddTraining("Tesouro Selic", 500, "Boa escolha!")
	s.AddTraining("FIIs", 200, "Cuidado com a vacância.")

	require.Len(t, s.TrainingHistory, 2)
	assert.Equal(t, e, s.TrainingHistory[0])
	assert.Equal(t, "FIIs", s.TrainingHistory[1].Choice)
	assert.NotEmpty(t, e.ID)
	assert.Equal(t, 2, s.Streak)
	assert.Equal(t, 4.0, s.ConfidenceScore.Education)
	assert.Equal(t, 4.0, s.ConfidenceScore.Consistency)
	assert.Equal(t, 8.0, s.ConfidenceScore.Total)
}

func TestConfidenceScore_FollowsStats(t *testing.T) {
	s := NewUserStats()

	require.NoError(t, s.SetBucket(BucketBank1, 100))
	assert.Equal(t, 20.0, s.ConfidenceScore.Clarity)
	assert.Zero(t, s.ConfidenceScore.Diversification)

	require.NoError(t, s.SetBucket(BucketTesouro, 300))
	require.NoError(t, s.SetBucket(BucketStocks, 50))
	assert.Equal(t, 10.0, s.ConfidenceScore.Diversification)
	assert.Equal(t, 30.0, s.ConfidenceScore.Total)

	for i := 0; i < 15; i++ {
		s.AddTraining("CDB", 10, "ok")
	}
	assert.Equal(t, 20.0, s.ConfidenceScore.Education)
	assert.Equal(t, 20.0, s.ConfidenceScore.Consistency)
	assert.Equal(t, 70.0, s.ConfidenceScore.Total)

	require.NoError(t, s.SetBucket(BucketBank1, 0))
	assert.Equal(t, 20.0, s.ConfidenceScore.Clarity)
}

func TestGuestAccount(t *testing.T) {
	g := GuestAccount()
	assert.True(t, g.IsGuest())
	assert.Equal(t, GuestName, g.Name)
	assert.Empty(t, g.PasswordHash)
	assert.Empty(t, g.Stats.TrainingHistory)

	a := NewAccount("Ana", "ana@x.com", []byte("s"), []byte("h"))
	assert.False(t, a.IsGuest())
	assert.NotEmpty(t, a.ID)
	assert.Equal(t, NewUserStats(), a.Stats)

	var nilAcc *Account
	assert.False(t, nilAcc.IsGuest())
}
