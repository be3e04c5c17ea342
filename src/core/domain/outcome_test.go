package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func int64Ptr(v int64) *int64 { return &v }

func TestEpisodeOutcomeValidate(t *testing.T) {
	t.Run("empty outcome is valid", func(t *testing.T) {
		assert.NoError(t, (&EpisodeOutcome{}).Validate())
	})

	t.Run("winner requires final three", func(t *testing.T) {
		o := &EpisodeOutcome{WinnerPlayer: int64Ptr(7)}
		err := o.Validate()
		require.Error(t, err)
		assert.True(t, IsValidationError(err))
	})

	t.Run("final three requires players", func(t *testing.T) {
		o := &EpisodeOutcome{IsFinalThree: true}
		err := o.Validate()
		require.Error(t, err)
		assert.True(t, IsValidationError(err))
	})

	t.Run("title speaker cannot be player and host", func(t *testing.T) {
		o := &EpisodeOutcome{
			EpisodeTitleSpeaker: int64Ptr(7),
			TitleSpeakerIsHost:  true,
		}
		err := o.Validate()
		require.Error(t, err)
		assert.True(t, IsValidationError(err))
	})

	t.Run("full finale outcome is valid", func(t *testing.T) {
		o := &EpisodeOutcome{
			IsFinalThree:      true,
			FinalThreePlayers: []int64{1, 2, 3},
			WinnerPlayer:      int64Ptr(1),
			VotedOutPlayers:   []int64{2, 3},
		}
		assert.NoError(t, o.Validate())
	})
}

func TestEpisodeOutcomePlayerIDs(t *testing.T) {
	t.Run("empty outcome references no players", func(t *testing.T) {
		assert.Empty(t, (&EpisodeOutcome{}).PlayerIDs())
	})

	t.Run("covers every field and deduplicates", func(t *testing.T) {
		o := &EpisodeOutcome{
			TribeRewardWinners:       []int64{1, 2},
			IndividualRewardWinner:   int64Ptr(3),
			TribeImmunityWinners:     []int64{1, 4},
			IndividualImmunityWinner: int64Ptr(5),
			TribeImmunitySecond:      int64Ptr(6),
			IdolFinders:              []int64{7},
			IdolPlayers:              []int64{7},
			AdvantageFinders:         []int64{8},
			EpisodeTitleSpeaker:      int64Ptr(9),
			VotedOutPlayers:          []int64{10},
			IsFinalThree:             true,
			FinalThreePlayers:        []int64{11, 12, 3},
			WinnerPlayer:             int64Ptr(11),
		}
		assert.ElementsMatch(t,
			[]int64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12},
			o.PlayerIDs(),
		)
	})
}
