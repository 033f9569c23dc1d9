package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"manoLogAPI/internal/apperrors"
	"manoLogAPI/internal/types/mood"
)

func TestLogMoodValidation(t *testing.T) {
	f := newFixture(t, wednesday)
	future := wednesday.Add(10 * time.Minute)
	long := string(make([]byte, maxNoteLength+1))

	tests := []struct {
		name string
		req  LogMoodRequest
	}{
		{"unknown mood", LogMoodRequest{MoodType: "bored", Intensity: 5}},
		{"intensity too low", LogMoodRequest{MoodType: "happy", Intensity: 0}},
		{"intensity too high", LogMoodRequest{MoodType: "happy", Intensity: 11}},
		{"future timestamp", LogMoodRequest{MoodType: "happy", Intensity: 5, LoggedAt: &future}},
		{"note too long", LogMoodRequest{MoodType: "happy", Intensity: 5, Note: &long}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.moods.LogMood(f.ctx, f.clerkID, &tt.req)
			assert.ErrorIs(t, err, apperrors.ErrInvalidEntry)
		})
	}

	sum, err := f.db.MoodLogSummary(f.ctx, f.userID)
	require.NoError(t, err)
	assert.Zero(t, sum.Total, "nothing is written on validation failure")
}

func TestLogMoodDefaultsAndNormalizes(t *testing.T) {
	f := newFixture(t, wednesday)
	note := "  long walk  "
	skewed := wednesday.Add(2 * time.Minute).In(time.FixedZone("UTC+3", 3*3600))

	logged, err := f.moods.LogMood(f.ctx, f.clerkID, &LogMoodRequest{MoodType: " Calm ", Intensity: 4, Note: &note, LoggedAt: &skewed})
	require.NoError(t, err)

	assert.Equal(t, mood.Calm, logged.Entry.MoodType)
	assert.Equal(t, f.userID, logged.Entry.UserID)
	assert.Equal(t, time.UTC, logged.Entry.LoggedAt.Location())
	require.NotNil(t, logged.Entry.Note)
	assert.Equal(t, "long walk", *logged.Entry.Note)
	require.NotNil(t, logged.Streak)
	assert.Equal(t, 1, logged.Streak.CurrentStreak)

	now, err := f.moods.LogMood(f.ctx, f.clerkID, &LogMoodRequest{MoodType: "happy", Intensity: 7})
	require.NoError(t, err)
	assert.Equal(t, wednesday, now.Entry.LoggedAt)
}

func TestLogMoodProvisionsUser(t *testing.T) {
	f := newFixture(t, wednesday)

	logged, err := f.moods.LogMood(f.ctx, "user_new", &LogMoodRequest{MoodType: "sad", Intensity: 2})
	require.NoError(t, err)

	id, err := f.moods.ResolveUser(f.ctx, "user_new")
	require.NoError(t, err)
	assert.Equal(t, id, logged.Entry.UserID)
}

func TestDeleteMoodLog(t *testing.T) {
	f := newFixture(t, wednesday)
	logged := f.log(mood.Happy, 8, on(3, 20, 9))

	err := f.moods.DeleteMoodLog(f.ctx, "user_stranger", logged.Entry.ID)
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)

	require.NoError(t, f.moods.DeleteMoodLog(f.ctx, f.clerkID, logged.Entry.ID))

	err = f.moods.DeleteMoodLog(f.ctx, f.clerkID, logged.Entry.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	err = f.moods.DeleteMoodLog(f.ctx, f.clerkID, uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	st, _ := f.db.GetStreak(f.ctx, f.userID)
	assert.Equal(t, 1, st.CurrentStreak, "delete leaves the streak alone")
}

func TestListRecent(t *testing.T) {
	f := newFixture(t, wednesday)
	for i := 0; i < 25; i++ {
		f.insert(mood.Neutral, 5, wednesday.Add(-time.Duration(i)*time.Hour))
	}

	page, err := f.moods.ListRecent(f.ctx, f.clerkID, 0)
	require.NoError(t, err)
	assert.Len(t, page, defaultRecent)
	assert.Equal(t, wednesday, page[0].LoggedAt)

	all, err := f.moods.ListRecent(f.ctx, f.clerkID, 1000)
	require.NoError(t, err)
	assert.Len(t, all, 25)

	empty := newFixture(t, wednesday)
	none, err := empty.moods.ListRecent(empty.ctx, empty.clerkID, 5)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestUserServiceDelete(t *testing.T) {
	f := newFixture(t, wednesday)
	f.log(mood.Happy, 8, on(3, 20, 9))

	require.NoError(t, f.users.DeleteUserByClerkID(f.ctx, f.clerkID))
	require.NoError(t, f.users.DeleteUserByClerkID(f.ctx, f.clerkID), "unknown user is ignored")

	_, err := f.moods.ResolveUser(f.ctx, f.clerkID)
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)

	_, err = f.users.CreateUser(f.ctx, "")
	assert.Error(t, err)
}
