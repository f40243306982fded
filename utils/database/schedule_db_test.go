package database

import (
	"path/filepath"
	"testing"
	"time"

	"discord-role-scheduler/model"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := InitSchedulerDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleSchedule(id string, nextRunAt time.Time) model.ScheduleRecord {
	return model.ScheduleRecord{
		ID:           id,
		GuildID:      "g1",
		ActorID:      "actor",
		Action:       model.ActionAssign,
		RoleID:       "r1",
		TargetSpec:   "<@100000000000000001>",
		ResolvedKind: model.TargetUsers,
		ScheduleType: model.ScheduleDaily,
		Hour:         9,
		NextRunAt:    nextRunAt,
		Status:       model.ScheduleStatusActive,
		CreatedAt:    time.Now().UTC(),
	}
}

func TestScheduleRoundTrip(t *testing.T) {
	db := testDB(t)
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	require.NoError(t, AddSchedule(db, sampleSchedule("s1", now)))

	got, err := GetSchedule(db, "s1")
	require.NoError(t, err)
	assert.Equal(t, "g1", got.GuildID)
	assert.Equal(t, model.ActionAssign, got.Action)
	assert.True(t, got.NextRunAt.Equal(now))
	assert.Nil(t, got.LastRunAt)
}

func TestGetDueSchedulesFiltersStatusAndTime(t *testing.T) {
	db := testDB(t)
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	require.NoError(t, AddSchedule(db, sampleSchedule("due", now.Add(-time.Minute))))
	require.NoError(t, AddSchedule(db, sampleSchedule("exactly-now", now)))
	require.NoError(t, AddSchedule(db, sampleSchedule("future", now.Add(time.Hour))))

	cancelled := sampleSchedule("cancelled", now.Add(-time.Hour))
	cancelled.Status = model.ScheduleStatusCancelled
	require.NoError(t, AddSchedule(db, cancelled))

	due, err := GetDueSchedules(db, now)
	require.NoError(t, err)
	ids := make([]string, 0, len(due))
	for _, record := range due {
		ids = append(ids, record.ID)
	}
	assert.ElementsMatch(t, []string{"due", "exactly-now"}, ids)
}

func TestMarkScheduleFired(t *testing.T) {
	db := testDB(t)
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	next := now.AddDate(0, 0, 1)

	require.NoError(t, AddSchedule(db, sampleSchedule("s1", now)))
	require.NoError(t, MarkScheduleFired(db, "s1", now, next, false))

	got, err := GetSchedule(db, "s1")
	require.NoError(t, err)
	require.NotNil(t, got.LastRunAt)
	assert.True(t, got.LastRunAt.Equal(now))
	assert.True(t, got.NextRunAt.Equal(next))
	assert.Equal(t, model.ScheduleStatusActive, got.Status)

	// Completing removes it from the due set for good.
	require.NoError(t, MarkScheduleFired(db, "s1", next, next, true))
	due, err := GetDueSchedules(db, next.Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, due)
}

func TestCancelScheduleOnlyOnce(t *testing.T) {
	db := testDB(t)
	require.NoError(t, AddSchedule(db, sampleSchedule("s1", time.Now().UTC())))

	require.NoError(t, CancelSchedule(db, "s1"))
	assert.Error(t, CancelSchedule(db, "s1"), "second cancel finds no active record")

	// Cancelled records are retained and still deletable.
	require.NoError(t, DeleteSchedule(db, "s1"))
	assert.Error(t, DeleteSchedule(db, "s1"))
}

func TestListActiveSchedulesOrdersBySoonest(t *testing.T) {
	db := testDB(t)
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	require.NoError(t, AddSchedule(db, sampleSchedule("later", now.Add(2*time.Hour))))
	require.NoError(t, AddSchedule(db, sampleSchedule("sooner", now.Add(time.Hour))))

	records, err := ListActiveSchedules(db, "g1")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "sooner", records[0].ID)
	assert.Equal(t, "later", records[1].ID)
}

func TestTempRoleLifecycle(t *testing.T) {
	db := testDB(t)
	now := time.Now().UTC()

	id, err := AddTempRole(db, model.TemporaryRoleRecord{
		GuildID:    "g1",
		UserID:     "u1",
		RoleID:     "r1",
		AssignedAt: now,
		ExpiresAt:  now.Add(time.Hour),
		Status:     model.TempRoleStatusActive,
	})
	require.NoError(t, err)

	record, err := GetActiveTempRole(db, "g1", "u1", "r1")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, id, record.ID)

	// Renewal moves the expiry on the same record.
	renewed := now.Add(3 * time.Hour)
	require.NoError(t, RenewTempRole(db, id, renewed))
	record, err = GetActiveTempRole(db, "g1", "u1", "r1")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.WithinDuration(t, renewed, record.ExpiresAt, time.Second)

	// Only the first removal claims the record.
	claimed, err := MarkTempRoleRemoved(db, id)
	require.NoError(t, err)
	assert.True(t, claimed)
	claimed, err = MarkTempRoleRemoved(db, id)
	require.NoError(t, err)
	assert.False(t, claimed)

	record, err = GetActiveTempRole(db, "g1", "u1", "r1")
	require.NoError(t, err)
	assert.Nil(t, record)
}

func TestGetDueTempRoles(t *testing.T) {
	db := testDB(t)
	now := time.Now().UTC()

	_, err := AddTempRole(db, model.TemporaryRoleRecord{
		GuildID: "g1", UserID: "expired", RoleID: "r1",
		AssignedAt: now.Add(-2 * time.Hour), ExpiresAt: now.Add(-time.Minute),
		Status: model.TempRoleStatusActive,
	})
	require.NoError(t, err)
	_, err = AddTempRole(db, model.TemporaryRoleRecord{
		GuildID: "g1", UserID: "current", RoleID: "r1",
		AssignedAt: now, ExpiresAt: now.Add(time.Hour),
		Status: model.TempRoleStatusActive,
	})
	require.NoError(t, err)

	due, err := GetDueTempRoles(db, now)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "expired", due[0].UserID)
}

func TestListTempRolesFilterByUser(t *testing.T) {
	db := testDB(t)
	now := time.Now().UTC()

	for _, userID := range []string{"u1", "u2"} {
		_, err := AddTempRole(db, model.TemporaryRoleRecord{
			GuildID: "g1", UserID: userID, RoleID: "r1",
			AssignedAt: now, ExpiresAt: now.Add(time.Hour),
			Status: model.TempRoleStatusActive,
		})
		require.NoError(t, err)
	}

	all, err := ListTempRoles(db, "g1", "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	one, err := ListTempRoles(db, "g1", "u2")
	require.NoError(t, err)
	require.Len(t, one, 1)
	assert.Equal(t, "u2", one[0].UserID)
}
