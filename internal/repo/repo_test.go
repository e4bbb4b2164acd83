package repo

import (
	"context"
	"testing"
	"time"

	"feedhub/internal/apperr"
	"feedhub/internal/db/dbtest"
	"feedhub/internal/models"
	"feedhub/internal/scheduling"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func ptr[T any](v T) *T { return &v }

type fixture struct {
	db     *gorm.DB
	stores *Stores
	ent    *models.Enterprise
	branch *models.Branch
	model  *models.DeviceModel
	device *models.Device
}

func newFixture(t *testing.T, p Policies) *fixture {
	t.Helper()
	ctx := context.Background()
	gdb := dbtest.Open(t)
	s := New(gdb, p)

	f := &fixture{db: gdb, stores: s}
	f.ent = &models.Enterprise{INN: "7707083893", OGRN: "1027700132195", KPP: "773601001", Name: "Ромашка", Address: "Москва"}
	require.NoError(t, s.Enterprises.Create(ctx, f.ent))
	f.branch = &models.Branch{INN: f.ent.INN, Address: "Москва, ул. Ленина 1"}
	require.NoError(t, s.Branches.Create(ctx, f.branch))
	f.model = &models.DeviceModel{Name: "Feeder-2000"}
	require.NoError(t, s.DeviceModels.Create(ctx, f.model))
	f.device = &models.Device{ModelID: f.model.ID, FilialID: f.branch.ID, SerialNumber: "SN-001"}
	require.NoError(t, s.Devices.Create(ctx, f.device))
	return f
}

func (f *fixture) task(t *testing.T, scheduleID *uint) *models.TaskList {
	t.Helper()
	task := &models.TaskList{
		DeviceID:      f.device.ID,
		Cmd:           "feed 20g",
		Timing:        time.Date(2024, 6, 4, 9, 0, 0, 0, time.UTC),
		IsRegular:     scheduleID != nil,
		RegularTimeID: scheduleID,
	}
	require.NoError(t, f.stores.Tasks.Create(context.Background(), task))
	return task
}

func (f *fixture) schedule(t *testing.T) *models.RegularSchedule {
	t.Helper()
	r := &models.RegularSchedule{Period: scheduling.Weekly, Days: datatypes.JSONSlice[int]{1, 3, 5}, Timing: datatypes.NewTime(8, 0, 0, 0)}
	require.NoError(t, f.stores.Schedules.Create(context.Background(), r))
	return r
}

func countRows(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

func TestDevice_DuplicateSerialIsIntegrityViolation(t *testing.T) {
	f := newFixture(t, Policies{})

	dup := &models.Device{ModelID: f.model.ID, FilialID: f.branch.ID, SerialNumber: "SN-001"}
	err := f.stores.Devices.Create(context.Background(), dup)
	assert.ErrorIs(t, err, apperr.ErrIntegrity)
	assert.EqualValues(t, 1, countRows(t, f.db, &models.Device{}))
}

func TestEnterprise_DuplicateUniqueFieldsAreIntegrityViolations(t *testing.T) {
	cases := []struct {
		name string
		ent  models.Enterprise
	}{
		{"inn", models.Enterprise{INN: "7707083893", OGRN: "1037739010891", KPP: "770201001", Name: "Лютик", Address: "Тверь"}},
		{"ogrn", models.Enterprise{INN: "5001012345", OGRN: "1027700132195", KPP: "500101001", Name: "Лютик", Address: "Тверь"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, Policies{})
			dup := tc.ent
			err := f.stores.Enterprises.Create(context.Background(), &dup)
			assert.ErrorIs(t, err, apperr.ErrIntegrity)
			assert.EqualValues(t, 1, countRows(t, f.db, &models.Enterprise{}))

			got, err := f.stores.Enterprises.Get(context.Background(), f.ent.INN)
			require.NoError(t, err)
			assert.Equal(t, "Ромашка", got.Name)
		})
	}
}

func TestDevice_MissingReferences(t *testing.T) {
	f := newFixture(t, Policies{})
	ctx := context.Background()

	err := f.stores.Devices.Create(ctx, &models.Device{ModelID: 999, FilialID: f.branch.ID, SerialNumber: "SN-002"})
	assert.ErrorIs(t, err, apperr.ErrReferential)
	assert.Contains(t, err.Error(), "model_id 999")

	err = f.stores.Devices.Create(ctx, &models.Device{ModelID: f.model.ID, FilialID: 999, SerialNumber: "SN-002"})
	assert.ErrorIs(t, err, apperr.ErrReferential)

	_, err = f.stores.Devices.Update(ctx, f.device.ID, models.DeviceUpdate{FilialID: ptr(uint(42))})
	assert.ErrorIs(t, err, apperr.ErrReferential)

	got, err := f.stores.Devices.Get(ctx, f.device.ID)
	require.NoError(t, err)
	assert.Equal(t, f.branch.ID, got.FilialID)
}

func TestBranch_RequiresEnterprise(t *testing.T) {
	f := newFixture(t, Policies{})
	err := f.stores.Branches.Create(context.Background(), &models.Branch{INN: "500100732259", Address: "x"})
	assert.ErrorIs(t, err, apperr.ErrReferential)
}

func TestEnterprise_DeleteCascades(t *testing.T) {
	f := newFixture(t, Policies{})
	f.task(t, nil)
	f.task(t, nil)

	require.NoError(t, f.stores.Enterprises.Delete(context.Background(), f.ent.INN))

	assert.Zero(t, countRows(t, f.db, &models.Enterprise{}))
	assert.Zero(t, countRows(t, f.db, &models.Branch{}))
	assert.Zero(t, countRows(t, f.db, &models.Device{}))
	assert.Zero(t, countRows(t, f.db, &models.TaskList{}))
	// модели устройств не принадлежат предприятию
	assert.EqualValues(t, 1, countRows(t, f.db, &models.DeviceModel{}))
}

func TestEnterprise_UpdateINNMovesBranches(t *testing.T) {
	f := newFixture(t, Policies{})
	ctx := context.Background()

	e, err := f.stores.Enterprises.Update(ctx, f.ent.INN, models.EnterpriseUpdate{INN: ptr("500100732259")})
	require.NoError(t, err)
	assert.Equal(t, "500100732259", e.INN)

	branches, err := f.stores.Branches.ListByEnterprise(ctx, "500100732259")
	require.NoError(t, err)
	require.Len(t, branches, 1)
	assert.Equal(t, f.branch.ID, branches[0].ID)

	_, err = f.stores.Enterprises.Get(ctx, "7707083893")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestEnterprise_UpdateInvalidLeavesRow(t *testing.T) {
	f := newFixture(t, Policies{})
	ctx := context.Background()

	_, err := f.stores.Enterprises.Update(ctx, f.ent.INN, models.EnterpriseUpdate{KPP: ptr("1")})
	assert.ErrorIs(t, err, apperr.ErrData)

	got, err := f.stores.Enterprises.Get(ctx, f.ent.INN)
	require.NoError(t, err)
	assert.Equal(t, "773601001", got.KPP)
}

func TestDevice_DeleteRemovesTasks(t *testing.T) {
	f := newFixture(t, Policies{})
	f.task(t, nil)

	require.NoError(t, f.stores.Devices.Delete(context.Background(), f.device.ID))
	assert.Zero(t, countRows(t, f.db, &models.TaskList{}))
	assert.Zero(t, countRows(t, f.db, &models.Device{}))
}

func TestDevice_DeleteRestrict(t *testing.T) {
	f := newFixture(t, Policies{Device: Restrict})
	f.task(t, nil)

	err := f.stores.Devices.Delete(context.Background(), f.device.ID)
	assert.ErrorIs(t, err, apperr.ErrReferenceInUse)
	assert.EqualValues(t, 1, countRows(t, f.db, &models.Device{}))
}

func TestDeviceModel_DeleteCascades(t *testing.T) {
	f := newFixture(t, Policies{})
	f.task(t, nil)

	require.NoError(t, f.stores.DeviceModels.Delete(context.Background(), f.model.ID))
	assert.Zero(t, countRows(t, f.db, &models.Device{}))
	assert.Zero(t, countRows(t, f.db, &models.TaskList{}))
	assert.EqualValues(t, 1, countRows(t, f.db, &models.Branch{}))
}

func TestSchedule_DeletePolicies(t *testing.T) {
	cases := []struct {
		policy    DeletePolicy
		wantErr   error
		wantTasks int64
	}{
		{Cascade, nil, 0},
		{Orphan, nil, 1},
		{Restrict, apperr.ErrReferenceInUse, 1},
	}
	for _, tc := range cases {
		t.Run(string(tc.policy), func(t *testing.T) {
			f := newFixture(t, Policies{Schedule: tc.policy})
			sched := f.schedule(t)
			task := f.task(t, &sched.ID)

			err := f.stores.Schedules.Delete(context.Background(), sched.ID)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tc.wantTasks, countRows(t, f.db, &models.TaskList{}))

			if tc.policy == Orphan {
				got, err := f.stores.Tasks.Get(context.Background(), task.ID)
				require.NoError(t, err)
				assert.False(t, got.IsRegular)
				assert.Nil(t, got.RegularTimeID)
			}
		})
	}
}

func TestSchedule_NextOccurrences(t *testing.T) {
	f := newFixture(t, Policies{})
	sched := f.schedule(t)

	tuesday := time.Date(2024, 6, 4, 9, 0, 0, 0, time.UTC)
	got, err := f.stores.Schedules.NextOccurrences(context.Background(), sched.ID, tuesday, 2)
	require.NoError(t, err)
	assert.Equal(t, []time.Time{
		time.Date(2024, 6, 5, 8, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 7, 8, 0, 0, 0, time.UTC),
	}, got)
}

func TestSchedule_UpdateRejectsDaysOnDaily(t *testing.T) {
	f := newFixture(t, Policies{})
	sched := f.schedule(t)

	_, err := f.stores.Schedules.Update(context.Background(), sched.ID,
		models.RegularScheduleUpdate{Period: ptr(scheduling.Daily)})
	assert.ErrorIs(t, err, apperr.ErrData)

	_, err = f.stores.Schedules.Update(context.Background(), sched.ID,
		models.RegularScheduleUpdate{Period: ptr(scheduling.Daily), Days: ptr([]int{})})
	require.NoError(t, err)
}

func TestTask_CreateValidation(t *testing.T) {
	f := newFixture(t, Policies{})
	ctx := context.Background()

	err := f.stores.Tasks.Create(ctx, &models.TaskList{DeviceID: "3b241101-e2bb-4255-8caf-4136c566a962", Cmd: "feed", Timing: time.Now()})
	assert.ErrorIs(t, err, apperr.ErrReferential)

	err = f.stores.Tasks.Create(ctx, &models.TaskList{DeviceID: f.device.ID, Cmd: "feed", Timing: time.Now(), IsRegular: true, RegularTimeID: ptr(uint(77))})
	assert.ErrorIs(t, err, apperr.ErrReferential)

	err = f.stores.Tasks.Create(ctx, &models.TaskList{DeviceID: f.device.ID, Cmd: "feed", Timing: time.Now(), IsRegular: true})
	assert.ErrorIs(t, err, apperr.ErrData)

	assert.Zero(t, countRows(t, f.db, &models.TaskList{}))
}

func TestTask_SetStatusAndList(t *testing.T) {
	f := newFixture(t, Policies{})
	ctx := context.Background()
	task := f.task(t, nil)
	assert.Equal(t, scheduling.StatusPending, task.Status)

	got, err := f.stores.Tasks.SetStatus(ctx, task.ID, scheduling.StatusSucceeded)
	require.NoError(t, err)
	assert.Equal(t, scheduling.StatusSucceeded, got.Status)

	_, err = f.stores.Tasks.SetStatus(ctx, task.ID, scheduling.Status("Bogus"))
	assert.ErrorIs(t, err, apperr.ErrData)

	list, err := f.stores.Tasks.ListByDevice(ctx, f.device.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, scheduling.StatusSucceeded, list[0].Status)

	_, err = f.stores.Tasks.ListByDevice(ctx, "3b241101-e2bb-4255-8caf-4136c566a962")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestTask_NextRun(t *testing.T) {
	f := newFixture(t, Policies{})
	ctx := context.Background()
	sched := f.schedule(t)
	regular := f.task(t, &sched.ID)
	oneOff := f.task(t, nil)

	tuesday := time.Date(2024, 6, 4, 9, 0, 0, 0, time.UTC)
	next, ok, err := f.stores.Tasks.NextRun(ctx, regular.ID, tuesday)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, next.Equal(time.Date(2024, 6, 5, 8, 0, 0, 0, time.UTC)), next)

	_, ok, err = f.stores.Tasks.NextRun(ctx, oneOff.ID, tuesday)
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = f.stores.Tasks.NextRun(ctx, "missing", tuesday)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestParseDeletePolicy(t *testing.T) {
	p, err := ParseDeletePolicy("")
	require.NoError(t, err)
	assert.Equal(t, Cascade, p)

	_, err = ParseDeletePolicy("soft")
	assert.Error(t, err)
}
