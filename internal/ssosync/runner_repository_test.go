package ssosync

import (
	"context"
	"fmt"
	"testing"

	"github.com/Payphone-Digital/customer-service/internal/constants"
	"github.com/Payphone-Digital/customer-service/internal/model"
	"github.com/Payphone-Digital/customer-service/internal/repository"
	"github.com/Payphone-Digital/customer-service/internal/testutil"
	"github.com/Payphone-Digital/customer-service/pkg/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// futureWatermark leaves sso_id IS NULL as the only reason a row matches.
const futureWatermark = "2099-01-01 00:00:00.000"

type dbFixture struct {
	customers *repository.CustomerRepository
	settings  *repository.SettingRepository
	pusher    *fakePusher
	runner    *Runner
}

func newDBFixture(t *testing.T, rows, timespan, limit, refresh int) *dbFixture {
	t.Helper()
	ctx := context.Background()
	db := testutil.NewDB(t)

	f := &dbFixture{
		customers: repository.NewCustomerRepository(db),
		settings:  repository.NewSettingRepository(db),
		pusher:    &fakePusher{},
	}
	require.NoError(t, f.settings.UpsertMany(ctx, map[string]string{
		constants.SettingSSOProcess:       "1",
		constants.SettingSSOTimespan:      fmt.Sprint(timespan),
		constants.SettingSSODataLimit:     fmt.Sprint(limit),
		constants.SettingSSORefreshConfig: fmt.Sprint(refresh),
		constants.SettingSSOLastUpdate:    futureWatermark,
	}))
	for i := 0; i < rows; i++ {
		c := &model.CustomerProfile{Phone: fmt.Sprintf("0812000%04d", i), Name: "Sari", IsActive: true, TokenVersion: 1}
		require.NoError(t, f.customers.Create(ctx, c))
	}

	f.runner = NewRunner(f.settings, f.customers, f.pusher, WithClock(clock.Fixed{T: fixedNow}))
	require.NoError(t, f.runner.LoadConfig(ctx))
	return f
}

func (f *dbFixture) linked(t *testing.T) map[uint]string {
	t.Helper()
	out := map[uint]string{}
	for id := uint(1); id <= 10; id++ {
		c, err := f.customers.GetByIDWithDeleted(context.Background(), id)
		if err != nil {
			continue
		}
		if c.SSOID != nil {
			out[id] = *c.SSOID
		}
	}
	return out
}

func TestRunner_Repository_LinkingDoesNotSkipRows(t *testing.T) {
	f := newDBFixture(t, 4, 1, 2, 1000)

	tick(f.runner, 1)
	assert.Equal(t, []uint{1, 2}, f.pusher.pushed)
	assert.Empty(t, f.linked(t), "links are stored when the pass completes")

	tick(f.runner, 1)
	assert.Equal(t, []uint{1, 2, 3, 4}, f.pusher.pushed)

	snap := f.runner.Snapshot()
	assert.EqualValues(t, 1, snap.PassesDone)
	assert.Zero(t, snap.Cursor.Offset)
	assert.Equal(t, map[uint]string{1: "sso-1", 2: "sso-2", 3: "sso-3", 4: "sso-4"}, f.linked(t))
}

func TestRunner_Repository_ThreeRowsTwoPages(t *testing.T) {
	f := newDBFixture(t, 3, 5, 2, 10)
	ctx := context.Background()

	tick(f.runner, 5)
	snap := f.runner.Snapshot()
	assert.Equal(t, []uint{1, 2}, f.pusher.pushed)
	assert.Equal(t, 2, snap.Cursor.Offset)
	assert.EqualValues(t, 3, snap.Cursor.TotalData)

	tick(f.runner, 5)
	assert.Equal(t, []uint{1, 2, 3}, f.pusher.pushed)

	snap = f.runner.Snapshot()
	assert.Zero(t, snap.Cursor.Offset)
	assert.EqualValues(t, 1, snap.PassesDone)

	values, err := f.settings.GetValues(ctx, []string{constants.SettingSSOLastUpdate})
	require.NoError(t, err)
	assert.Equal(t, "2024-05-17 10:04:05.678", values[constants.SettingSSOLastUpdate])
	assert.Len(t, f.linked(t), 3)
}
