package core

import (
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hospitalcore/internal/infra/persistence/memory"
	"hospitalcore/internal/infra/persistence/sqlite"
	"hospitalcore/pkg/domain"
)

func TestOpenPersistentStoreMemory(t *testing.T) {
	store, err := OpenPersistentStore(context.Background(), StorageConfig{Driver: StorageMemory}, nil)
	require.NoError(t, err)
	assert.IsType(t, &memory.Store{}, store)
}

func TestOpenPersistentStoreDefaultsToSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "hospital.db")
	store, err := OpenPersistentStore(context.Background(), StorageConfig{SQLitePath: path}, nil)
	require.NoError(t, err)
	require.IsType(t, &sqlite.Store{}, store)
	require.NoError(t, store.(io.Closer).Close())
	assert.FileExists(t, path)
}

func TestOpenPersistentStoreUnknownDriver(t *testing.T) {
	_, err := OpenPersistentStore(context.Background(), StorageConfig{Driver: "mongo"}, nil)
	require.ErrorContains(t, err, "unknown storage driver mongo")
}

func TestSQLiteBackedServiceSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "hospital.db")
	cfg := StorageConfig{Driver: StorageSQLite, SQLitePath: path}

	store, err := OpenPersistentStore(ctx, cfg, nil)
	require.NoError(t, err)
	svc := NewService(store, WithClock(fixedClock()))
	h, _, err := svc.CreateHospital(ctx, newHospital(t, "Hospital San Martín Central"))
	require.NoError(t, err)
	dept, _, err := svc.CreateDepartment(ctx, newDepartment(t, "Neurología", domain.SpecialtyNeurology), h.ID())
	require.NoError(t, err)
	room, _, err := svc.CreateRoom(ctx, newRoom(t, "S-201", dept.ID()))
	require.NoError(t, err)
	m, _, err := svc.RegisterPhysician(ctx, newPhysician(t, "Andrés", "Álvarez", "30888999", "MP-45678", domain.SpecialtyNeurology), dept.ID())
	require.NoError(t, err)
	p, _, _, err := svc.AdmitPatient(ctx, newPatient(t, "María", "López", "40222111"), h.ID())
	require.NoError(t, err)
	_, _, err = svc.ScheduleAppointment(ctx, (&ward{patient: p, physician: m, room: room}).request(testNow.Add(time.Hour)))
	require.NoError(t, err)
	require.NoError(t, svc.Close())

	reopened, err := OpenPersistentStore(ctx, cfg, nil)
	require.NoError(t, err)
	svc = NewService(reopened, WithClock(fixedClock()))
	t.Cleanup(func() { _ = svc.Close() })

	sum, err := svc.Summary(ctx, h.ID())
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Rooms)
	assert.Equal(t, 1, sum.Physicians)
	assert.Equal(t, 1, sum.Patients)
	upcoming, err := svc.UpcomingAppointments(ctx)
	require.NoError(t, err)
	assert.Len(t, upcoming, 1)
}
