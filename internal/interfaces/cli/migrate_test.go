package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockMigrator struct {
	mock.Mock
}

func (m *mockMigrator) Up(dbURL, path string) error {
	return m.Called(dbURL, path).Error(0)
}

func (m *mockMigrator) Down(dbURL, path string, steps int) error {
	return m.Called(dbURL, path, steps).Error(0)
}

func (m *mockMigrator) Status(dbURL, path string) (uint, bool, error) {
	args := m.Called(dbURL, path)
	return args.Get(0).(uint), args.Bool(1), args.Error(2)
}

func (m *mockMigrator) Force(dbURL, path string, version int) error {
	return m.Called(dbURL, path, version).Error(0)
}

func withMigrator(t *testing.T) *mockMigrator {
	t.Helper()
	m := new(mockMigrator)
	prev := DefaultMigrator
	DefaultMigrator = m
	t.Cleanup(func() { DefaultMigrator = prev })
	return m
}

func TestMigrateUp(t *testing.T) {
	m := withMigrator(t)
	m.On("Up", mock.MatchedBy(func(u string) bool { return len(u) > 11 && u[:11] == "postgres://" }), "db/migrations").Return(nil)

	out, err := run(t, "migrate", "up", "--path", "db/migrations")
	require.NoError(t, err)
	assert.Contains(t, out, "OK: schema is up to date")
	m.AssertExpectations(t)
}

func TestMigrateDown(t *testing.T) {
	m := withMigrator(t)
	m.On("Down", mock.Anything, mock.Anything, 2).Return(nil)

	out, err := run(t, "migrate", "down", "--steps", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "rolled back 2")

	m2 := withMigrator(t)
	m2.On("Down", mock.Anything, mock.Anything, 1).Return(errors.New("no migrations to roll back"))
	_, err = run(t, "migrate", "down")
	assert.EqualError(t, err, "no migrations to roll back")
}

func TestMigrateStatus(t *testing.T) {
	m := withMigrator(t)
	m.On("Status", mock.Anything, mock.Anything).Return(uint(2), true, nil)

	out, err := run(t, "migrate", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "version 2 (dirty")

	out, err = run(t, "migrate", "status", "-o", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"version": 2, "dirty": true}`, out)
}

func TestMigrateForce(t *testing.T) {
	m := withMigrator(t)
	m.On("Force", mock.Anything, mock.Anything, -1).Return(nil)

	_, err := run(t, "migrate", "force", "--", "-1")
	require.NoError(t, err)
	m.AssertExpectations(t)

	_, err = run(t, "migrate", "force", "abc")
	assert.Error(t, err)
	_, err = run(t, "migrate", "force")
	assert.Error(t, err)
}

//Personal.AI order the ending
