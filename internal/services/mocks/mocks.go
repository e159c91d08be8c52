// Package mocks provides testify mocks of the services collaborators.
package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"github.com/Lllllllleong/suratflow/internal/models"
)

// MockPersistence implements services.Persistence for testing.
type MockPersistence struct {
	mock.Mock
}

func (m *MockPersistence) Insert(ctx context.Context, collection string, rec *models.Surat) (*models.Surat, error) {
	args := m.Called(ctx, collection, rec)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Surat), args.Error(1)
}

func (m *MockPersistence) Update(ctx context.Context, collection string, id int64, rec *models.Surat) (*models.Surat, error) {
	args := m.Called(ctx, collection, id, rec)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Surat), args.Error(1)
}

func (m *MockPersistence) Exists(ctx context.Context, collection, field, value string) (bool, error) {
	args := m.Called(ctx, collection, field, value)
	return args.Bool(0), args.Error(1)
}

func (m *MockPersistence) GetByID(ctx context.Context, collection string, id int64) (*models.Surat, error) {
	args := m.Called(ctx, collection, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Surat), args.Error(1)
}

func (m *MockPersistence) Delete(ctx context.Context, collection string, id int64) (bool, error) {
	args := m.Called(ctx, collection, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockPersistence) List(ctx context.Context, collection string) ([]models.Surat, error) {
	args := m.Called(ctx, collection)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Surat), args.Error(1)
}

// MockStorage implements services.Storage for testing.
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Upload(ctx context.Context, bucket, filename string, data []byte) (string, error) {
	args := m.Called(ctx, bucket, filename, data)
	return args.String(0), args.Error(1)
}

func (m *MockStorage) Delete(ctx context.Context, bucket, filename string) (bool, error) {
	args := m.Called(ctx, bucket, filename)
	return args.Bool(0), args.Error(1)
}

// MockNotifier implements services.Notifier for testing.
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, ev models.SuratEvent) error {
	args := m.Called(ctx, ev)
	return args.Error(0)
}

// MockPegawaiFinder implements services.PegawaiFinder for testing.
type MockPegawaiFinder struct {
	mock.Mock
}

func (m *MockPegawaiFinder) FindPegawaiByNIP(ctx context.Context, nip string) (*models.Pegawai, error) {
	args := m.Called(ctx, nip)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Pegawai), args.Error(1)
}

// MockObjectStore implements services.ObjectStore for testing.
type MockObjectStore struct {
	mock.Mock
}

func (m *MockObjectStore) Open(ctx context.Context, bucket, name string) (io.ReadCloser, error) {
	args := m.Called(ctx, bucket, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func (m *MockObjectStore) Replace(ctx context.Context, bucket, name string, data []byte, generation int64) error {
	args := m.Called(ctx, bucket, name, data, generation)
	return args.Error(0)
}

func (m *MockObjectStore) Delete(ctx context.Context, bucket, name string) (bool, error) {
	args := m.Called(ctx, bucket, name)
	return args.Bool(0), args.Error(1)
}
