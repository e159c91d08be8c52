package services

import (
	"context"
	"errors"
	"testing"

	"github.com/Lllllllleong/suratflow/internal/models"
	"github.com/Lllllllleong/suratflow/internal/services/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func testPegawai(t *testing.T, password string) *models.Pegawai {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &models.Pegawai{
		NIP:          "198001012005011001",
		Name:         "Siti Aminah",
		Role:         models.RoleAdmin,
		Email:        "siti@example.go.id",
		PasswordHash: string(hash),
	}
}

func TestLogin(t *testing.T) {
	finder := new(mocks.MockPegawaiFinder)
	finder.On("FindPegawaiByNIP", mock.Anything, "198001012005011001").Return(testPegawai(t, "rahasia"), nil)
	finder.On("FindPegawaiByNIP", mock.Anything, "000").Return(nil, nil)
	finder.On("FindPegawaiByNIP", mock.Anything, "111").Return(nil, errors.New("deadline exceeded"))
	auth := NewAuthService(finder)
	ctx := context.Background()

	resp, err := auth.Login(ctx, " 198001012005011001 ", "rahasia")
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "Login berhasil", resp.Message)
	require.NotNil(t, resp.Pegawai)
	assert.Equal(t, "Siti Aminah", resp.Pegawai.Name)
	assert.True(t, resp.Pegawai.IsAdmin())

	resp, err = auth.Login(ctx, "198001012005011001", "salah")
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Nil(t, resp.Pegawai)
	assert.Equal(t, "NIP atau Password salah", resp.Message)

	resp, _ = auth.Login(ctx, "000", "rahasia")
	assert.Equal(t, "NIP tidak ditemukan", resp.Message)

	resp, err = auth.Login(ctx, "111", "rahasia")
	assert.Error(t, err)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "deadline exceeded")
}

func TestLoginRequiresCredentials(t *testing.T) {
	finder := new(mocks.MockPegawaiFinder)
	auth := NewAuthService(finder)

	resp, err := auth.Login(context.Background(), "  ", "x")
	require.NoError(t, err)
	assert.Equal(t, "NIP harus diisi", resp.Message)

	resp, _ = auth.Login(context.Background(), "123", "")
	assert.Equal(t, "Password harus diisi", resp.Message)

	finder.AssertNotCalled(t, "FindPegawaiByNIP", mock.Anything, mock.Anything)
}

func TestLoginWithUnusableHash(t *testing.T) {
	finder := new(mocks.MockPegawaiFinder)
	finder.On("FindPegawaiByNIP", mock.Anything, "123").Return(&models.Pegawai{NIP: "123", PasswordHash: "plaintext"}, nil)

	resp, err := NewAuthService(finder).Login(context.Background(), "123", "plaintext")
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, "NIP atau Password salah", resp.Message)
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("rahasia")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("rahasia")))
}
