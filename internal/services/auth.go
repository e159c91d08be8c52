package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/Lllllllleong/suratflow/internal/logging"
	"github.com/Lllllllleong/suratflow/internal/models"
	"golang.org/x/crypto/bcrypt"
)

const (
	msgLoginOK       = "Login berhasil"
	msgNIPNotFound   = "NIP tidak ditemukan"
	msgWrongPassword = "NIP atau Password salah"
	msgLoginFieldNIP = "NIP harus diisi"
	msgLoginFieldPwd = "Password harus diisi"
)

// AuthService signs employees in by NIP and password.
type AuthService struct {
	finder PegawaiFinder
}

// NewAuthService returns an AuthService looking accounts up with finder.
func NewAuthService(finder PegawaiFinder) *AuthService {
	return &AuthService{finder: finder}
}

// Login checks the credentials. The response is always populated; a lookup
// failure is additionally returned as err.
func (s *AuthService) Login(ctx context.Context, nip, password string) (models.LoginResponse, error) {
	nip = strings.TrimSpace(nip)
	switch {
	case nip == "":
		return models.LoginResponse{Message: msgLoginFieldNIP}, nil
	case password == "":
		return models.LoginResponse{Message: msgLoginFieldPwd}, nil
	}

	pegawai, err := s.finder.FindPegawaiByNIP(ctx, nip)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to look up pegawai", "nip", nip, logging.ErrKey, err)
		return models.LoginResponse{Message: "Terjadi kesalahan: " + err.Error()}, err
	}
	if pegawai == nil {
		return models.LoginResponse{Message: msgNIPNotFound}, nil
	}

	if err := bcrypt.CompareHashAndPassword([]byte(pegawai.PasswordHash), []byte(password)); err != nil {
		if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			slog.WarnContext(ctx, "Stored password hash is unusable", "nip", nip, logging.ErrKey, err)
		}
		return models.LoginResponse{Message: msgWrongPassword}, nil
	}
	return models.LoginResponse{Success: true, Pegawai: pegawai.UserData(), Message: msgLoginOK}, nil
}

// HashPassword produces the hash stored in pegawai.password_hash.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
