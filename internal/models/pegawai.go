package models

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Pegawai is an employee account in the pegawai collection.
type Pegawai struct {
	NIP          string `firestore:"nip"`
	Name         string `firestore:"nama"`
	Role         string `firestore:"role"`
	Email        string `firestore:"email"`
	PasswordHash string `firestore:"password_hash"`
}

// UserData is the session view of a signed-in employee.
type UserData struct {
	NIP   string `json:"nip"`
	Name  string `json:"nama"`
	Role  string `json:"role"`
	Email string `json:"email"`
}

// IsAdmin reports whether the user may change, dispose or delete records.
func (u *UserData) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// UserData returns the session view of the employee.
func (p *Pegawai) UserData() *UserData {
	return &UserData{NIP: p.NIP, Name: p.Name, Role: p.Role, Email: p.Email}
}
