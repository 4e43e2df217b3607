package entities

type Role string

const (
	RoleGuest   Role = "guest"
	RolePatient Role = "patient"
	RoleAdmin   Role = "admin"
)

type User struct {
	Username     string `json:"username" yaml:"username"`
	PasswordHash string `json:"-" yaml:"-"`
	Role         Role   `json:"role" yaml:"role"`
	PatientID    string `json:"patient_id,omitempty" yaml:"patient_id"`
	DisplayName  string `json:"display_name" yaml:"display_name"`
}
