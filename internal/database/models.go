package database

import "time"

// CallLog registro del resultado de una llamada individual
type CallLog struct {
	ID          int64     `db:"id" json:"id"`
	ContactID   int64     `db:"contact_id" json:"contact_id"`
	Telefono    string    `db:"telefono" json:"telefono"`
	Disposition string    `db:"disposition" json:"disposition"`
	Interesado  bool      `db:"interesado" json:"interesado"`
	Duracion    int       `db:"duracion" json:"duracion"` // segundos
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Disposiciones reconocidas en el log de llamadas
const (
	DispositionConnected = "CONNECTED"
	DispositionNoAnswer  = "NO_ANSWER"
	DispositionVoicemail = "VOICEMAIL"
	DispositionBusy      = "BUSY"
	DispositionFailed    = "FAILED"
)

// User usuario del API
type User struct {
	ID           int    `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
	Role         string `json:"role"`
	FullName     string `json:"full_name"`
	Active       bool   `json:"active"`
}
