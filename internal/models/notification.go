package models

import "time"

type Notification struct {
	ID      int64     `json:"id_notificacion"`
	UserID  int64     `json:"id_usuario"`
	Type    string    `json:"tipo"`
	Title   string    `json:"titulo"`
	Message *string   `json:"mensaje"`
	Link    *string   `json:"link"`
	At      time.Time `json:"fecha"`
	Read    bool      `json:"leida"`
}

type NotificationConfig struct {
	UserID  int64  `json:"id_usuario,omitempty"`
	Type    string `json:"tipo"`
	Enabled bool   `json:"activo"`
}

// NotificationQuery maps to the ?leida=&limit= filters of the listing endpoint.
type NotificationQuery struct {
	Read  *bool
	Limit int
}
