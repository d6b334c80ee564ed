package server

import "time"

// User is a connection-scoped session identity. Its ID is generated at
// accept time and is unrelated to any account id; Username is the in-chat
// display name, unique only among currently connected users.
type User struct {
	ID          string
	Username    string
	ConnectedAt time.Time
}
