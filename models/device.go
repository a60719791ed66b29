// File: waymate/models/device.go
package models

import "time"

type Device struct {
	DeviceID   string    `bson:"device_id" json:"device_id"`
	DeviceName string    `bson:"device_name" json:"device_name"`
	IP         string    `bson:"ip" json:"ip"`
	LastLogin  time.Time `bson:"last_login" json:"last_login"`
	TokenHash  string    `bson:"token_hash" json:"-"`
}
