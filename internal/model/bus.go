package model

import "time"

// Bus is one row of the fleet sheet, keyed by the campus bus number.
type Bus struct {
	ID         int64     `json:"id" db:"id"`
	BusNo      string    `json:"busno" db:"bus_no"`
	Route      string    `json:"route" db:"route"`
	DriverName string    `json:"driverName" db:"driver_name"`
	Capacity   string    `json:"capacity" db:"capacity"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
}
