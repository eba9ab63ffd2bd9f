// Package fleet keeps driver and vehicle records and their busy/available
// state consistent with the ride lifecycle.
package fleet

import (
	"time"

	"romuo/internal/types"
)

type DriverStatus string

const (
	DriverAvailable DriverStatus = "available"
	DriverBusy      DriverStatus = "busy"
	DriverOffline   DriverStatus = "offline"
)

type VehicleStatus string

const (
	VehicleAvailable   VehicleStatus = "available"
	VehicleInUse       VehicleStatus = "in_use"
	VehicleMaintenance VehicleStatus = "maintenance"
)

type Driver struct {
	ID         types.ID     `json:"id"`
	IdentityID types.ID     `json:"identity_id"`
	Name       string       `json:"name"`
	Status     DriverStatus `json:"status"`
	Location   *types.Point `json:"location,omitempty"`
	VehicleID  *types.ID    `json:"vehicle_id,omitempty"`
	Trips      int          `json:"trips"`
	CreatedAt  time.Time    `json:"created_at"`
}

type Vehicle struct {
	ID             types.ID      `json:"id"`
	Plate          string        `json:"plate"`
	ClassID        string        `json:"class_id"`
	Capacity       int           `json:"capacity"`
	Status         VehicleStatus `json:"status"`
	InsuranceUntil time.Time     `json:"insurance_until"`
	ServiceDue     time.Time     `json:"service_due"`
	CreatedAt      time.Time     `json:"created_at"`
}
