package models

import (
	"database/sql"
	"time"
)

type ServiceRequest struct {
	ID                string
	Type              string
	ContainerNo       string
	Status            string
	ETA               sql.NullTime
	LicensePlate      sql.NullString
	DriverName        sql.NullString
	YardSlot          sql.NullString
	RejectedReason    sql.NullString
	DepotDeletedAt    sql.NullTime
	CustomerDeletedAt sql.NullTime
	Documents         []byte
	History           []byte
	Version           int64
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type RepairTicket struct {
	ID             string
	ContainerNo    string
	Status         string
	EstimatedCost  int64
	ManagerComment sql.NullString
	Version        int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
