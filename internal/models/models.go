package models

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleManager  Role = "manager"
	RoleEmployee Role = "employee"
	RoleClient   Role = "client"
)

var Roles = []Role{RoleAdmin, RoleManager, RoleEmployee, RoleClient}

// ParseRole lower-cases and trims s; ok is false for anything outside Roles.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Roles {
		if r == known {
			return r, true
		}
	}
	return r, false
}

// Identity is the authenticated user held for the session.
type Identity struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// StoredSession is what the local session store persists between runs.
type StoredSession struct {
	Identity Identity
	Token    string
	Cookie   string
}

type User struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	Role      Role    `json:"role"`
	Phone     *string `json:"phone"`
	Skills    *string `json:"skills"`
	CreatedAt *string `json:"created_at"`
}

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingApproved  BookingStatus = "approved"
	BookingRejected  BookingStatus = "rejected"
	BookingCompleted BookingStatus = "completed"
)

var BookingStatuses = []string{
	string(BookingPending), string(BookingApproved), string(BookingRejected), string(BookingCompleted),
}

type Booking struct {
	ID             int64               `json:"id"`
	ClientID       *int64              `json:"client_id"`
	Title          string              `json:"title"`
	Description    string              `json:"description"`
	Location       *string             `json:"location"`
	RequiredSkills *string             `json:"required_skills"`
	StartDate      *string             `json:"start_date"`
	EndDate        *string             `json:"end_date"`
	Budget         decimal.NullDecimal `json:"budget"`
	Status         BookingStatus       `json:"status"`
	CreatedAt      *string             `json:"created_at"`
}

type ProjectStatus string

const (
	ProjectActive    ProjectStatus = "active"
	ProjectPlanned   ProjectStatus = "planned"
	ProjectCompleted ProjectStatus = "completed"
)

var ProjectStatuses = []string{string(ProjectActive), string(ProjectPlanned), string(ProjectCompleted)}

type Project struct {
	ID          int64         `json:"id"`
	BookingID   int64         `json:"booking_id"`
	ManagerID   *int64        `json:"manager_id"`
	ProjectName string        `json:"project_name"`
	StartDate   *string       `json:"start_date"`
	EndDate     *string       `json:"end_date"`
	Notes       *string       `json:"notes"`
	Status      ProjectStatus `json:"status"`
	CreatedAt   *string       `json:"created_at"`
}

type EmployeeStatus string

const (
	EmployeeActive   EmployeeStatus = "active"
	EmployeeInactive EmployeeStatus = "inactive"
)

var EmployeeStatuses = []string{string(EmployeeActive), string(EmployeeInactive)}

type Employee struct {
	ID         int64               `json:"id"`
	UserID     *int64              `json:"user_id"`
	Name       string              `json:"name"`
	Email      string              `json:"email"`
	Phone      *string             `json:"phone"`
	Trade      *string             `json:"trade"`
	Skills     *string             `json:"skills"`
	HourlyRate decimal.NullDecimal `json:"hourly_rate"`
	Status     EmployeeStatus      `json:"status"`
}

type AssignmentStatus string

const (
	AssignmentAssigned  AssignmentStatus = "assigned"
	AssignmentWorking   AssignmentStatus = "working"
	AssignmentCompleted AssignmentStatus = "completed"
	AssignmentRejected  AssignmentStatus = "rejected"
)

var AssignmentStatuses = []string{
	string(AssignmentAssigned), string(AssignmentWorking), string(AssignmentCompleted), string(AssignmentRejected),
}

type Assignment struct {
	ID         int64            `json:"id"`
	ProjectID  int64            `json:"project_id"`
	EmployeeID int64            `json:"employee_id"`
	AssignedBy *int64           `json:"assigned_by"`
	RoleDesc   *string          `json:"role_desc"`
	StartDate  *string          `json:"start_date"`
	EndDate    *string          `json:"end_date"`
	Status     AssignmentStatus `json:"status"`
	CreatedAt  *string          `json:"created_at"`

	// Joined fields, present on /assignments/all
	EmployeeName    *string `json:"employee_name"`
	ProjectName     *string `json:"project_name"`
	BookingTitle    *string `json:"booking_title"`
	BookingLocation *string `json:"booking_location"`
}

// Task is an employee's own assignment joined with its project and booking.
type Task struct {
	ID              int64            `json:"id"`
	ProjectID       int64            `json:"project_id"`
	RoleDesc        *string          `json:"role_desc"`
	StartDate       *string          `json:"start_date"`
	EndDate         *string          `json:"end_date"`
	Status          AssignmentStatus `json:"status"`
	CreatedAt       *string          `json:"created_at"`
	ProjectName     string           `json:"project_name"`
	BookingTitle    *string          `json:"booking_title"`
	BookingLocation *string          `json:"booking_location"`
	BookingStart    *string          `json:"booking_start"`
	BookingEnd      *string          `json:"booking_end"`
}

type SiteStatus string

const (
	SiteOpen   SiteStatus = "open"
	SiteClosed SiteStatus = "closed"
)

var SiteStatuses = []string{string(SiteOpen), string(SiteClosed)}

type Site struct {
	ID        int64               `json:"id"`
	Name      string              `json:"name"`
	Location  string              `json:"location"`
	Latitude  decimal.NullDecimal `json:"latitude"`
	Longitude decimal.NullDecimal `json:"longitude"`
	Status    SiteStatus          `json:"status"`
}

type PayrollRow struct {
	EmployeeID    *int64              `json:"employee_id"`
	Name          string              `json:"name"`
	Hours         decimal.NullDecimal `json:"hours"`
	OvertimeHours decimal.NullDecimal `json:"overtime_hours"`
	Base          decimal.NullDecimal `json:"base"`
	OvertimePay   decimal.NullDecimal `json:"overtime_pay"`
	Total         decimal.NullDecimal `json:"total"`
}

// PayrollTotals sums the money columns; absent values count as zero.
type PayrollTotals struct {
	Base        decimal.Decimal
	OvertimePay decimal.Decimal
	Total       decimal.Decimal
}

func SumPayroll(rows []PayrollRow) PayrollTotals {
	t := PayrollTotals{Base: decimal.Zero, OvertimePay: decimal.Zero, Total: decimal.Zero}
	for _, r := range rows {
		if r.Base.Valid {
			t.Base = t.Base.Add(r.Base.Decimal)
		}
		if r.OvertimePay.Valid {
			t.OvertimePay = t.OvertimePay.Add(r.OvertimePay.Decimal)
		}
		if r.Total.Valid {
			t.Total = t.Total.Add(r.Total.Decimal)
		}
	}
	return t
}

// Stats is a dashboard counter object. Numbers are kept as they are, lists
// count as their length and anything else is dropped.
type Stats map[string]decimal.Decimal

func (s *Stats) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	out := make(Stats, len(raw))
	for k, v := range raw {
		v = bytes.TrimSpace(v)
		if len(v) == 0 {
			continue
		}
		switch v[0] {
		case '[':
			var list []json.RawMessage
			if err := json.Unmarshal(v, &list); err == nil {
				out[k] = decimal.NewFromInt(int64(len(list)))
			}
		case '"', '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
			var d decimal.Decimal
			if err := d.UnmarshalJSON(v); err == nil {
				out[k] = d
			}
		}
	}
	*s = out
	return nil
}

func (s Stats) Get(key string) (decimal.Decimal, bool) {
	d, ok := s[key]
	return d, ok
}

// ReportRow is one untyped row of a server-computed report.
type ReportRow map[string]any
