/*
Package leave defines agents, leave requests, and the balance calculator.

PURPOSE:
  This is the plain-data layer of the planner. Agents carry their
  entitlement configuration (weekly hours, RTT days, annual leave days),
  leave requests carry a date range and an approval status, and the
  balance calculator derives remaining entitlements from the two.

KEY CONCEPTS IN THIS FILE (types.go):
  - Agent: An organization member with entitlement configuration
  - Request: A leave request over an inclusive calendar-date range
  - Role: Enumerated organizational roles (some carry extra entitlements)

IDENTITY:
  Requests reference their owner by AgentID only. Matching by display
  name or any secondary identifier is deliberately not supported; name
  collisions would misattribute leave.

SEE ALSO:
  - date.go: Literal YYYY-MM-DD parsing (no timezone drift)
  - balance.go: Derived balances (annual leave, RTT, formation hours)
  - schedule package: Consumes approved requests to mutate weekly schedules
*/
package leave

import "time"

// =============================================================================
// ROLES
// =============================================================================

type Role string

const (
	RoleEmployee        Role = "employee"
	RoleNurse           Role = "nurse"
	RoleDoctor          Role = "doctor"
	RoleDentist         Role = "dentist"
	RoleDentalAssistant Role = "dental-assistant"
	RoleHR              Role = "hr"
	RoleAccounting      Role = "accounting"
	RoleMidwife         Role = "midwife"
	RoleDepartmentHead  Role = "department-head"
	RoleAdmin           Role = "admin"
)

// =============================================================================
// AGENT - Organization member with entitlement configuration
// =============================================================================

// Entitlement defaults applied when the corresponding Agent field is zero.
const (
	DefaultWeeklyHours     = 35.0
	DefaultAnnualLeaveDays = 25.0
	DefaultSickChildDays   = 3
	HoursPerRTTDay         = 7.5
)

type Agent struct {
	ID              string
	Name            string
	Role            Role
	WeeklyHours     float64 // contracted hours per week; 0 means DefaultWeeklyHours
	RTTDays         float64 // annual RTT day allotment
	AnnualLeaveDays float64 // annual paid-leave days; 0 means DefaultAnnualLeaveDays
	SickChildDays   int     // sick-child days; 0 means DefaultSickChildDays
	CreatedAt       time.Time
}

// EffectiveWeeklyHours returns the contracted weekly hours, defaulted.
func (a Agent) EffectiveWeeklyHours() float64 {
	if a.WeeklyHours <= 0 {
		return DefaultWeeklyHours
	}
	return a.WeeklyHours
}

// EffectiveAnnualLeaveDays returns the annual paid-leave allotment, defaulted.
func (a Agent) EffectiveAnnualLeaveDays() float64 {
	if a.AnnualLeaveDays <= 0 {
		return DefaultAnnualLeaveDays
	}
	return a.AnnualLeaveDays
}

// EffectiveSickChildDays returns the sick-child day allotment, defaulted.
func (a Agent) EffectiveSickChildDays() int {
	if a.SickChildDays <= 0 {
		return DefaultSickChildDays
	}
	return a.SickChildDays
}

// =============================================================================
// LEAVE REQUEST
// =============================================================================

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRefused  Status = "refused"
)

// Leave types with dedicated balance rules. Any other type is carried as an
// opaque string and ignored by the balance calculator.
const (
	TypePaid Type = "Congés payés"
	TypeRTT  Type = "RTT"
)

type Type string

// Request is a leave request over an inclusive calendar-date range.
// StartDate and EndDate are plain YYYY-MM-DD strings; see date.go for why
// they are not time.Time.
type Request struct {
	ID        string
	AgentID   string
	Type      Type
	StartDate string // YYYY-MM-DD, inclusive
	EndDate   string // YYYY-MM-DD, inclusive
	DaysCount float64
	Status    Status
	Reason    string
	CreatedAt time.Time
}

// Approved reports whether the request has been approved.
func (r Request) Approved() bool { return r.Status == StatusApproved }
