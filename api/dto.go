/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  JSON structures decoupling the domain model from the API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/warp/leave-planner/leave"
	"github.com/warp/leave-planner/schedule"
)

// =============================================================================
// AUTH
// =============================================================================

type LoginRequest struct {
	AgentID  string `json:"agent_id"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token   string `json:"token"`
	AgentID string `json:"agent_id"`
	Role    string `json:"role"`
}

// =============================================================================
// AGENTS
// =============================================================================

type AgentDTO struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Role            string  `json:"role"`
	WeeklyHours     float64 `json:"weekly_hours"`
	RTTDays         float64 `json:"rtt_days"`
	AnnualLeaveDays float64 `json:"annual_leave_days"`
	SickChildDays   int     `json:"sick_child_days"`
	CreatedAt       string  `json:"created_at,omitempty"`
}

type CreateAgentRequest struct {
	ID              string  `json:"id,omitempty"`
	Name            string  `json:"name"`
	Role            string  `json:"role"`
	WeeklyHours     float64 `json:"weekly_hours,omitempty"`
	RTTDays         float64 `json:"rtt_days,omitempty"`
	AnnualLeaveDays float64 `json:"annual_leave_days,omitempty"`
	SickChildDays   int     `json:"sick_child_days,omitempty"`
	Password        string  `json:"password,omitempty"`
}

// =============================================================================
// BALANCE
// =============================================================================

type BalanceDTO struct {
	AgentID        string          `json:"agent_id"`
	Annual         AnnualDTO       `json:"annual_leave"`
	RTT            RTTDTO          `json:"rtt"`
	FormationHours int64           `json:"formation_hours"`
	SickChildDays  int             `json:"sick_child_days"`
}

type AnnualDTO struct {
	Total     float64 `json:"total"`
	Used      float64 `json:"used"`
	Remaining float64 `json:"remaining"`
}

type RTTDTO struct {
	TotalHours     float64 `json:"total_hours"`
	UsedHours      float64 `json:"used_hours"`
	RemainingHours float64 `json:"remaining_hours"`
}

// =============================================================================
// LEAVE REQUESTS
// =============================================================================

type LeaveRequestDTO struct {
	ID        string  `json:"id"`
	AgentID   string  `json:"agent_id"`
	Type      string  `json:"leave_type"`
	StartDate string  `json:"start_date"`
	EndDate   string  `json:"end_date"`
	DaysCount float64 `json:"days_count"`
	Status    string  `json:"status"`
	Reason    string  `json:"reason,omitempty"`
	CreatedAt string  `json:"created_at,omitempty"`
}

type CreateLeaveRequest struct {
	AgentID   string  `json:"agent_id"`
	Type      string  `json:"leave_type"`
	StartDate string  `json:"start_date"`
	EndDate   string  `json:"end_date"`
	DaysCount float64 `json:"days_count,omitempty"`
	Reason    string  `json:"reason,omitempty"`
}

// =============================================================================
// SCHEDULES
// =============================================================================

type WeekDTO struct {
	Key       string          `json:"key"`
	AgentID   string          `json:"agent_id"`
	WeekStart string          `json:"week_start"`
	Slots     []schedule.Slot `json:"slots"`
}

type PutWeekRequest struct {
	Slots []schedule.Slot `json:"slots"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toAgentDTO(a leave.Agent) AgentDTO {
	return AgentDTO{
		ID:              a.ID,
		Name:            a.Name,
		Role:            string(a.Role),
		WeeklyHours:     a.EffectiveWeeklyHours(),
		RTTDays:         a.RTTDays,
		AnnualLeaveDays: a.EffectiveAnnualLeaveDays(),
		SickChildDays:   a.EffectiveSickChildDays(),
		CreatedAt:       formatTime(a.CreatedAt),
	}
}

func toLeaveRequestDTO(r leave.Request) LeaveRequestDTO {
	return LeaveRequestDTO{
		ID:        r.ID,
		AgentID:   r.AgentID,
		Type:      string(r.Type),
		StartDate: r.StartDate,
		EndDate:   r.EndDate,
		DaysCount: r.DaysCount,
		Status:    string(r.Status),
		Reason:    r.Reason,
		CreatedAt: formatTime(r.CreatedAt),
	}
}

func toBalanceDTO(agentID string, s leave.BalanceSummary) BalanceDTO {
	return BalanceDTO{
		AgentID: agentID,
		Annual: AnnualDTO{
			Total:     s.Annual.Total.InexactFloat64(),
			Used:      s.Annual.Used.InexactFloat64(),
			Remaining: s.Annual.Remaining.InexactFloat64(),
		},
		RTT: RTTDTO{
			TotalHours:     s.RTT.TotalHours.InexactFloat64(),
			UsedHours:      s.RTT.UsedHours.InexactFloat64(),
			RemainingHours: s.RTT.RemainingHours.InexactFloat64(),
		},
		FormationHours: s.FormationHours,
		SickChildDays:  s.SickChildDays,
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
