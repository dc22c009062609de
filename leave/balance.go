/*
balance.go - Derived entitlement balances

PURPOSE:
  Computes what an agent has left: remaining annual paid-leave days,
  RTT hours used and remaining, the role-based formation-hour
  entitlement, and the sick-child day allotment.

KEY INSIGHT:
  Annual leave is tracked in DAYS (the request's day count is trusted),
  while RTT is tracked in HOURS derived from the request's date range:
  every weekday in the range costs one RTT day's hours (7.5 on a standard
  35-hour contract, scaled for other contracts), weekends cost nothing.

CALLER CONTRACT:
  The calculator does not filter requests by agent identity. Callers pass
  the subset of requests belonging to the agent; passing another agent's
  requests silently misattributes usage.

ERROR HANDLING:
  A request with a malformed date range cannot be priced. It contributes
  zero to RTT usage and is logged as a data-quality warning rather than
  failing the whole summary.

PRECISION:
  decimal.Decimal throughout. 7.5h/day times fractional day counts is
  exactly where float64 accumulates drift.

SEE ALSO:
  - types.go: Agent entitlement fields and defaults
  - date.go: ParseDate semantics
*/
package leave

import (
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// =============================================================================
// SUMMARY TYPES
// =============================================================================

// AnnualSummary is the paid-leave balance in days.
type AnnualSummary struct {
	Total     decimal.Decimal
	Used      decimal.Decimal
	Remaining decimal.Decimal
}

// RTTSummary is the RTT balance in hours, rounded to one decimal place.
type RTTSummary struct {
	TotalHours     decimal.Decimal
	UsedHours      decimal.Decimal
	RemainingHours decimal.Decimal
}

// BalanceSummary aggregates every derived entitlement for one agent.
type BalanceSummary struct {
	Annual         AnnualSummary
	RTT            RTTSummary
	FormationHours int64
	SickChildDays  int
}

// =============================================================================
// CALCULATOR
// =============================================================================

// Calculator computes balance summaries. The zero value is usable; a nil
// logger suppresses data-quality warnings.
type Calculator struct {
	Logger *zap.Logger
}

func NewCalculator(logger *zap.Logger) *Calculator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Calculator{Logger: logger}
}

// Summary computes the full balance summary for one agent.
// requests must already be filtered to this agent.
func (c *Calculator) Summary(agent Agent, requests []Request) BalanceSummary {
	return BalanceSummary{
		Annual:         c.AnnualLeave(agent, requests),
		RTT:            c.RTT(agent, requests),
		FormationHours: FormationHours(agent),
		SickChildDays:  agent.EffectiveSickChildDays(),
	}
}

// AnnualLeave computes the paid-leave balance in days:
// used = sum of day counts of approved paid-leave requests,
// remaining = max(0, allotment - used).
func (c *Calculator) AnnualLeave(agent Agent, requests []Request) AnnualSummary {
	total := decimal.NewFromFloat(agent.EffectiveAnnualLeaveDays())

	used := decimal.Zero
	for _, req := range requests {
		if req.Type != TypePaid || !req.Approved() {
			continue
		}
		used = used.Add(decimal.NewFromFloat(req.DaysCount))
	}

	remaining := total.Sub(used)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}

	return AnnualSummary{Total: total, Used: used, Remaining: remaining}
}

// RTT computes the RTT balance in hours:
// total = rttDays * 7.5, used = working hours covered by approved RTT
// requests, remaining = max(0, total - used). All values are rounded to
// one decimal place for display.
func (c *Calculator) RTT(agent Agent, requests []Request) RTTSummary {
	total := decimal.NewFromFloat(agent.RTTDays).Mul(decimal.NewFromFloat(HoursPerRTTDay))

	used := decimal.Zero
	for _, req := range requests {
		if req.Type != TypeRTT || !req.Approved() {
			continue
		}
		hours, err := WorkingHoursInRange(req.StartDate, req.EndDate, agent.EffectiveWeeklyHours())
		if err != nil {
			// Unpriceable request: contributes zero rather than failing.
			c.logger().Warn("skipping RTT request with malformed dates",
				zap.String("request_id", req.ID),
				zap.String("agent_id", req.AgentID),
				zap.String("start_date", req.StartDate),
				zap.String("end_date", req.EndDate),
				zap.Error(err))
			continue
		}
		used = used.Add(hours)
	}

	remaining := total.Sub(used)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}

	return RTTSummary{
		TotalHours:     total.Round(1),
		UsedHours:      used.Round(1),
		RemainingHours: remaining.Round(1),
	}
}

func (c *Calculator) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

// =============================================================================
// PURE HELPERS
// =============================================================================

// WorkingHoursInRange sums the RTT hours covered by the inclusive date
// range: every weekday costs one RTT day's hours (7.5 at the standard
// 35-hour contract, scaled proportionally for other contracts), Saturday
// and Sunday cost nothing. An inverted range yields zero.
func WorkingHoursInRange(startDate, endDate string, weeklyHours float64) (decimal.Decimal, error) {
	start, err := ParseDate(startDate)
	if err != nil {
		return decimal.Zero, err
	}
	end, err := ParseDate(endDate)
	if err != nil {
		return decimal.Zero, err
	}

	perDay := decimal.NewFromFloat(weeklyHours).
		Div(decimal.NewFromFloat(DefaultWeeklyHours)).
		Mul(decimal.NewFromFloat(HoursPerRTTDay))

	hours := decimal.Zero
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		wd := d.Weekday()
		if wd == time.Saturday || wd == time.Sunday {
			continue
		}
		hours = hours.Add(perDay)
	}
	return hours, nil
}

// FormationHours returns the annual training-hour entitlement:
// round(weeklyHours * 3/8) for department heads and doctors, zero for
// every other role.
func FormationHours(agent Agent) int64 {
	if agent.Role != RoleDepartmentHead && agent.Role != RoleDoctor {
		return 0
	}
	hours := decimal.NewFromFloat(agent.EffectiveWeeklyHours()).
		Mul(decimal.NewFromInt(3)).
		Div(decimal.NewFromInt(8))
	return hours.Round(0).IntPart()
}
