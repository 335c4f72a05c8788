package billing

import "time"

const (
	secondsPerDay = 24 * 60 * 60

	// daysPerMonth is the fixed month length used throughout the engine.
	// Real calendar months drift against it; both the occurrence advance and
	// the adjustment-month bucket rely on this approximation, and it is kept
	// rather than replaced with civil-calendar arithmetic.
	daysPerMonth = 30

	// MaxRecurringDay keeps a due day valid in every month, February included.
	MaxRecurringDay = 28
)

// MonthDuration is the engine's fixed month unit.
const MonthDuration = daysPerMonth * 24 * time.Hour

// MinLeadTime is the minimum gap between "now" and a new bill's due date.
const MinLeadTime = 7 * 24 * time.Hour

// BuildRecurrenceCalendar walks month by month from the cycle start and
// collects the month numbers whose (year, month, dayOfMonth) timestamp falls
// inside [start, end]. The result length is the bill's occurrence count
// within the cycle, and the first entry corresponds to its first due date.
func BuildRecurrenceCalendar(start, end time.Time, dayOfMonth int) []int {
	if dayOfMonth < 1 || dayOfMonth > MaxRecurringDay {
		return nil
	}
	var months []int
	// A cycle spans at most 12 months; one extra iteration covers a start
	// falling after dayOfMonth in its own month.
	for i := 0; i <= 13; i++ {
		candidate := time.Date(start.Year(), start.Month()+time.Month(i), dayOfMonth,
			start.Hour(), start.Minute(), start.Second(), 0, start.Location())
		if candidate.After(end) {
			break
		}
		if !candidate.Before(start) {
			months = append(months, int(candidate.Month()))
		}
	}
	return months
}

// AdvanceOccurrence rolls a bill forward after a successful payment. A
// recurring bill moves 30 days ahead while that stays inside the cycle (fixed
// offset, not calendar-month arithmetic, so the day of month drifts across
// 31-day and 28-day months). Anything else is terminal: IsPaid stays true and
// no further occurrences exist.
func AdvanceOccurrence(bill *Bill, cycle *Cycle) {
	if !bill.IsRecurring {
		bill.IsPaid = true
		return
	}
	next := bill.DueDate.Add(MonthDuration)
	if next.After(cycle.EndDate) {
		bill.IsPaid = true
		return
	}
	bill.DueDate = next
	bill.IsPaid = false
}

// ApproxMonth maps a timestamp onto a 1-12 month number using the fixed
// 30-day month. It can misclassify civil-calendar month boundaries; the
// adjustment limit is defined against this bucket, not the civil calendar.
func ApproxMonth(t time.Time) uint32 {
	return uint32((t.Unix()/(daysPerMonth*secondsPerDay))%12) + 1
}

// DayStart truncates a timestamp to the start of its unix calendar day.
func DayStart(t time.Time) int64 {
	return t.Unix() / secondsPerDay * secondsPerDay
}

// SameCalendarDay reports whether two timestamps share a unix calendar day.
func SameCalendarDay(a, b time.Time) bool {
	return DayStart(a) == DayStart(b)
}

// ValidDayOfMonth reports whether a due date's day of month can recur in
// every month of the year.
func ValidDayOfMonth(due time.Time) bool {
	return due.Day() <= MaxRecurringDay
}
