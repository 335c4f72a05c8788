package billing

import "time"

// Category is a coarse spending classification for a bill.
type Category string

const (
	CategoryHousing        Category = "HOUSING"
	CategoryUtilities      Category = "UTILITIES"
	CategoryTransportation Category = "TRANSPORTATION"
	CategoryFood           Category = "FOOD"
	CategoryHealthcare     Category = "HEALTHCARE"
	CategoryInsurance      Category = "INSURANCE"
	CategoryEntertainment  Category = "ENTERTAINMENT"
	CategoryEducation      Category = "EDUCATION"
	CategoryDebt           Category = "DEBT"
	CategoryOther          Category = "OTHER"
)

// Bill is a payment obligation inside exactly one cycle. A recurring bill
// keeps its ID across occurrences: DueDate and IsPaid describe the current
// occurrence only, and mutate as the bill rolls forward. Corresponds to the
// 'bills' table.
type Bill struct {
	ID          int64
	CycleID     int64
	Name        string
	Amount      int64 // per-occurrence amount, subunits
	DueDate     time.Time
	IsPaid      bool
	IsRecurring bool
	// RecurrenceCalendar lists the month numbers (1-12) in which the bill
	// falls due within the cycle's span. Empty for one-time bills.
	RecurrenceCalendar []int
	Category           Category
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
