package core

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Granularity selects the time window and bucket label for analytics queries.
type Granularity string

const (
	Daily   Granularity = "daily"
	Weekly  Granularity = "weekly"
	Monthly Granularity = "monthly"
)

func (g Granularity) Valid() bool {
	switch g {
	case Daily, Weekly, Monthly:
		return true
	}
	return false
}

// labelLayout returns the time format used to bucket transactions at this
// granularity: hour of day, weekday abbreviation, or day+month.
func (g Granularity) labelLayout() string {
	switch g {
	case Daily:
		return "15:00"
	case Weekly:
		return "Mon"
	default:
		return "02 Jan"
	}
}

// Balance folds transactions into a signed total: incomes add, expenses
// subtract, and installment purchases contribute their per-period amount
// instead of the full total. The fold is order independent.
func Balance(txs []Transaction) decimal.Decimal {
	total := decimal.Zero
	for i := range txs {
		amount := txs[i].EffectiveAmount()
		if txs[i].Type == Income {
			total = total.Add(amount)
		} else {
			total = total.Sub(amount)
		}
	}
	return total
}

// FilterByWindow selects the transactions falling inside the window of the
// given granularity anchored at ref: same calendar day for Daily, everything
// since the Monday of ref's ISO week for Weekly, everything since the first
// of ref's month for Monthly.
func FilterByWindow(txs []Transaction, g Granularity, ref time.Time) []Transaction {
	var keep func(time.Time) bool
	switch g {
	case Daily:
		keep = func(d time.Time) bool { return sameDay(d, ref) }
	case Weekly:
		start := startOfISOWeek(ref)
		keep = func(d time.Time) bool { return !d.Before(start) }
	default:
		start := startOfMonth(ref)
		keep = func(d time.Time) bool { return !d.Before(start) }
	}

	var out []Transaction
	for i := range txs {
		if keep(txs[i].Date) {
			out = append(out, txs[i])
		}
	}
	return out
}

// TransactionsInMonth selects the transactions whose date falls in the same
// calendar year and month as ref, in both directions.
func TransactionsInMonth(txs []Transaction, ref time.Time) []Transaction {
	var out []Transaction
	for i := range txs {
		if sameMonth(txs[i].Date, ref) {
			out = append(out, txs[i])
		}
	}
	return out
}

// AvailableMonths lists the distinct calendar months present in the ledger,
// most recent first. An empty ledger yields the month containing now, so a
// month browser always has at least one selectable bucket.
func AvailableMonths(txs []Transaction, now time.Time) []time.Time {
	type yearMonth struct {
		year  int
		month time.Month
	}
	// Keyed by calendar month, not time.Time: equal wall-clock months in
	// different locations must collapse into one entry.
	seen := make(map[yearMonth]time.Time)
	for i := range txs {
		d := txs[i].Date
		seen[yearMonth{d.Year(), d.Month()}] = startOfMonth(d)
	}
	if len(seen) == 0 {
		return []time.Time{startOfMonth(now)}
	}

	months := make([]time.Time, 0, len(seen))
	for _, m := range seen {
		months = append(months, m)
	}
	sort.Slice(months, func(i, j int) bool { return months[i].After(months[j]) })
	return months
}

// Bucket is one labelled group of an income-vs-expense series.
type Bucket struct {
	Label   string
	Income  decimal.Decimal
	Expense decimal.Decimal
}

// BucketByLabel groups an already time-filtered transaction set by its
// formatted date label and sums income and expense amounts per bucket,
// substituting per-period amounts for installment purchases. Buckets come
// back in ascending lexicographic label order, which for Daily and Weekly
// labels is not chronological order.
func BucketByLabel(txs []Transaction, g Granularity) []Bucket {
	layout := g.labelLayout()
	grouped := make(map[string]*Bucket)
	for i := range txs {
		label := txs[i].Date.Format(layout)
		b, ok := grouped[label]
		if !ok {
			b = &Bucket{Label: label, Income: decimal.Zero, Expense: decimal.Zero}
			grouped[label] = b
		}
		amount := txs[i].EffectiveAmount()
		if txs[i].Type == Income {
			b.Income = b.Income.Add(amount)
		} else {
			b.Expense = b.Expense.Add(amount)
		}
	}

	out := make([]Bucket, 0, len(grouped))
	for _, b := range grouped {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}

// CategoryTotal is one category's summed expense amount.
type CategoryTotal struct {
	Category Category
	Total    decimal.Decimal
}

// CategoryTotals sums expense transactions per category, per-period amounts
// substituted, sorted by total descending. Incomes and categoryless expenses
// are excluded.
func CategoryTotals(txs []Transaction) []CategoryTotal {
	return sumByCategory(txs, func(t *Transaction) bool {
		return t.Type == Expense
	})
}

// InstallmentsByCategory sums the per-period amounts of installment expenses
// per category, sorted by total descending.
func InstallmentsByCategory(txs []Transaction) []CategoryTotal {
	return sumByCategory(txs, func(t *Transaction) bool {
		return t.Type == Expense && t.Installments != nil
	})
}

func sumByCategory(txs []Transaction, match func(*Transaction) bool) []CategoryTotal {
	totals := make(map[Category]decimal.Decimal)
	for i := range txs {
		if !match(&txs[i]) || txs[i].Category == "" {
			continue
		}
		totals[txs[i].Category] = totals[txs[i].Category].Add(txs[i].EffectiveAmount())
	}

	out := make([]CategoryTotal, 0, len(totals))
	for c, total := range totals {
		out = append(out, CategoryTotal{Category: c, Total: total})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Total.Equal(out[j].Total) {
			return out[i].Total.GreaterThan(out[j].Total)
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// InstallmentBurden sums the per-period amount of every installment expense,
// paid or not: the monthly recurring bite of all installment purchases.
func InstallmentBurden(txs []Transaction) decimal.Decimal {
	total := decimal.Zero
	for i := range txs {
		if txs[i].Type == Expense && txs[i].Installments != nil {
			total = total.Add(txs[i].Installments.PerPeriodAmount)
		}
	}
	return total
}

// InstallmentLine is one row of the installment listing.
type InstallmentLine struct {
	Label           string
	PerPeriodAmount decimal.Decimal
	TotalCount      int
}

// installmentFallbackLabel is used when an installment purchase has no note.
const installmentFallbackLabel = "Installment purchase"

// InstallmentListing lists every installment expense with its note (or a
// fallback label), per-period amount and total period count, sorted by
// per-period amount descending.
func InstallmentListing(txs []Transaction) []InstallmentLine {
	var out []InstallmentLine
	for i := range txs {
		if txs[i].Type != Expense || txs[i].Installments == nil {
			continue
		}
		label := txs[i].Note
		if label == "" {
			label = installmentFallbackLabel
		}
		out = append(out, InstallmentLine{
			Label:           label,
			PerPeriodAmount: txs[i].Installments.PerPeriodAmount,
			TotalCount:      txs[i].Installments.TotalCount,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].PerPeriodAmount.Equal(out[j].PerPeriodAmount) {
			return out[i].PerPeriodAmount.GreaterThan(out[j].PerPeriodAmount)
		}
		return out[i].Label < out[j].Label
	})
	return out
}

// WindowStart returns the first instant of the window FilterByWindow selects
// for g anchored at ref.
func WindowStart(g Granularity, ref time.Time) time.Time {
	switch g {
	case Daily:
		return time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, ref.Location())
	case Weekly:
		return startOfISOWeek(ref)
	default:
		return startOfMonth(ref)
	}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func sameMonth(a, b time.Time) bool {
	ay, am, _ := a.Date()
	by, bm, _ := b.Date()
	return ay == by && am == bm
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// startOfISOWeek returns midnight of the Monday of t's ISO week.
func startOfISOWeek(t time.Time) time.Time {
	wd := int(t.Weekday())
	if wd == 0 {
		wd = 7 // Sunday closes the ISO week
	}
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return day.AddDate(0, 0, -(wd - 1))
}
