// Package finance keeps the campaign balance and its loans.
package finance

import (
	"strconv"
	"sync"
	"time"

	apperrors "github.com/louisbranch/campaignops/internal/platform/errors"
)

// PaymentInterval is the number of days between loan payments.
const PaymentInterval = 30

var (
	// ErrInvalidAmount indicates a non-positive money amount.
	ErrInvalidAmount = apperrors.New(apperrors.CodeFinanceInvalidAmount, "amount must be greater than zero")
	// ErrUnknownLoan indicates a loan handle not on the books.
	ErrUnknownLoan = apperrors.New(apperrors.CodeFinanceUnknownLoan, "loan not found")
)

// Loan is an outstanding debt with a periodic payment.
type Loan struct {
	ID          string
	Principal   int64
	PaymentDue  int64
	NextPayment time.Time
	Overdue     int64
}

// Transaction is one ledger entry.
type Transaction struct {
	Date        time.Time
	Amount      int64
	Description string
}

// Ledger tracks money in C-bills.
type Ledger struct {
	mu           sync.Mutex
	balance      int64
	loans        []Loan
	transactions []Transaction
}

// NewLedger returns a ledger with an opening balance.
func NewLedger(balance int64) *Ledger {
	return &Ledger{balance: balance}
}

// Balance returns the current balance.
func (l *Ledger) Balance() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balance
}

// InDebt reports a negative balance.
func (l *Ledger) InDebt() bool {
	return l.Balance() < 0
}

// Credit adds amount to the balance.
func (l *Ledger) Credit(date time.Time, amount int64, description string) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.record(date, amount, description)
	return nil
}

// Debit removes amount from the balance. The balance may go negative.
func (l *Ledger) Debit(date time.Time, amount int64, description string) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.record(date, -amount, description)
	return nil
}

// CanAfford reports whether amount fits in the balance.
func (l *Ledger) CanAfford(amount int64) bool {
	return l.Balance() >= amount
}

func (l *Ledger) record(date time.Time, amount int64, description string) {
	l.balance += amount
	l.transactions = append(l.transactions, Transaction{Date: date, Amount: amount, Description: description})
}

// Transactions returns the ledger history.
func (l *Ledger) Transactions() []Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Transaction(nil), l.transactions...)
}

// AddLoan records a new loan and credits its principal.
func (l *Ledger) AddLoan(date time.Time, loan Loan) error {
	if loan.Principal <= 0 || loan.PaymentDue <= 0 {
		return ErrInvalidAmount
	}
	if loan.NextPayment.IsZero() {
		loan.NextPayment = date.AddDate(0, 0, PaymentInterval)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.loans = append(l.loans, loan)
	l.record(date, loan.Principal, "loan "+loan.ID)
	return nil
}

// Loans returns a copy of the outstanding loans.
func (l *Ledger) Loans() []Loan {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Loan(nil), l.loans...)
}

// OverdueTotal returns the sum of missed loan payments.
func (l *Ledger) OverdueTotal() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	var total int64
	for _, loan := range l.loans {
		total += loan.Overdue
	}
	return total
}

// PayOverdue pays down a loan's overdue amount from the balance. Amounts past
// the overdue balance reduce principal.
func (l *Ledger) PayOverdue(date time.Time, loanID string, amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.loans {
		loan := &l.loans[i]
		if loan.ID != loanID {
			continue
		}
		toOverdue := min(amount, loan.Overdue)
		loan.Overdue -= toOverdue
		loan.Principal -= min(amount-toOverdue, loan.Principal)
		l.record(date, -amount, "loan payment "+loanID)
		if loan.Principal <= 0 && loan.Overdue <= 0 {
			l.loans = append(l.loans[:i], l.loans[i+1:]...)
		}
		return nil
	}
	return apperrors.WithMetadata(apperrors.CodeFinanceUnknownLoan, "loan not found", map[string]string{"Loan": loanID})
}

// DailyTick processes loan payments due on today. A payment the balance
// cannot cover becomes overdue.
func (l *Ledger) DailyTick(today time.Time) []Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()
	var paid []Transaction
	for i := range l.loans {
		loan := &l.loans[i]
		if today.Before(loan.NextPayment) {
			continue
		}
		loan.NextPayment = loan.NextPayment.AddDate(0, 0, PaymentInterval)
		payment := min(loan.PaymentDue, loan.Principal)
		if payment <= 0 {
			continue
		}
		if l.balance < payment {
			loan.Overdue += payment
			continue
		}
		loan.Principal -= payment
		l.record(today, -payment, "loan payment "+loan.ID)
		paid = append(paid, l.transactions[len(l.transactions)-1])
	}
	return paid
}

// FormatAmount renders an amount for metadata maps.
func FormatAmount(amount int64) string {
	return strconv.FormatInt(amount, 10)
}
