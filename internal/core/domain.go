package core

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

const (
	Food     Category = "Food"
	Travel   Category = "Travel"
	Bills    Category = "Bills"
	Shopping Category = "Shopping"
	Health   Category = "Health"
	Other    Category = "Other"
)

// DefaultMonthlyBudget applies when no budget has ever been set.
var DefaultMonthlyBudget = Money{Cents: 500000}

type (
	TransactionType string

	Category string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	Transaction struct {
		ID       string          `json:"id"`
		Title    string          `json:"title"`
		Amount   Money           `json:"amountCents"`
		Type     TransactionType `json:"type"`
		Category Category        `json:"category"`
		Date     Date            `json:"date"`
		Notes    string          `json:"notes,omitempty"`
	}

	User struct {
		Name            string `json:"name"`
		IsAuthenticated bool   `json:"isAuthenticated"`
	}

	AppState struct {
		User          *User
		Transactions  []Transaction
		MonthlyBudget Money
	}

	DateRange struct {
		Start Date `json:"start"`
		End   Date `json:"end"`
	}

	FilterOptions struct {
		DateRange   *DateRange
		Category    *Category
		Type        *TransactionType
		SearchQuery string
	}
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidBudget   = errors.New("invalid budget")
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidType     = errors.New("invalid transaction type")
	ErrInvalidCategory = errors.New("invalid category")
	ErrEmptyTitle      = errors.New("empty title")
	ErrEmptyName       = errors.New("empty name")
)

// Categories returns the closed category set in display order.
func Categories() []Category {
	return []Category{Food, Travel, Bills, Shopping, Health, Other}
}

func (t TransactionType) IsValid() bool {
	return t == Income || t == Expense
}

func (c Category) IsValid() bool {
	switch c {
	case Food, Travel, Bills, Shopping, Health, Other:
		return true
	default:
		return false
	}
}

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses the YYYY-MM-DD wire format.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// SameDay reports whether the date falls on the same calendar day as t.
func (d Date) SameDay(t time.Time) bool {
	y1, m1, day1 := d.Date()
	y2, m2, day2 := t.Date()
	return y1 == y2 && m1 == m2 && day1 == day2
}

func (d Date) String() string {
	return d.Format("2006-01-02")
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(d.Format("2006-01-02"))), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s, err := strconv.Unquote(string(data))
	if err != nil {
		return ErrInvalidDate
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Add returns the sum of the two amounts.
func (m Money) Add(other Money) Money {
	return Money{Cents: m.Cents + other.Cents}
}

// Sub returns the difference of the two amounts.
func (m Money) Sub(other Money) Money {
	return Money{Cents: m.Cents - other.Cents}
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatInt(m.Cents, 10)), nil
}

func (m *Money) UnmarshalJSON(data []byte) error {
	cents, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return ErrInvalidAmount
	}
	m.Cents = cents
	return nil
}

func (t Transaction) Validate() error {
	if len(strings.TrimSpace(t.Title)) == 0 {
		return ErrEmptyTitle
	}
	if len(t.Title) > 200 {
		return errors.New("title too long (max 200 characters)")
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if !t.Type.IsValid() {
		return ErrInvalidType
	}
	if !t.Category.IsValid() {
		return ErrInvalidCategory
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	return nil
}

func (u User) Validate() error {
	if len(strings.TrimSpace(u.Name)) == 0 {
		return ErrEmptyName
	}
	return nil
}

// NewUser constructs an authenticated user. There is no
// unauthenticated-but-present state; absence of a user means logged out.
func NewUser(name string) User {
	return User{Name: name, IsAuthenticated: true}
}

// Clone returns a deep copy so callers can hand out snapshots that later
// mutations never touch.
func (s AppState) Clone() AppState {
	out := AppState{MonthlyBudget: s.MonthlyBudget}
	if s.User != nil {
		u := *s.User
		out.User = &u
	}
	if s.Transactions != nil {
		out.Transactions = make([]Transaction, len(s.Transactions))
		copy(out.Transactions, s.Transactions)
	}
	return out
}
