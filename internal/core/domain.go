package core

import (
	"strings"
	"time"
)

const (
	Income  Kind = "Income"
	Expense Kind = "Expense"
)

type (
	// Kind distinguishes money coming in from money going out.
	Kind string

	Date struct {
		time.Time
	}

	// Transaction is a stored ledger entry. Values are snapshots; the store
	// owns the persisted record.
	Transaction struct {
		ID       int64
		Kind     Kind
		Category string
		Amount   Amount
		Date     Date
	}

	// NewTransaction carries the fields supplied by the caller on insert.
	// The id is assigned by the store.
	NewTransaction struct {
		Kind     Kind
		Category string
		Amount   Amount
		Date     Date
	}
)

// Stamp identifies a ledger state. Ids are never reused and records never
// change, so two states with the same count and highest id hold the same
// records.
type Stamp struct {
	Count int
	MaxID int64
}

// StampOf returns the stamp of a snapshot.
func StampOf(records []Transaction) Stamp {
	st := Stamp{Count: len(records)}
	for _, r := range records {
		if r.ID > st.MaxID {
			st.MaxID = r.ID
		}
	}
	return st
}

// DateLayout is the canonical text form of a Date.
const DateLayout = "2006-01-02"

func (k Kind) Valid() bool {
	switch k {
	case Income, Expense:
		return true
	default:
		return false
	}
}

func (k Kind) String() string {
	return string(k)
}

// ParseKind accepts the kind names case-insensitively.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "income":
		return Income, nil
	case "expense":
		return Expense, nil
	}
	return "", &ValidationError{Field: "kind", Err: ErrInvalidKind}
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, &ValidationError{Field: "date", Err: ErrInvalidDate}
	}
	return Date{Time: t}, nil
}

// DateOf truncates t to its calendar date.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return &ValidationError{Field: "date", Err: ErrInvalidDate}
	}
	return nil
}

// Normalized returns n with surrounding whitespace removed from the
// category, so " Food" and "Food" land in the same group.
func (n NewTransaction) Normalized() NewTransaction {
	n.Category = strings.TrimSpace(n.Category)
	return n
}

// Validate checks the insert invariants: known kind, non-empty category,
// strictly positive amount and a set date.
func (n NewTransaction) Validate() error {
	if !n.Kind.Valid() {
		return &ValidationError{Field: "kind", Err: ErrInvalidKind}
	}
	if strings.TrimSpace(n.Category) == "" {
		return &ValidationError{Field: "category", Err: ErrEmptyCategory}
	}
	if err := n.Amount.Validate(); err != nil {
		return err
	}
	return n.Date.Validate()
}
