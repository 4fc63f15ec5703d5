package profile

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/spigell/card-advisor/internal/catalog"
)

// Spend is the monthly amount a user spends in one category.
type Spend struct {
	Category catalog.Category
	Amount   float64
}

// SpendingHabits is an insertion-ordered mapping from category to monthly spend.
// Scoring walks the entries in this order, so the order is part of the result.
type SpendingHabits []Spend

// Set stores the amount for the category. An existing entry keeps its position.
func (s *SpendingHabits) Set(category catalog.Category, amount float64) error {
	if !category.Valid() || category == catalog.General {
		return fmt.Errorf("category %q cannot hold spending", category)
	}
	if amount < 0 {
		return fmt.Errorf("spending for %q must not be negative", category)
	}

	for i := range *s {
		if (*s)[i].Category == category {
			(*s)[i].Amount = amount
			return nil
		}
	}
	*s = append(*s, Spend{Category: category, Amount: amount})
	return nil
}

func (s SpendingHabits) Get(category catalog.Category) (float64, bool) {
	for _, e := range s {
		if e.Category == category {
			return e.Amount, true
		}
	}
	return 0, false
}

func (s SpendingHabits) Total() float64 {
	var total float64
	for _, e := range s {
		total += e.Amount
	}
	return total
}

func (s SpendingHabits) Len() int { return len(s) }

// MarshalJSON encodes the habits as a JSON object keeping entry order.
func (s SpendingHabits) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(string(e.Category))
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(e.Amount)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object keeping the key order of the document.
func (s *SpendingHabits) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*s = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("spending habits: expected object, got %v", tok)
	}

	var habits SpendingHabits
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		category, err := catalog.ParseCategory(fmt.Sprint(keyTok))
		if err != nil {
			return fmt.Errorf("spending habits: %w", err)
		}

		var amount float64
		if err := dec.Decode(&amount); err != nil {
			return fmt.Errorf("spending habits: %s: %w", category, err)
		}
		if err := habits.Set(category, amount); err != nil {
			return fmt.Errorf("spending habits: %w", err)
		}
	}

	if _, err := dec.Token(); err != nil {
		return err
	}

	*s = habits
	return nil
}

// UserProfile is the self-reported financial profile of one consultation.
// Nil pointers mean the value is unknown.
type UserProfile struct {
	MonthlyIncome     *float64       `json:"monthly_income,omitempty"`
	SpendingHabits    SpendingHabits `json:"spending_habits,omitempty"`
	PreferredBenefits []string       `json:"preferred_benefits,omitempty"`
	CreditScore       *int           `json:"credit_score,omitempty"`
}

func (p *UserProfile) SetMonthlyIncome(v float64) { p.MonthlyIncome = &v }

func (p *UserProfile) SetCreditScore(v int) { p.CreditScore = &v }

// AnnualIncome returns the yearly income and whether it is known.
func (p *UserProfile) AnnualIncome() (float64, bool) {
	if p == nil || p.MonthlyIncome == nil {
		return 0, false
	}
	return *p.MonthlyIncome * 12, true
}

// Clone returns a deep copy of the profile.
func (p *UserProfile) Clone() *UserProfile {
	if p == nil {
		return nil
	}

	out := &UserProfile{}
	if p.MonthlyIncome != nil {
		out.SetMonthlyIncome(*p.MonthlyIncome)
	}
	if p.CreditScore != nil {
		out.SetCreditScore(*p.CreditScore)
	}
	if p.SpendingHabits != nil {
		out.SpendingHabits = append(SpendingHabits{}, p.SpendingHabits...)
	}
	if p.PreferredBenefits != nil {
		out.PreferredBenefits = append([]string{}, p.PreferredBenefits...)
	}
	return out
}
