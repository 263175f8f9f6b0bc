package extraction

import (
	"github.com/castlemilk/cardkeeper/internal/model"
	"github.com/shopspring/decimal"
)

// Fields are the statement values recovered from one message. Every field is
// optional; an empty Fields is a valid result.
type Fields struct {
	BankName       string
	FullCardNumber string
	MaskedLastFour string
	HolderName     string
	Amount         *decimal.Decimal
	MinPayment     *decimal.Decimal
	StatementDate  string
	DueDate        string
	Currency       string
}

// LastFour is the final four digits of the full card number, or the masked
// last four when no full number was found.
func (f *Fields) LastFour() string {
	if n := len(f.FullCardNumber); n >= 4 {
		return f.FullCardNumber[n-4:]
	}
	return f.MaskedLastFour
}

func (f *Fields) has(field Field) bool {
	switch field {
	case FieldFullCard:
		return f.FullCardNumber != ""
	case FieldMaskedFour:
		return f.MaskedLastFour != ""
	case FieldAmount:
		return f.Amount != nil
	case FieldMinPayment:
		return f.MinPayment != nil
	case FieldStatementDate:
		return f.StatementDate != ""
	case FieldDueDate:
		return f.DueDate != ""
	case FieldHolderName:
		return f.HolderName != ""
	}
	return false
}

// set stores value and reports whether it was usable.
func (f *Fields) set(field Field, value string) bool {
	switch field {
	case FieldFullCard:
		f.FullCardNumber = value
	case FieldMaskedFour:
		f.MaskedLastFour = value
	case FieldAmount, FieldMinPayment:
		d, err := decimal.NewFromString(value)
		if err != nil {
			return false
		}
		if field == FieldAmount {
			f.Amount = &d
		} else {
			f.MinPayment = &d
		}
	case FieldStatementDate:
		f.StatementDate = value
	case FieldDueDate:
		f.DueDate = value
	case FieldHolderName:
		f.HolderName = value
	default:
		return false
	}
	return true
}

// Extractor applies a bank table and an ordered rule list. It is immutable
// and safe for concurrent use.
type Extractor struct {
	banks BankTable
	rules []Rule
}

// NewExtractor copies rules; nil rules selects DefaultRules.
func NewExtractor(banks BankTable, rules []Rule) *Extractor {
	if rules == nil {
		rules = DefaultRules()
	}
	return &Extractor{banks: banks, rules: append([]Rule(nil), rules...)}
}

// Extract never fails; values that are not found stay empty.
func (e *Extractor) Extract(text, subject, sender string) Fields {
	f := Fields{
		BankName: e.banks.Lookup(sender, subject),
		Currency: model.DefaultCurrency,
	}
	inputs := map[Source]string{FromText: text, FromSubject: subject}

	for _, r := range e.rules {
		if f.has(r.Field) {
			continue
		}
		if r.Skip != nil && r.Skip(&f) {
			continue
		}
		for _, src := range r.Sources {
			input := inputs[src]
			if input == "" {
				continue
			}
			if v, ok := r.Apply(input); ok && f.set(r.Field, v) {
				break
			}
		}
	}
	return f
}
