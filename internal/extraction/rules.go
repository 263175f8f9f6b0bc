package extraction

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// Field names an extracted value.
type Field string

const (
	FieldFullCard      Field = "full_card"
	FieldMaskedFour    Field = "masked_last_four"
	FieldAmount        Field = "amount"
	FieldMinPayment    Field = "min_payment"
	FieldStatementDate Field = "statement_date"
	FieldDueDate       Field = "due_date"
	FieldHolderName    Field = "holder_name"
)

// Source is an input a rule may search.
type Source int

const (
	FromText Source = iota
	FromSubject
)

// Rule pairs a cue and value pattern with the field it fills. Rules are
// independent; the extractor runs them in order and the first rule to yield a
// value for a field wins.
type Rule struct {
	Name    string
	Field   Field
	Pattern *regexp.Regexp
	// Sources are searched in order until one yields a value.
	Sources []Source
	// Skip suppresses the rule given what earlier rules found.
	Skip func(found *Fields) bool
	// Accept vets one match using the surrounding input. loc holds the
	// submatch index pairs from FindAllStringSubmatchIndex.
	Accept func(input string, loc []int) bool
	// Normalize turns the submatches into the stored value. Returning false
	// rejects this match and the search moves to the next one.
	Normalize func(groups []string) (string, bool)
}

// Apply returns the first accepted value of r in input.
func (r Rule) Apply(input string) (string, bool) {
	for _, loc := range r.Pattern.FindAllStringSubmatchIndex(input, -1) {
		if r.Accept != nil && !r.Accept(input, loc) {
			continue
		}
		groups := make([]string, len(loc)/2)
		for i := range groups {
			if loc[2*i] >= 0 {
				groups[i] = input[loc[2*i]:loc[2*i+1]]
			}
		}
		value := groups[len(groups)-1]
		if r.Normalize != nil {
			v, ok := r.Normalize(groups)
			if !ok {
				continue
			}
			value = v
		}
		return value, true
	}
	return "", false
}

const numberToken = `(-?(?:[0-9]{1,3}(?:,[0-9]{3})+|[0-9]+)(?:\.[0-9]{1,2})?)`
const dateToken = `(\d{4})\s*[-/年]\s*(\d{1,2})\s*[-/月]\s*(\d{1,2})`

var (
	fullCardRe   = regexp.MustCompile(`\b(\d{4,6}(?:[ \-]?\d{3,7}){1,5})\b`)
	maskedFourRe = regexp.MustCompile(`(?:尾号|末四位|后四位|[*＊]{2,}|[xX]{2,})[\s*＊xX为是：:]*(\d{4})\b`)
	amountRe     = regexp.MustCompile(`(本期应还款额|本期应还金额|本期应还|应还款额|应还金额|账单金额|本期账单金额|本期账单|总欠款|账单总额|还款总额)([^\d\n]{0,20}?)` + numberToken)
	minPaymentRe = regexp.MustCompile(`(最低应还款额|最低应还金额|最低还款额|最低还款|最低应还)([^\d\n]{0,20}?)` + numberToken)
	stmtDateRe   = regexp.MustCompile(`(?:账单日期?|出账日期?)[：:\s为]*` + dateToken)
	dueDateRe    = regexp.MustCompile(`(?:到期还款日期?|最后还款日期?|还款截止日期?|还款截止|还款日期?)[：:\s为]*` + dateToken)
	holderNameRe = regexp.MustCompile(`(?:尊敬的客户|尊敬的|亲爱的|持卡人(?:姓名)?|您好)[，,：:\s]*([^\s\p{P}\p{S}\p{N}]{2,8})(?:[\s\p{P}\p{S}]|$)`)
)

// DefaultNameBlocklist holds fragments that follow greeting cues but are not
// names.
var DefaultNameBlocklist = []string{"您", "您已", "请", "温馨", "客户", "用户"}

var honorifics = []string{"先生", "女士", "小姐"}

// DefaultRules returns a fresh copy of the built-in rule list.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:      "full card number",
			Field:     FieldFullCard,
			Pattern:   fullCardRe,
			Sources:   []Source{FromText},
			Normalize: normalizeCardNumber,
		},
		{
			Name:    "masked last four",
			Field:   FieldMaskedFour,
			Pattern: maskedFourRe,
			Sources: []Source{FromText, FromSubject},
			Skip:    func(f *Fields) bool { return f.FullCardNumber != "" },
		},
		{
			Name:      "statement amount",
			Field:     FieldAmount,
			Pattern:   amountRe,
			Sources:   []Source{FromText},
			Accept:    acceptAmount(true),
			Normalize: normalizeAmount,
		},
		{
			Name:      "minimum payment",
			Field:     FieldMinPayment,
			Pattern:   minPaymentRe,
			Sources:   []Source{FromText},
			Accept:    acceptAmount(false),
			Normalize: normalizeAmount,
		},
		{
			Name:      "statement date",
			Field:     FieldStatementDate,
			Pattern:   stmtDateRe,
			Sources:   []Source{FromText, FromSubject},
			Normalize: normalizeDate,
		},
		{
			Name:      "due date",
			Field:     FieldDueDate,
			Pattern:   dueDateRe,
			Sources:   []Source{FromText},
			Normalize: normalizeDate,
		},
		{
			Name:      "holder name",
			Field:     FieldHolderName,
			Pattern:   holderNameRe,
			Sources:   []Source{FromText},
			Normalize: NameNormalizer(DefaultNameBlocklist),
		},
	}
}

// normalizeCardNumber keeps the longest run of separated groups that is
// 15 to 19 digits long, so a number followed by a spaced amount still reads.
func normalizeCardNumber(groups []string) (string, bool) {
	parts := strings.FieldsFunc(groups[1], func(r rune) bool { return r == ' ' || r == '-' })
	var digits, best string
	for _, p := range parts {
		digits += p
		if len(digits) >= 15 && len(digits) <= 19 {
			best = digits
		}
	}
	return best, best != ""
}

// acceptAmount rejects matches whose number is really part of a date, and,
// for the statement amount, cues that are the tail of a minimum-payment
// phrase (最低应还款额 contains 应还款额).
func acceptAmount(rejectMinimum bool) func(string, []int) bool {
	return func(input string, loc []int) bool {
		if rejectMinimum && strings.HasSuffix(input[:loc[0]], "最低") {
			return false
		}
		gap := input[loc[4]:loc[5]]
		if strings.ContainsAny(gap, "日期") {
			return false
		}
		if r, _ := utf8.DecodeRuneInString(input[loc[7]:]); strings.ContainsRune("年月日-/", r) {
			return false
		}
		return true
	}
}

func normalizeAmount(groups []string) (string, bool) {
	v := strings.ReplaceAll(groups[len(groups)-1], ",", "")
	if v == "" {
		return "", false
	}
	return v, true
}

// normalizeDate zero-pads and validates a year, month, day triple.
func normalizeDate(groups []string) (string, bool) {
	n := len(groups)
	y, err1 := strconv.Atoi(groups[n-3])
	m, err2 := strconv.Atoi(groups[n-2])
	d, err3 := strconv.Atoi(groups[n-1])
	if err1 != nil || err2 != nil || err3 != nil {
		return "", false
	}
	s := fmt.Sprintf("%04d-%02d-%02d", y, m, d)
	if _, err := time.Parse("2006-01-02", s); err != nil {
		return "", false
	}
	return s, true
}

// NameNormalizer trims honorific suffixes and rejects candidates containing
// a blocklisted fragment.
func NameNormalizer(blocklist []string) func([]string) (string, bool) {
	blocked := append([]string(nil), blocklist...)
	return func(groups []string) (string, bool) {
		name := groups[len(groups)-1]
		for _, b := range blocked {
			if strings.Contains(name, b) {
				return "", false
			}
		}
		for _, h := range honorifics {
			name = strings.TrimSuffix(name, h)
		}
		if utf8.RuneCountInString(name) < 2 {
			return "", false
		}
		return name, true
	}
}
