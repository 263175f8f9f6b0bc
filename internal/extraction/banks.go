package extraction

import (
	"strings"
)

// BankEntry maps a sender domain label or subject keyword to a bank name.
type BankEntry struct {
	Key  string `mapstructure:"key"`
	Bank string `mapstructure:"bank"`
}

// BankTable resolves a bank from a sender address or subject. Entries are
// kept in order and never modified after construction.
type BankTable struct {
	domains  []BankEntry
	keywords []BankEntry
}

var defaultBankDomains = []BankEntry{
	{"cmbchina", "招商银行"},
	{"icbc", "工商银行"},
	{"ccb", "建设银行"},
	{"abchina", "农业银行"},
	{"bankcomm", "交通银行"},
	{"spdb", "浦发银行"},
	{"cib", "兴业银行"},
	{"cmbc", "民生银行"},
	{"cgbchina", "广发银行"},
	{"pingan", "平安银行"},
	{"citic", "中信银行"},
	{"hxb", "华夏银行"},
	{"boc", "中国银行"},
	{"psbc", "邮储银行"},
}

var defaultBankKeywords = []BankEntry{
	{"招商", "招商银行"},
	{"工商", "工商银行"},
	{"建设", "建设银行"},
	{"农业", "农业银行"},
	{"交通", "交通银行"},
	{"浦发", "浦发银行"},
	{"兴业", "兴业银行"},
	{"民生", "民生银行"},
	{"广发", "广发银行"},
	{"平安", "平安银行"},
	{"中信", "中信银行"},
	{"华夏", "华夏银行"},
	{"中国银行", "中国银行"},
	{"邮储", "邮储银行"},
}

// NewBankTable copies the given entries. Domain keys are matched against
// whole labels of the sender's domain, case-insensitively.
func NewBankTable(domains, keywords []BankEntry) BankTable {
	t := BankTable{
		domains:  make([]BankEntry, 0, len(domains)),
		keywords: make([]BankEntry, 0, len(keywords)),
	}
	for _, e := range domains {
		if e.Key == "" || e.Bank == "" {
			continue
		}
		t.domains = append(t.domains, BankEntry{Key: strings.ToLower(e.Key), Bank: e.Bank})
	}
	for _, e := range keywords {
		if e.Key == "" || e.Bank == "" {
			continue
		}
		t.keywords = append(t.keywords, e)
	}
	return t
}

// DefaultBankTable covers the major mainland card issuers.
func DefaultBankTable() BankTable {
	return NewBankTable(defaultBankDomains, defaultBankKeywords)
}

// Extend returns a new table with extra entries consulted before the
// existing ones.
func (t BankTable) Extend(domains, keywords []BankEntry) BankTable {
	return NewBankTable(
		append(append([]BankEntry{}, domains...), t.domains...),
		append(append([]BankEntry{}, keywords...), t.keywords...),
	)
}

// Lookup checks the sender domain first, then the subject keywords. The
// first matching entry wins; no match returns "".
func (t BankTable) Lookup(sender, subject string) string {
	labels := domainLabels(sender)
	for _, e := range t.domains {
		for _, l := range labels {
			if l == e.Key {
				return e.Bank
			}
		}
	}
	for _, e := range t.keywords {
		if strings.Contains(subject, e.Key) {
			return e.Bank
		}
	}
	return ""
}

// domainLabels splits the domain part of an address into lower-case labels.
// "Bank <service@ccc.cmbchina.com>" yields [ccc cmbchina com].
func domainLabels(sender string) []string {
	s := strings.ToLower(strings.TrimSpace(sender))
	if i := strings.LastIndex(s, "@"); i >= 0 {
		s = s[i+1:]
	}
	s = strings.Trim(s, "<> ")
	if s == "" {
		return nil
	}
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == '.' || r == '>' || r == ' '
	})
}
