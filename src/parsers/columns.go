package parsers

import "strings"

// RoleMap names the statement column detected for each semantic role. An
// empty string means no header matched that role.
type RoleMap struct {
	Date        string
	Description string
	Category    string
	Contact     string
	Amount      string
	Debit       string
	Credit      string
	DebitSGD    string
	CreditSGD   string
}

// HasDebitCredit reports whether the statement uses the two-column
// debit/credit convention rather than a single signed amount column.
func (m RoleMap) HasDebitCredit() bool {
	return m.Debit != "" && m.Credit != ""
}

// InferColumns heuristically assigns semantic roles to statement headers.
// Headers must already be whitespace-trimmed. Matching is case-insensitive
// substring matching; roles are evaluated independently and the first header
// matching a role wins, so a single header may satisfy several roles.
//
// It fails with ErrMissingRequiredColumns when neither a date nor a
// description column resolves, and with ErrNoAmountColumns when neither an
// amount column nor a debit/credit pair resolves. Missing category or
// contact columns are soft warnings; downstream defaults apply.
func InferColumns(headers []string) (RoleMap, []string, error) {
	var roles RoleMap

	for _, header := range headers {
		lower := strings.ToLower(header)

		if roles.Date == "" && strings.Contains(lower, "date") {
			roles.Date = header
		}
		if roles.Description == "" && containsAny(lower, "description", "particulars", "details", "narrative") {
			roles.Description = header
		}
		if roles.Category == "" && strings.Contains(lower, "category") {
			roles.Category = header
		}
		if roles.Contact == "" && strings.Contains(lower, "contact") {
			roles.Contact = header
		}
		if roles.Amount == "" && strings.Contains(lower, "amount") && !strings.Contains(lower, "balance") {
			roles.Amount = header
		}
		if roles.Debit == "" && (lower == "debit" || (strings.Contains(lower, "debit") && !strings.Contains(lower, "sgd"))) {
			roles.Debit = header
		}
		if roles.Credit == "" && (lower == "credit" || (strings.Contains(lower, "credit") && !strings.Contains(lower, "sgd"))) {
			roles.Credit = header
		}
		if roles.DebitSGD == "" && strings.Contains(lower, "debit") && strings.Contains(lower, "sgd") {
			roles.DebitSGD = header
		}
		if roles.CreditSGD == "" && strings.Contains(lower, "credit") && strings.Contains(lower, "sgd") {
			roles.CreditSGD = header
		}
	}

	if roles.Date == "" && roles.Description == "" {
		return roles, nil, ErrMissingRequiredColumns
	}
	if roles.Amount == "" && !roles.HasDebitCredit() {
		return roles, nil, ErrNoAmountColumns
	}

	var warnings []string
	if roles.Category == "" {
		warnings = append(warnings, "no category column found; all transactions will be Uncategorized")
	}
	if roles.Contact == "" {
		warnings = append(warnings, "no contact column found; contacts default to empty")
	}

	return roles, warnings, nil
}

func containsAny(s string, substrings ...string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
