package model

// ProcedureCodeType represents one of the billing code systems a fee
// schedule row can be keyed by.
type ProcedureCodeType struct {
	Name    string // e.g. "CPT"
	Pattern string // canonical shape after normalization, informational
}

// AllProcedureCodeTypes lists the supported code systems in canonical order.
var AllProcedureCodeTypes = []ProcedureCodeType{
	{Name: "CPT", Pattern: "5 digits, optional trailing F/T/U"},
	{Name: "HCPCS", Pattern: "letter + 4 digits"},
	{Name: "CDT", Pattern: "D + 4 digits"},
}

// ProcedureCodeTypeByName returns the ProcedureCodeType for the given name, or ok=false.
func ProcedureCodeTypeByName(name string) (ProcedureCodeType, bool) {
	for _, ct := range AllProcedureCodeTypes {
		if ct.Name == name {
			return ct, true
		}
	}
	return ProcedureCodeType{}, false
}

// InferCodeType guesses the code system from a normalized code.
// CDT is checked before HCPCS because both start with a letter.
func InferCodeType(code string) string {
	switch {
	case len(code) == 5 && code[0] == 'D' && allDigits(code[1:]):
		return "CDT"
	case len(code) == 5 && code[0] >= 'A' && code[0] <= 'Z' && allDigits(code[1:]):
		return "HCPCS"
	case len(code) == 5 && allDigits(code[:4]):
		return "CPT"
	}
	return ""
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}
