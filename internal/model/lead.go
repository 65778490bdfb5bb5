package model

// Lead holds the attribute set of one CRM lead for fresh validation. The five
// identity fields are named; anything else the CRM returns rides along in
// Extra so the generic data-quality scan can see it.
type Lead struct {
	ID         string `json:"id,omitempty"`
	FirstName  string `json:"first_name,omitempty"`
	LastName   string `json:"last_name,omitempty"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Company    string `json:"company,omitempty"`
	Status     string `json:"status,omitempty"`
	Title      string `json:"title,omitempty"`
	Industry   string `json:"industry,omitempty"`
	LeadSource string `json:"lead_source,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	Country    string `json:"country,omitempty"`

	Extra map[string]string `json:"extra,omitempty"`
}

// Field returns the value of a named lead attribute. Names follow the CRM's
// API field names (FirstName, LastName, Email, Phone, Company, Status, Title,
// Industry, LeadSource, City, State, Country); unknown names fall through to
// the Extra bag.
func (l Lead) Field(name string) string {
	switch name {
	case "FirstName":
		return l.FirstName
	case "LastName":
		return l.LastName
	case "Email":
		return l.Email
	case "Phone":
		return l.Phone
	case "Company":
		return l.Company
	case "Status":
		return l.Status
	case "Title":
		return l.Title
	case "Industry":
		return l.Industry
	case "LeadSource":
		return l.LeadSource
	case "City":
		return l.City
	case "State":
		return l.State
	case "Country":
		return l.Country
	}
	return l.Extra[name]
}

// StringFields returns every non-empty string attribute on the lead, keyed by
// field name, including the Extra bag. Used by the generic quality scan.
func (l Lead) StringFields() map[string]string {
	out := make(map[string]string, 12+len(l.Extra))
	named := map[string]string{
		"FirstName":  l.FirstName,
		"LastName":   l.LastName,
		"Email":      l.Email,
		"Phone":      l.Phone,
		"Company":    l.Company,
		"Status":     l.Status,
		"Title":      l.Title,
		"Industry":   l.Industry,
		"LeadSource": l.LeadSource,
		"City":       l.City,
		"State":      l.State,
		"Country":    l.Country,
	}
	for k, v := range named {
		if v != "" {
			out[k] = v
		}
	}
	for k, v := range l.Extra {
		if v != "" {
			out[k] = v
		}
	}
	return out
}
