package main

import (
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadval-cli/internal/model"
)

// csvHeaderMap maps normalized CSV header names to Lead field names. Headers
// are matched after lowercasing and stripping spaces and underscores, so
// "First Name", "first_name" and "FirstName" all map to the same field.
var csvHeaderMap = map[string]string{
	"id":         "ID",
	"leadid":     "ID",
	"firstname":  "FirstName",
	"lastname":   "LastName",
	"email":      "Email",
	"phone":      "Phone",
	"company":    "Company",
	"status":     "Status",
	"title":      "Title",
	"industry":   "Industry",
	"leadsource": "LeadSource",
	"source":     "LeadSource",
	"city":       "City",
	"state":      "State",
	"country":    "Country",
}

// readLeadsCSV loads leads from a CSV file with a header row. Unrecognized
// columns ride along in each lead's Extra bag under their original header.
func readLeadsCSV(path string) ([]model.Lead, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "open leads csv")
	}
	defer f.Close() //nolint:errcheck

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, eris.Wrap(err, "read csv header")
	}

	fields := make([]string, len(header))
	for i, h := range header {
		norm := strings.ToLower(strings.NewReplacer(" ", "", "_", "").Replace(strings.TrimSpace(h)))
		if name, ok := csvHeaderMap[norm]; ok {
			fields[i] = name
		}
	}

	var leads []model.Lead
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "read csv row")
		}

		var lead model.Lead
		for i, val := range row {
			if i >= len(fields) {
				break
			}
			val = strings.TrimSpace(val)
			if val == "" {
				continue
			}
			switch fields[i] {
			case "ID":
				lead.ID = val
			case "FirstName":
				lead.FirstName = val
			case "LastName":
				lead.LastName = val
			case "Email":
				lead.Email = val
			case "Phone":
				lead.Phone = val
			case "Company":
				lead.Company = val
			case "Status":
				lead.Status = val
			case "Title":
				lead.Title = val
			case "Industry":
				lead.Industry = val
			case "LeadSource":
				lead.LeadSource = val
			case "City":
				lead.City = val
			case "State":
				lead.State = val
			case "Country":
				lead.Country = val
			default:
				if lead.Extra == nil {
					lead.Extra = map[string]string{}
				}
				lead.Extra[strings.TrimSpace(header[i])] = val
			}
		}
		leads = append(leads, lead)
	}
	return leads, nil
}
