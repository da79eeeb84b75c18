package domain

import (
	"encoding/json"
	"fmt"
)

// DateFields are the solicitation attributes that carry portal-formatted
// dates and participate in the evaluator's date-range shorthand.
var DateFields = []string{"evp_opendate", "evp_closedate", "evp_posteddate"}

// Solicitation is one record retrieved from a procurement portal. Field
// names follow the portal's attribute names so stored filter criteria can
// reference them directly.
type Solicitation struct {
	ID             string `json:"id"`
	EntityName     string `json:"entityName"`
	StateCode      string `json:"statecode"`
	StatusCode     string `json:"statuscode"`
	Name           string `json:"evp_name"`
	Number         string `json:"evp_solicitationnbr"`
	SolicitationID string `json:"evp_solicitationid"`
	Description    string `json:"evp_description"`
	OwningUnit     string `json:"owningbusinessunit"`
	OpenDate       string `json:"evp_opendate"`
	CloseDate      string `json:"evp_closedate"`
	PostedDate     string `json:"evp_posteddate"`
}

// Field looks up an attribute by its portal name. Unknown names resolve to
// the empty string rather than an error, so filters may reference fields a
// given portal does not supply.
func (s Solicitation) Field(name string) string {
	switch name {
	case "Id":
		return s.ID
	case "EntityName":
		return s.EntityName
	case "statecode":
		return s.StateCode
	case "statuscode":
		return s.StatusCode
	case "evp_name":
		return s.Name
	case "evp_solicitationnbr":
		return s.Number
	case "evp_solicitationid":
		return s.SolicitationID
	case "evp_description":
		return s.Description
	case "owningbusinessunit":
		return s.OwningUnit
	case "evp_opendate":
		return s.OpenDate
	case "evp_closedate":
		return s.CloseDate
	case "evp_posteddate":
		return s.PostedDate
	}
	return ""
}

// GridRecord is the wire shape of one record in the portal's
// entity-grid-data response.
type GridRecord struct {
	ID         string `json:"Id"`
	EntityName string `json:"EntityName"`
	Attributes []struct {
		Name         string          `json:"Name"`
		DisplayValue json.RawMessage `json:"DisplayValue"`
	} `json:"Attributes"`
}

// SolicitationFromGridRecord flattens a grid record's attribute list into a
// Solicitation. Attributes the model does not know are ignored.
func SolicitationFromGridRecord(rec GridRecord) (Solicitation, error) {
	if len(rec.Attributes) == 0 {
		return Solicitation{}, fmt.Errorf("record %s has no attributes", rec.ID)
	}

	s := Solicitation{
		ID:         rec.ID,
		EntityName: rec.EntityName,
	}

	for _, attr := range rec.Attributes {
		// DisplayValue is usually a string but the portal emits numbers and
		// nulls for some attribute types
		var value string
		if err := json.Unmarshal(attr.DisplayValue, &value); err != nil {
			value = string(attr.DisplayValue)
			if value == "null" {
				value = ""
			}
		}

		switch attr.Name {
		case "statecode":
			s.StateCode = value
		case "statuscode":
			s.StatusCode = value
		case "evp_name":
			s.Name = value
		case "evp_solicitationnbr":
			s.Number = value
		case "evp_solicitationid":
			s.SolicitationID = value
		case "evp_description":
			s.Description = value
		case "owningbusinessunit":
			s.OwningUnit = value
		case "evp_opendate":
			s.OpenDate = value
		case "evp_closedate":
			s.CloseDate = value
		case "evp_posteddate":
			s.PostedDate = value
		}
	}

	return s, nil
}
