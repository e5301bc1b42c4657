package verification

import (
	"regexp"
	"strings"
)

// fieldAliases maps each canonical payload key to the spellings providers use for it.
// The first present alias wins.
var fieldAliases = []struct {
	key     string
	aliases []string
}{
	{"vnin", []string{"vnin", "VNIN"}},
	{"title", []string{"title", "Title"}},
	{"surname", []string{"surname", "Surname", "lastname", "LastName"}},
	{"firstname", []string{"firstname", "Firstname", "FirstName"}},
	{"middlename", []string{"middlename", "Middlename", "middleName", "MiddleName"}},
	{"email", []string{"email", "Email"}},
	{"gender", []string{"gender", "Gender"}},
	{"state_of_origin", []string{"state_of_origin", "stateOfOrigin", "StateOfOrigin"}},
	{"religion", []string{"religion", "Religion"}},
	{"profession", []string{"profession", "Profession"}},
	{"residence_address", []string{"residence_address", "residenceAddress", "ResidenceAddress"}},
	{"residence_lga", []string{"residence_lga", "residenceLga", "ResidenceLGA"}},
	{"residence_state", []string{"residence_state", "residenceState", "ResidenceState"}},
	{"nok_surname", []string{"nok_surname", "nokSurname"}},
	{"nok_lga", []string{"nok_lga", "nokLga"}},
	{"nok_state", []string{"nok_state", "nokState"}},
	{"nok_town", []string{"nok_town", "nokTown"}},
	{"maiden_name", []string{"maiden_name", "maidenName"}},
	{"tracking_id", []string{"tracking_id", "trackingId", "TrackingID"}},
	{"birthcountry", []string{"birthcountry", "birthCountry"}},
	{"birthdate", []string{"birthdate", "birthDate", "BirthDate"}},
	{"birthlga", []string{"birthlga", "birthLga"}},
	{"birthstate", []string{"birthstate", "birthState"}},
	{"central_id", []string{"central_iD", "centralID", "centralId", "CentralID"}},
	{"educationallevel", []string{"educationallevel", "educationalLevel"}},
	{"employmentstatus", []string{"employmentstatus", "employmentStatus"}},
	{"height", []string{"heigth", "height", "Height"}},
	{"lga_origin", []string{"lga_origin", "lgaOrigin"}},
	{"maritalstatus", []string{"maritalstatus", "maritalStatus"}},
	{"nok_address1", []string{"nok_address1", "nokAddress1"}},
	{"nok_address2", []string{"nok_address2", "nokAddress2"}},
	{"nok_firstname", []string{"nok_firstname", "nokFirstname"}},
	{"nok_middlename", []string{"nok_middlename", "nokMiddlename"}},
	{"nok_postalcode", []string{"nok_postalcode", "nokPostalcode"}},
	{"nspokenlang", []string{"nspokenlang"}},
	{"ospokenlang", []string{"ospokenlang"}},
	{"pfirstname", []string{"pfirstname"}},
	{"photo", []string{"photo", "Photo"}},
	{"pmiddlename", []string{"pmiddlename"}},
	{"psurname", []string{"psurname"}},
	{"residence_address_line1", []string{"residence_AdressLine1", "residenceAddressLine1"}},
	{"residence_town", []string{"residence_Town", "residenceTown"}},
	{"residencestatus", []string{"residencestatus", "residenceStatus"}},
	{"self_origin_lga", []string{"self_origin_lga", "selfOriginLga"}},
	{"self_origin_place", []string{"self_origin_place", "selfOriginPlace"}},
	{"self_origin_state", []string{"self_origin_state", "selfOriginState"}},
	{"signature", []string{"signature", "Signature"}},
	{"spoken_language", []string{"spoken_language", "spokenLanguage"}},
	{"telephoneno", []string{"telephoneno", "telephoneNo", "TelephoneNo"}},
	{"userid", []string{"userid", "userId", "UserID"}},
}

var dayFirstDate = regexp.MustCompile(`^(\d{2})-(\d{2})-(\d{4})$`)

// Normalize maps a raw provider payload onto canonical keys.
// Strings lose NUL bytes and surrounding space; empty and null values are dropped.
// A day-first birthdate (DD-MM-YYYY) is rewritten as YYYY-MM-DD.
func Normalize(raw map[string]any) map[string]any {
	out := make(map[string]any, len(fieldAliases))
	for _, f := range fieldAliases {
		for _, alias := range f.aliases {
			v, ok := raw[alias]
			if !ok || v == nil {
				continue
			}
			if cleaned, keep := clean(v); keep {
				out[f.key] = cleaned
			}
			break
		}
	}
	if bd, ok := out["birthdate"].(string); ok {
		out["birthdate"] = isoBirthdate(bd)
	}
	return out
}

func isoBirthdate(s string) string {
	m := dayFirstDate.FindStringSubmatch(s)
	if m == nil {
		return s
	}
	return m[3] + "-" + m[2] + "-" + m[1]
}

// clean strips one value, reporting whether anything is left
func clean(v any) (any, bool) {
	switch t := v.(type) {
	case nil:
		return nil, false
	case string:
		s := strings.TrimSpace(strings.ReplaceAll(t, "\x00", ""))
		return s, s != ""
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, inner := range t {
			if c, ok := clean(inner); ok {
				m[k] = c
			}
		}
		return m, len(m) > 0
	case []any:
		items := make([]any, 0, len(t))
		for _, inner := range t {
			if c, ok := clean(inner); ok {
				items = append(items, c)
			}
		}
		return items, len(items) > 0
	default:
		return v, true
	}
}
