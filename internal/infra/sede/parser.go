package sede

import (
	"encoding/json"
	"regexp"
	"time"

	"fidelity/internal/domain/entity"
)

// The registry has answered with several shapes over time: rows nested
// under response[0].dataset, rows under a top-level dataset, a bare
// object, and occasionally a bare string holding just the identity code.
// Matchers are tried in order; exhausting them means "not found", never
// an error.
var rowMatchers = []func([]byte) ([]json.RawMessage, bool){
	matchNestedDataset,
	matchTopLevelDataset,
	matchBareObject,
}

var bareCodePattern = regexp.MustCompile(`^[A-Za-z]{2,8}[0-9]{3,}$`)

// identityRow mirrors one registry dataset row.
type identityRow struct {
	Code       string `json:"codice_fidelity"`
	Name       string `json:"nome"`
	Surname    string `json:"cognome"`
	Email      string `json:"email"`
	Phone      string `json:"cellulare"`
	Address    string `json:"indirizzo"`
	City       string `json:"localita"`
	PostalCode string `json:"cap"`
	Province   string `json:"provincia"`
	Country    string `json:"nazione"`
	Sex        string `json:"sesso"`
	BirthDate  string `json:"data_nascita"`
	Store      string `json:"store"`
	CdNe       string `json:"cd_ne"`
}

func matchNestedDataset(body []byte) ([]json.RawMessage, bool) {
	var doc struct {
		Response []struct {
			Dataset []json.RawMessage `json:"dataset"`
		} `json:"response"`
	}
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, false
	}
	if len(doc.Response) == 0 || len(doc.Response[0].Dataset) == 0 {
		return nil, false
	}

	return doc.Response[0].Dataset, true
}

func matchTopLevelDataset(body []byte) ([]json.RawMessage, bool) {
	var doc struct {
		Dataset []json.RawMessage `json:"dataset"`
	}
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, false
	}
	if len(doc.Dataset) == 0 {
		return nil, false
	}

	return doc.Dataset, true
}

func matchBareObject(body []byte) ([]json.RawMessage, bool) {
	var row identityRow
	if err := json.Unmarshal(body, &row); err != nil {
		return nil, false
	}
	if row.Code == "" && row.Email == "" {
		return nil, false
	}

	return []json.RawMessage{json.RawMessage(body)}, true
}

// parseRows extracts the dataset rows from a registry response body,
// whichever shape it arrived in.
func parseRows(body []byte) ([]json.RawMessage, bool) {
	for _, match := range rowMatchers {
		if rows, ok := match(body); ok {
			return rows, true
		}
	}

	return nil, false
}

// parseIdentity extracts a single identity from a response body.
// fallbackEmail fills the email field when the row omits it (lookups by
// email already know the address).
func parseIdentity(body []byte, fallbackEmail string) *entity.RemoteIdentity {
	if rows, ok := parseRows(body); ok {
		return rowToIdentity(rows[0], fallbackEmail)
	}

	// Last resort: a bare JSON string that looks like an identity code.
	var bare string
	if err := json.Unmarshal(body, &bare); err == nil && bareCodePattern.MatchString(bare) {
		return &entity.RemoteIdentity{
			Found:        true,
			IdentityCode: bare,
			Email:        fallbackEmail,
		}
	}

	return nil
}

// parseIdentityList extracts every dataset row of a bulk response.
func parseIdentityList(body []byte) []*entity.RemoteIdentity {
	rows, ok := parseRows(body)
	if !ok {
		return nil
	}

	identities := make([]*entity.RemoteIdentity, 0, len(rows))
	for _, row := range rows {
		if identity := rowToIdentity(row, ""); identity != nil {
			identities = append(identities, identity)
		}
	}

	return identities
}

// parseAssignedCode extracts the identity code assigned by a Put call.
func parseAssignedCode(body []byte) string {
	if rows, ok := parseRows(body); ok {
		var row identityRow
		if err := json.Unmarshal(rows[0], &row); err == nil {
			return row.Code
		}

		return ""
	}

	var bare string
	if err := json.Unmarshal(body, &bare); err == nil && bareCodePattern.MatchString(bare) {
		return bare
	}

	return ""
}

func rowToIdentity(raw json.RawMessage, fallbackEmail string) *entity.RemoteIdentity {
	var row identityRow
	if err := json.Unmarshal(raw, &row); err != nil {
		return nil
	}

	identity := &entity.RemoteIdentity{
		Found:        true,
		IdentityCode: row.Code,
		Name:         row.Name,
		Surname:      row.Surname,
		Email:        entity.NormalizeEmail(row.Email),
		Phone:        row.Phone,
		Address:      row.Address,
		City:         row.City,
		PostalCode:   row.PostalCode,
		Province:     row.Province,
		Country:      row.Country,
		Sex:          row.Sex,
		Store:        row.Store,
	}

	if identity.Email == "" {
		identity.Email = entity.NormalizeEmail(fallbackEmail)
	}
	if identity.Store == "" {
		identity.Store = row.CdNe
	}
	if birth := parseBirthDate(row.BirthDate); birth != nil {
		identity.BirthDate = birth
	}

	return identity
}

var birthDateLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02",
	"20060102",
	"02/01/2006",
}

func parseBirthDate(value string) *time.Time {
	for _, layout := range birthDateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return &parsed
		}
	}

	return nil
}
