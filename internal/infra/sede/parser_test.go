package sede

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const nestedDatasetBody = `{
	"response": [{
		"dataset": [{
			"codice_fidelity": "NE0012345",
			"nome": "Mario",
			"cognome": "Rossi",
			"email": "Mario.Rossi@Example.com",
			"cellulare": "3331234567",
			"indirizzo": "Via Roma 1",
			"localita": "Milano",
			"cap": "20100",
			"provincia": "MI",
			"nazione": "IT",
			"sesso": "M",
			"data_nascita": "1980-05-17T00:00:00",
			"store": "NE001"
		}]
	}]
}`

func TestParseIdentity_NestedDataset(t *testing.T) {
	identity := parseIdentity([]byte(nestedDatasetBody), "")
	require.NotNil(t, identity)

	assert.True(t, identity.Found)
	assert.Equal(t, "NE0012345", identity.IdentityCode)
	assert.Equal(t, "Mario", identity.Name)
	assert.Equal(t, "Rossi", identity.Surname)
	assert.Equal(t, "mario.rossi@example.com", identity.Email)
	assert.Equal(t, "MI", identity.Province)
	assert.Equal(t, "NE001", identity.Store)
	require.NotNil(t, identity.BirthDate)
	assert.Equal(t, time.Date(1980, 5, 17, 0, 0, 0, 0, time.UTC), *identity.BirthDate)
}

func TestParseIdentity_TopLevelDataset(t *testing.T) {
	body := `{"dataset": [{"codice_fidelity": "NE0012345", "email": "user@example.com"}]}`

	identity := parseIdentity([]byte(body), "")
	require.NotNil(t, identity)
	assert.Equal(t, "NE0012345", identity.IdentityCode)
	assert.Equal(t, "user@example.com", identity.Email)
}

func TestParseIdentity_BareObject(t *testing.T) {
	body := `{"codice_fidelity": "NE0012345", "nome": "Mario", "cd_ne": "NE002"}`

	identity := parseIdentity([]byte(body), "fallback@example.com")
	require.NotNil(t, identity)
	assert.Equal(t, "NE0012345", identity.IdentityCode)
	assert.Equal(t, "fallback@example.com", identity.Email, "missing email falls back to the lookup key")
	assert.Equal(t, "NE002", identity.Store, "cd_ne stands in when store is absent")
}

func TestParseIdentity_BareString(t *testing.T) {
	identity := parseIdentity([]byte(`"NE0012345"`), "user@example.com")
	require.NotNil(t, identity)
	assert.Equal(t, "NE0012345", identity.IdentityCode)
	assert.Equal(t, "user@example.com", identity.Email)
}

func TestParseIdentity_NotFoundShapes(t *testing.T) {
	bodies := map[string]string{
		"empty response array": `{"response": []}`,
		"empty dataset":        `{"response": [{"dataset": []}]}`,
		"empty object":         `{}`,
		"unrelated object":     `{"status": "ok"}`,
		"bare non-code string": `"hello world"`,
		"garbage":              `<html>Service Unavailable</html>`,
		"null":                 `null`,
		"empty body":           ``,
	}

	for name, body := range bodies {
		assert.Nil(t, parseIdentity([]byte(body), "user@example.com"), name)
	}
}

func TestParseIdentityList(t *testing.T) {
	body := `{"response": [{"dataset": [
		{"codice_fidelity": "NE0000001", "email": "a@example.com"},
		{"codice_fidelity": "NE0000002", "email": "b@example.com"},
		{"codice_fidelity": "NE0000003"}
	]}]}`

	identities := parseIdentityList([]byte(body))
	require.Len(t, identities, 3)
	assert.Equal(t, "NE0000001", identities[0].IdentityCode)
	assert.Equal(t, "a@example.com", identities[0].Email)
	assert.Equal(t, "b@example.com", identities[1].Email)
	assert.Empty(t, identities[2].Email)
}

func TestParseIdentityList_Empty(t *testing.T) {
	assert.Nil(t, parseIdentityList([]byte(`{"response": []}`)))
	assert.Nil(t, parseIdentityList([]byte(`not json`)))
}

func TestParseAssignedCode(t *testing.T) {
	fromDataset := parseAssignedCode([]byte(`{"response": [{"dataset": [{"codice_fidelity": "NE0012345"}]}]}`))
	assert.Equal(t, "NE0012345", fromDataset)

	fromString := parseAssignedCode([]byte(`"NE0012345"`))
	assert.Equal(t, "NE0012345", fromString)

	assert.Empty(t, parseAssignedCode([]byte(`"not a code"`)))
	assert.Empty(t, parseAssignedCode([]byte(`{}`)))
}

func TestParseBirthDate_Layouts(t *testing.T) {
	expected := time.Date(1980, 5, 17, 0, 0, 0, 0, time.UTC)

	for _, value := range []string{"1980-05-17T00:00:00", "1980-05-17", "19800517", "17/05/1980"} {
		parsed := parseBirthDate(value)
		require.NotNil(t, parsed, value)
		assert.Equal(t, expected, *parsed, value)
	}

	assert.Nil(t, parseBirthDate(""))
	assert.Nil(t, parseBirthDate("yesterday"))
}
