// Package sede talks to the central loyalty registry. The registry is an
// opaque stored-procedure gateway: every call POSTs a procedure name plus
// parameters and answers with a loosely shaped JSON document.
package sede

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"fidelity/config"
	"fidelity/internal/domain/entity"
	"fidelity/internal/domain/service"

	"github.com/pkg/errors"
)

const (
	spFindByEmail = "xTSP_API_Get_Fidelity_ByEmail"
	spFindByCode  = "xTSP_API_Get_Fidelity_ByCodice"
	spListAll     = "xTSP_API_Get_Fidelity_List"
	spCreate      = "xTSP_API_Put_Fidelity"
)

// requestEnvelope is the registry's stored-procedure call contract.
type requestEnvelope struct {
	Request    requestHeader  `json:"request"`
	Parameters []requestParam `json:"parameters"`
}

type requestHeader struct {
	DBName         string `json:"db_name"`
	SpName         string `json:"sp_name"`
	CalledFrom     string `json:"called_from"`
	CalledOperator string `json:"called_operator"`
}

type requestParam struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type client struct {
	httpClient *http.Client
	endpoint   string
	dbName     string
	calledFrom string
	logger     *slog.Logger
}

// NewClient creates the registry lookup collaborator.
func NewClient(cfg *config.Config, logger *slog.Logger) service.RemoteIdentityLookup {
	return &client{
		httpClient: &http.Client{Timeout: cfg.Sede.Timeout},
		endpoint:   cfg.Sede.Endpoint,
		dbName:     cfg.Sede.DBName,
		calledFrom: cfg.Sede.CalledFrom,
		logger:     logger,
	}
}

func (c *client) FindByEmail(ctx context.Context, email string) *entity.RemoteIdentity {
	normalized := entity.NormalizeEmail(email)

	body, err := c.call(ctx, spFindByEmail, []requestParam{
		{Name: "email", Value: normalized},
	})
	if err != nil {
		c.logger.Warn("Registry lookup by email failed, treating as not found",
			slog.String("email", normalized), slog.Any("error", err))

		return nil
	}

	identity := parseIdentity(body, normalized)
	if identity == nil {
		c.logger.Info("Registry has no identity for email", slog.String("email", normalized))
	}

	return identity
}

func (c *client) FindByCode(ctx context.Context, identityCode string) *entity.RemoteIdentity {
	body, err := c.call(ctx, spFindByCode, []requestParam{
		{Name: "codice_fidelity", Value: identityCode},
	})
	if err != nil {
		c.logger.Warn("Registry lookup by code failed, treating as not found",
			slog.String("identityCode", identityCode), slog.Any("error", err))

		return nil
	}

	return parseIdentity(body, "")
}

func (c *client) ListAll(ctx context.Context) []*entity.RemoteIdentity {
	body, err := c.call(ctx, spListAll, nil)
	if err != nil {
		c.logger.Warn("Registry bulk fetch failed, continuing with empty set", slog.Any("error", err))

		return nil
	}

	return parseIdentityList(body)
}

func (c *client) CreateIdentity(ctx context.Context, record *entity.IdentityRecord) (string, error) {
	params := []requestParam{
		{Name: "store", Value: record.Store},
		{Name: "tipo", Value: "D"},
		{Name: "nome", Value: record.Name},
		{Name: "cognome", Value: record.Surname},
		{Name: "sesso", Value: record.Sex},
		{Name: "data_nascita", Value: formatBirthDate(record.BirthDate)},
		{Name: "indirizzo", Value: record.Address},
		{Name: "localita", Value: record.City},
		{Name: "cap", Value: record.PostalCode},
		{Name: "provincia", Value: record.Province},
		{Name: "nazione", Value: record.Country},
		{Name: "cellulare", Value: record.Phone},
		{Name: "email", Value: entity.NormalizeEmail(record.Email)},
	}

	body, err := c.call(ctx, spCreate, params)
	if err != nil {
		return "", errors.Wrap(err, "registry identity creation failed")
	}

	code := parseAssignedCode(body)
	if code == "" {
		return "", errors.New("registry returned no identity code")
	}

	return code, nil
}

func (c *client) call(ctx context.Context, spName string, params []requestParam) ([]byte, error) {
	if c.endpoint == "" || c.dbName == "" {
		return nil, errors.New("registry endpoint not configured")
	}

	if params == nil {
		params = []requestParam{}
	}

	payload, err := json.Marshal(requestEnvelope{
		Request: requestHeader{
			DBName:     c.dbName,
			SpName:     spName,
			CalledFrom: c.calledFrom,
		},
		Parameters: params,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode registry request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, errors.Wrap(err, "failed to build registry request")
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "registry call %s failed", spName)
	}
	defer resp.Body.Close()

	c.logger.Debug("Registry call completed",
		slog.String("sp", spName),
		slog.Int("status", resp.StatusCode),
		slog.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.Errorf("registry call %s returned status %d", spName, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read registry response")
	}

	return body, nil
}

func formatBirthDate(birth *time.Time) string {
	if birth == nil {
		return ""
	}

	return birth.Format("20060102")
}
