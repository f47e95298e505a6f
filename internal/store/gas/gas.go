// Package gas talks to the Google Apps Script web app that fronts the
// record spreadsheet. Reads are GET requests selected by an action query
// parameter; writes are JSON POSTs answered with {"status": "ok"}.
package gas

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/calvinalkan/kpi-tracker/internal/record"
	"github.com/calvinalkan/kpi-tracker/internal/refdata"
	"github.com/calvinalkan/kpi-tracker/internal/store"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Proxy actions.
const (
	actionGetUsers       = "getUsers"
	actionGetFormOptions = "getFormOptions"
	actionGetRecords     = "getRecords"
	actionGetAdminSheet  = "getAdminSheet"
	actionAppendRecord   = "appendRecord"
	actionUpdateRecord   = "updateRecord"
	actionAddAdminRow    = "addAdminRow"
	actionSaveAdminRow   = "saveAdminRow"
	actionDeleteAdminRow = "deleteAdminRow"
)

const (
	statusOK = "ok"

	// snippetLen bounds how much of an unexpected body ends up in errors.
	snippetLen = 200
	maxBody    = 32 << 20
)

var errNotJSON = errors.New("response is not JSON")

// Options configures New.
type Options struct {
	HTTPClient *http.Client   // default: a client with a 30s timeout
	Location   *time.Location // zone-less dates; default time.Local
	Logger     *logrus.Logger // default logrus.StandardLogger()
}

// Client implements store.Store against the Apps Script proxy.
type Client struct {
	endpoint string
	http     *http.Client
	loc      *time.Location
	log      *logrus.Logger
}

var _ store.Store = (*Client)(nil)

// New returns a client for the web app deployed at endpoint.
func New(endpoint string, opts Options) *Client {
	c := &Client{
		endpoint: endpoint,
		http:     opts.HTTPClient,
		loc:      opts.Location,
		log:      opts.Logger,
	}

	if c.http == nil {
		c.http = &http.Client{Timeout: 30 * time.Second}
	}

	if c.loc == nil {
		c.loc = time.Local
	}

	if c.log == nil {
		c.log = logrus.StandardLogger()
	}

	return c
}

// reply is the envelope of write responses and of read errors.
type reply struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Users returns the enabled users.
func (c *Client) Users(ctx context.Context) ([]refdata.User, error) {
	var rows []refdata.Row

	err := c.get(ctx, actionGetUsers, nil, &rows)
	if err != nil {
		return nil, err
	}

	users := make([]refdata.User, 0, len(rows))

	for _, row := range rows {
		users = append(users, refdata.User{
			ID:      row.String("id"),
			EmpID:   row.String("empId"),
			Name:    row.String("name"),
			LoginID: row.String("loginId"),
			IsAdmin: proxyFlag(row["isAdmin"]),
		})
	}

	return users, nil
}

// FormOptions returns the enabled form options.
func (c *Client) FormOptions(ctx context.Context) (refdata.FormOptions, error) {
	var raw struct {
		Systems       []refdata.Row `json:"systems"`
		SubModules    []refdata.Row `json:"subModules"`
		QuestionTypes []refdata.Row `json:"questionTypes"`
		Employees     []refdata.Row `json:"employees"`
	}

	err := c.get(ctx, actionGetFormOptions, nil, &raw)
	if err != nil {
		return refdata.FormOptions{}, err
	}

	var opts refdata.FormOptions

	for _, row := range raw.Systems {
		opts.Systems = append(opts.Systems, refdata.System{
			ID: row.String("id"), Name: row.String("name"), Order: row.Int("order"),
		})
	}

	for _, row := range raw.SubModules {
		opts.SubModules = append(opts.SubModules, refdata.SubModule{
			ID:           row.String("id"),
			ParentSystem: row.String("parentSystem"),
			Name:         row.String("name"),
			Order:        row.Int("order"),
		})
	}

	for _, row := range raw.QuestionTypes {
		opts.QuestionTypes = append(opts.QuestionTypes, refdata.QuestionType{
			ID: row.String("id"), Name: row.String("name"), Order: row.Int("order"),
		})
	}

	for _, row := range raw.Employees {
		opts.Employees = append(opts.Employees, refdata.Employee{
			ID: row.String("id"), EmpID: row.String("empId"), Name: row.String("name"),
		})
	}

	return opts, nil
}

// proxyFlag accepts the proxy's boolean as JSON true or a Y/N cell.
func proxyFlag(v any) bool {
	if b, ok := v.(bool); ok {
		return b
	}

	return strings.EqualFold(record.CellString(v), refdata.FlagYes)
}

// FetchRecords returns the records visible to owner.
func (c *Client) FetchRecords(ctx context.Context, owner string, privileged bool) ([]record.Record, error) {
	query := url.Values{
		"handler": {owner},
		"isAdmin": {strconv.FormatBool(privileged)},
	}

	var rows []map[string]any

	err := c.get(ctx, actionGetRecords, query, &rows)
	if err != nil {
		return nil, err
	}

	records := make([]record.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, record.FromRow(row, c.loc))
	}

	// Enforced client-side as well.
	if !privileged {
		records = store.OwnedBy(records, owner)
	}

	return records, nil
}

// AppendRecord submits a new record.
func (c *Client) AppendRecord(ctx context.Context, p record.Payload) error {
	err := p.Validate()
	if err != nil {
		return err
	}

	return c.post(ctx, actionAppendRecord, struct {
		Action string `json:"action"`
		record.Payload
	}{actionAppendRecord, p})
}

// UpdateRecord replaces the record at rowIndex.
func (c *Client) UpdateRecord(ctx context.Context, rowIndex int, p record.Payload) error {
	err := p.Validate()
	if err != nil {
		return err
	}

	return c.post(ctx, actionUpdateRecord, map[string]any{
		"action":   actionUpdateRecord,
		"rowIndex": rowIndex,
		"rowData":  p,
	})
}

// Sheet returns an admin sheet.
func (c *Client) Sheet(ctx context.Context, key refdata.SheetKey) (refdata.Sheet, error) {
	var sheet refdata.Sheet

	err := c.get(ctx, actionGetAdminSheet, url.Values{"sheet": {string(key)}}, &sheet)
	if err != nil {
		return refdata.Sheet{}, err
	}

	return sheet, nil
}

// AddRow appends an admin row. headers lists the columns to write.
func (c *Client) AddRow(ctx context.Context, key refdata.SheetKey, row refdata.Row, headers []string) error {
	return c.post(ctx, actionAddAdminRow, map[string]any{
		"action":  actionAddAdminRow,
		"sheet":   key,
		"rowData": row,
		"headers": headers,
	})
}

// SaveRow overwrites an admin row.
func (c *Client) SaveRow(ctx context.Context, key refdata.SheetKey, rowIndex int, row refdata.Row, headers []string) error {
	return c.post(ctx, actionSaveAdminRow, map[string]any{
		"action":   actionSaveAdminRow,
		"sheet":    key,
		"rowIndex": rowIndex,
		"rowData":  row,
		"headers":  headers,
	})
}

// DeleteRow removes an admin row.
func (c *Client) DeleteRow(ctx context.Context, key refdata.SheetKey, rowIndex int) error {
	return c.post(ctx, actionDeleteAdminRow, map[string]any{
		"action":   actionDeleteAdminRow,
		"sheet":    key,
		"rowIndex": rowIndex,
	})
}

func (c *Client) get(ctx context.Context, action string, query url.Values, out any) error {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return fmt.Errorf("%w: invalid proxy url: %w", store.ErrUnavailable, err)
	}

	q := u.Query()
	q.Set("action", action)

	for k, vs := range query {
		q[k] = vs
	}

	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", store.ErrUnavailable, action, err)
	}

	body, err := c.do(req, action)
	if err != nil {
		return err
	}

	err = decode(body, out)
	if err == nil {
		return nil
	}

	// Reads fail with the write envelope.
	var r reply
	if decode(body, &r) == nil && r.Status != "" && r.Status != statusOK {
		return fmt.Errorf("%w: %s: %s", store.ErrUnavailable, action, r.Message)
	}

	return fmt.Errorf("%w: %s: %w", store.ErrUnavailable, action, err)
}

func (c *Client) post(ctx context.Context, action string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: %s: %w", store.ErrUnavailable, action, err)
	}

	req.Header.Set("Content-Type", "application/json")

	body, err := c.do(req, action)
	if err != nil {
		return err
	}

	var r reply

	err = decode(body, &r)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", store.ErrUnavailable, action, err)
	}

	if r.Status != statusOK {
		msg := r.Message
		if msg == "" {
			msg = "status " + strconv.Quote(r.Status)
		}

		return fmt.Errorf("%w: %s: %s", store.ErrRejected, action, msg)
	}

	return nil
}

// do sends req and returns the body of a 2xx response.
func (c *Client) do(req *http.Request, action string) ([]byte, error) {
	id := uuid.NewString()
	req.Header.Set("X-Request-Id", id)

	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", store.ErrUnavailable, action, err)
	}

	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: reading response: %w", store.ErrUnavailable, action, err)
	}

	c.log.WithFields(logrus.Fields{
		"action":  action,
		"request": id,
		"status":  resp.StatusCode,
		"bytes":   len(body),
		"elapsed": time.Since(start).Round(time.Millisecond),
	}).Debug("proxy call")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s: http %d: %s", store.ErrUnavailable, action, resp.StatusCode, snippet(body))
	}

	return body, nil
}

func decode(body []byte, out any) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	err := dec.Decode(out)
	if err != nil {
		return fmt.Errorf("%w: %s", errNotJSON, snippet(body))
	}

	return nil
}

func snippet(body []byte) string {
	s := []rune(string(body))
	if len(s) > snippetLen {
		return string(s[:snippetLen])
	}

	return string(s)
}
