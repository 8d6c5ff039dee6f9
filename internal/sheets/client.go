// Package sheets stores fuel entries and vehicles in a per-user Google
// spreadsheet through the Sheets v4 and Drive v3 client libraries.
package sheets

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/JonMunkholm/gaslog/internal/core"
	"github.com/JonMunkholm/gaslog/internal/metrics"
	"golang.org/x/oauth2"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"
)

const (
	defaultTimeout = 30 * time.Second

	// maxErrorBody bounds how much of a failed response is kept on RemoteError.
	maxErrorBody = 512
)

// Client wraps the Sheets and Drive services for one access token.
type Client struct {
	token  string
	expiry time.Time
	now    func() time.Time

	sheets  *sheetsapi.Service
	drive   *drive.Service
	initErr error
}

type clientOptions struct {
	sheetsURL string
	driveURL  string
	client    *http.Client
}

// Option configures a Client.
type Option func(*clientOptions)

// WithSheetsURL overrides the Sheets API root endpoint.
func WithSheetsURL(u string) Option {
	return func(o *clientOptions) { o.sheetsURL = u }
}

// WithDriveURL overrides the Drive API root endpoint.
func WithDriveURL(u string) Option {
	return func(o *clientOptions) { o.driveURL = u }
}

// WithHTTPClient sets the base transport shared between per-request Clients.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *clientOptions) {
		if hc != nil {
			o.client = hc
		}
	}
}

// NewClient constructs a client for token. A zero expiry never expires.
// Service construction errors surface on the first call.
func NewClient(token string, expiry time.Time, opts ...Option) *Client {
	o := clientOptions{client: &http.Client{Timeout: defaultTimeout}}
	for _, opt := range opts {
		opt(&o)
	}
	c := &Client{token: token, expiry: expiry, now: time.Now}

	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, o.client)
	hc := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}))
	hc.Timeout = o.client.Timeout

	c.sheets, c.initErr = sheetsapi.NewService(ctx, serviceOptions(hc, o.sheetsURL)...)
	if c.initErr == nil {
		c.drive, c.initErr = drive.NewService(ctx, serviceOptions(hc, o.driveURL)...)
	}
	return c
}

func serviceOptions(hc *http.Client, endpoint string) []option.ClientOption {
	opts := []option.ClientOption{option.WithHTTPClient(hc)}
	if endpoint != "" {
		opts = append(opts, option.WithEndpoint(strings.TrimRight(endpoint, "/")+"/"))
	}
	return opts
}

// CheckToken fails without a network call when the token is missing or has
// expired.
func (c *Client) CheckToken() error {
	if c.token == "" {
		return &core.AuthError{Msg: "not signed in"}
	}
	if !c.expiry.IsZero() && !c.now().Before(c.expiry) {
		return core.ErrSessionExpired
	}
	return nil
}

// AppendRows appends rows after the last non-empty row of sheet.
func (c *Client) AppendRows(ctx context.Context, spreadsheetID, sheet string, rows [][]any) error {
	return c.call("append", func() error {
		_, err := c.sheets.Spreadsheets.Values.
			Append(spreadsheetID, sheet+"!A:Z", &sheetsapi.ValueRange{Values: rows}).
			ValueInputOption("RAW").
			InsertDataOption("INSERT_ROWS").
			Context(ctx).Do()
		return err
	})
}

// ReadRange returns the cell values of a range. Missing trailing cells are
// omitted by the API; callers treat them as empty.
func (c *Client) ReadRange(ctx context.Context, spreadsheetID, rng string) ([][]any, error) {
	var values [][]any
	err := c.call("read", func() error {
		resp, err := c.sheets.Spreadsheets.Values.Get(spreadsheetID, rng).Context(ctx).Do()
		if err != nil {
			return err
		}
		values = resp.Values
		return nil
	})
	return values, err
}

// UpdateRange overwrites a range with rows.
func (c *Client) UpdateRange(ctx context.Context, spreadsheetID, rng string, rows [][]any) error {
	return c.call("update", func() error {
		_, err := c.sheets.Spreadsheets.Values.
			Update(spreadsheetID, rng, &sheetsapi.ValueRange{Range: rng, Values: rows}).
			ValueInputOption("RAW").
			Context(ctx).Do()
		return err
	})
}

// Exists reports whether the spreadsheet can be opened with this token.
func (c *Client) Exists(ctx context.Context, spreadsheetID string) (bool, error) {
	err := c.call("metadata", func() error {
		_, err := c.sheets.Spreadsheets.Get(spreadsheetID).
			Fields("spreadsheetId", "properties.title").
			Context(ctx).Do()
		return err
	})
	if isNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Create makes a spreadsheet with the given title and sheets.
func (c *Client) Create(ctx context.Context, title string, sheetTitles ...string) (string, error) {
	ss := &sheetsapi.Spreadsheet{Properties: &sheetsapi.SpreadsheetProperties{Title: title}}
	for _, t := range sheetTitles {
		ss.Sheets = append(ss.Sheets, &sheetsapi.Sheet{Properties: &sheetsapi.SheetProperties{Title: t}})
	}

	var id string
	err := c.call("create", func() error {
		resp, err := c.sheets.Spreadsheets.Create(ss).Context(ctx).Do()
		if err != nil {
			return err
		}
		id = resp.SpreadsheetId
		return nil
	})
	if err != nil {
		return "", err
	}
	if id == "" {
		return "", &core.RemoteError{Op: "create", Status: http.StatusOK, Body: "response has no spreadsheetId"}
	}
	return id, nil
}

// FindByTitle searches Drive for a live spreadsheet named title.
func (c *Client) FindByTitle(ctx context.Context, title string) (string, bool, error) {
	q := "name='" + strings.ReplaceAll(title, "'", `\'`) + "'" +
		" and mimeType='application/vnd.google-apps.spreadsheet' and trashed=false"

	var files []*drive.File
	err := c.call("search", func() error {
		resp, err := c.drive.Files.List().
			Q(q).
			Fields("files(id,name)").
			PageSize(1).
			Context(ctx).Do()
		if err != nil {
			return err
		}
		files = resp.Files
		return nil
	})
	if err != nil {
		return "", false, err
	}
	if len(files) == 0 {
		return "", false, nil
	}
	return files[0].Id, true, nil
}

// call runs one API request with the token check, error mapping and metrics
// every operation shares.
func (c *Client) call(op string, fn func() error) (err error) {
	start := time.Now()
	defer func() { metrics.ObserveSheetsRequest(op, err, time.Since(start)) }()

	if err := c.CheckToken(); err != nil {
		return err
	}
	if c.initErr != nil {
		return &core.RemoteError{Op: op, Err: c.initErr}
	}
	return apiError(op, fn())
}

// apiError maps library errors onto the core taxonomy: 401 and 403 are
// AuthErrors, every other failure a RemoteError.
func apiError(op string, err error) error {
	if err == nil {
		return nil
	}
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return &core.RemoteError{Op: op, Err: err}
	}

	body := strings.TrimSpace(gerr.Body)
	if body == "" {
		body = gerr.Message
	}
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}
	remote := &core.RemoteError{Op: op, Status: gerr.Code, Body: body}

	switch gerr.Code {
	case http.StatusUnauthorized:
		return &core.AuthError{Msg: core.ErrSessionExpired.Msg, Err: remote}
	case http.StatusForbidden:
		return &core.AuthError{Msg: "access denied", Err: remote}
	}
	return remote
}

func isNotFound(err error) bool {
	var re *core.RemoteError
	return errors.As(err, &re) && re.Status == http.StatusNotFound && !core.IsAuthError(err)
}
