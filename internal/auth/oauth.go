package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/JonMunkholm/gaslog/internal/config"
	"github.com/JonMunkholm/gaslog/internal/core"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	googleoauth "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

// Scopes requested at sign-in. SpreadsheetsScope must be granted.
const (
	SpreadsheetsScope = "https://www.googleapis.com/auth/spreadsheets"
	DriveFileScope    = "https://www.googleapis.com/auth/drive.file"
)

var scopes = []string{"openid", "email", "profile", SpreadsheetsScope, DriveFileScope}

// OAuth runs the Google authorization code flow.
type OAuth struct {
	conf   *oauth2.Config
	apiURL string
	client *http.Client
}

// NewOAuth creates an OAuth flow. A nil client gets one with cfg.HTTPTimeout.
func NewOAuth(cfg config.GoogleConfig, client *http.Client) *OAuth {
	if client == nil {
		timeout := cfg.HTTPTimeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}

	endpoint := google.Endpoint
	if cfg.AuthURL != "" {
		endpoint.AuthURL = cfg.AuthURL
	}
	if cfg.TokenURL != "" {
		endpoint.TokenURL = cfg.TokenURL
	}

	return &OAuth{
		conf: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       scopes,
			Endpoint:     endpoint,
		},
		apiURL: cfg.APIURL,
		client: client,
	}
}

// NewState returns a random value for the OAuth state parameter.
func NewState() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("auth: state: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// AuthCodeURL is where the browser is sent to sign in.
func (o *OAuth) AuthCodeURL(state string) string {
	return o.conf.AuthCodeURL(state,
		oauth2.AccessTypeOnline,
		oauth2.SetAuthURLParam("include_granted_scopes", "true"),
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
}

func (o *OAuth) httpContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, o.client)
}

// Exchange trades an authorization code for an access token.
func (o *OAuth) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	if code == "" {
		return nil, &core.AuthError{Msg: "missing authorization code"}
	}
	tok, err := o.conf.Exchange(o.httpContext(ctx), code)
	if err != nil {
		var re *oauth2.RetrieveError
		if errors.As(err, &re) && re.Response != nil && re.Response.StatusCode < http.StatusInternalServerError {
			return nil, &core.AuthError{Msg: "token exchange rejected", Err: err}
		}
		return nil, fmt.Errorf("auth: token exchange: %w", err)
	}
	if tok.AccessToken == "" {
		return nil, &core.AuthError{Msg: "token exchange returned no access token"}
	}
	return tok, nil
}

// service returns an oauth2/v2 API client that sends tok as its bearer.
func (o *OAuth) service(ctx context.Context, tok *oauth2.Token) (*googleoauth.Service, error) {
	opts := []option.ClientOption{option.WithHTTPClient(o.conf.Client(o.httpContext(ctx), tok))}
	if o.apiURL != "" {
		opts = append(opts, option.WithEndpoint(strings.TrimRight(o.apiURL, "/")+"/"))
	}
	svc, err := googleoauth.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("auth: oauth2 service: %w", err)
	}
	return svc, nil
}

// Profile is the Google account behind an access token.
type Profile struct {
	Email string
	Name  string
}

// UserInfo fetches the profile for tok.
func (o *OAuth) UserInfo(ctx context.Context, tok *oauth2.Token) (*Profile, error) {
	svc, err := o.service(ctx, tok)
	if err != nil {
		return nil, err
	}
	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return nil, apiError("userinfo", err)
	}
	if info.Email == "" {
		return nil, &core.AuthError{Msg: "google profile has no email"}
	}
	return &Profile{Email: info.Email, Name: info.Name}, nil
}

// VerifyScopes checks with the tokeninfo endpoint that tok carries the
// spreadsheets scope.
func (o *OAuth) VerifyScopes(ctx context.Context, tok *oauth2.Token) error {
	svc, err := o.service(ctx, tok)
	if err != nil {
		return err
	}
	info, err := svc.Tokeninfo().AccessToken(tok.AccessToken).Context(ctx).Do()
	if err != nil {
		return apiError("tokeninfo", err)
	}
	for _, s := range strings.Fields(info.Scope) {
		if s == SpreadsheetsScope {
			return nil
		}
	}
	return &core.AuthError{Msg: "insufficient scope: spreadsheets access was not granted"}
}

// Login completes the flow for code and returns the new session.
func (o *OAuth) Login(ctx context.Context, code string) (*Session, error) {
	tok, err := o.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}
	if err := o.VerifyScopes(ctx, tok); err != nil {
		return nil, err
	}
	profile, err := o.UserInfo(ctx, tok)
	if err != nil {
		return nil, err
	}
	return &Session{
		Email:       profile.Email,
		Name:        profile.Name,
		AccessToken: tok.AccessToken,
		Expiry:      tok.Expiry,
	}, nil
}

// apiError treats 400 and 401 from Google as a rejected sign-in.
func apiError(op string, err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && (gerr.Code == http.StatusBadRequest || gerr.Code == http.StatusUnauthorized) {
		return &core.AuthError{Msg: op + " rejected", Err: err}
	}
	return fmt.Errorf("auth: %s: %w", op, err)
}

// IsScopeError reports whether err is the missing-spreadsheets-scope error.
func IsScopeError(err error) bool {
	var ae *core.AuthError
	return errors.As(err, &ae) && strings.HasPrefix(ae.Msg, "insufficient scope")
}
