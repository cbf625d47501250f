// ABOUTME: OAuth configuration and token storage for Google APIs
// ABOUTME: Runs the browser consent flow and persists refreshed tokens under the credentials dir
package connect

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	// CallbackAddr is where the consent flow listens for Google's redirect.
	CallbackAddr  = "localhost:8085"
	callbackPath  = "/oauth/callback"
	tokenFileName = "google-credentials.json"
)

// Scopes are read-only: DoFo imports contacts and birthdays, it never writes back.
var Scopes = []string{
	"https://www.googleapis.com/auth/contacts.readonly",
	"https://www.googleapis.com/auth/calendar.readonly",
}

// ErrNotConfigured means no Google OAuth client was configured.
var ErrNotConfigured = errors.New("google OAuth credentials not configured: set DOFO_GOOGLE_CLIENT_ID and DOFO_GOOGLE_CLIENT_SECRET")

// NewOAuthConfig creates the OAuth2 config for Google APIs.
func NewOAuthConfig(clientID, clientSecret string) (*oauth2.Config, error) {
	if clientID == "" || clientSecret == "" {
		return nil, ErrNotConfigured
	}
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  "http://" + CallbackAddr + callbackPath,
		Scopes:       Scopes,
		Endpoint:     google.Endpoint,
	}, nil
}

// TokenPath is the token file inside dir.
func TokenPath(dir string) string {
	return filepath.Join(dir, tokenFileName)
}

// SaveToken writes token to path with owner-only permissions.
func SaveToken(path string, token *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create token file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := json.NewEncoder(f).Encode(token); err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	return nil
}

// LoadToken reads a token saved by SaveToken.
func LoadToken(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open token file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var token oauth2.Token
	if err := json.NewDecoder(f).Decode(&token); err != nil {
		return nil, fmt.Errorf("failed to decode token: %w", err)
	}
	return &token, nil
}

// HTTPClient returns an authenticated client for the token at path. A token the
// source refreshes is written back so the next run does not refresh again.
func HTTPClient(ctx context.Context, cfg *oauth2.Config, path string) (*http.Client, error) {
	token, err := LoadToken(path)
	if err != nil {
		return nil, err
	}

	ts := cfg.TokenSource(ctx, token)
	fresh, err := ts.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to refresh token: %w", err)
	}
	if fresh.AccessToken != token.AccessToken {
		if err := SaveToken(path, fresh); err != nil {
			return nil, err
		}
	}
	return oauth2.NewClient(ctx, oauth2.ReuseTokenSource(fresh, ts)), nil
}

// Authorize runs the consent flow: it prints the auth URL, asks open to show it,
// and waits for Google to redirect back with a code.
func Authorize(ctx context.Context, cfg *oauth2.Config, out io.Writer, open func(string) error) (*oauth2.Token, error) {
	state := uuid.New().String()
	tokens := make(chan *oauth2.Token, 1)
	errs := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc(callbackPath, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("state") != state {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			errs <- fmt.Errorf("state mismatch in OAuth callback")
			return
		}
		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "missing code", http.StatusBadRequest)
			errs <- fmt.Errorf("no authorization code received")
			return
		}
		token, err := cfg.Exchange(r.Context(), code)
		if err != nil {
			http.Error(w, "exchange failed", http.StatusInternalServerError)
			errs <- fmt.Errorf("failed to exchange code: %w", err)
			return
		}
		tokens <- token
		_, _ = fmt.Fprintln(w, "DoFo is connected. You can close this window.")
	})

	ln, err := net.Listen("tcp", CallbackAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen for OAuth callback: %w", err)
	}
	server := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	authURL := cfg.AuthCodeURL(state, oauth2.AccessTypeOffline)
	_, _ = fmt.Fprintf(out, "Opening browser for Google sign-in...\n\nIf the browser doesn't open, visit:\n%s\n\n", authURL)
	if open != nil {
		_ = open(authURL)
	}

	select {
	case token := <-tokens:
		return token, nil
	case err := <-errs:
		return nil, fmt.Errorf("OAuth flow failed: %w", err)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
