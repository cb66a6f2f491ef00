// Package gmail counts a user's monthly email traffic for the footprint estimate.
package gmail

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/Veraticus/carbon-footprint/internal/common"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmailapi "google.golang.org/api/gmail/v1"
)

// Scopes requested during sign-in.
var Scopes = []string{
	gmailapi.GmailReadonlyScope,
	"https://www.googleapis.com/auth/userinfo.email",
	"https://www.googleapis.com/auth/userinfo.profile",
	"openid",
}

// DefaultCallbackPort is where the local OAuth callback server listens.
const DefaultCallbackPort = 8000

// OAuth2Config holds OAuth2 configuration.
type OAuth2Config struct {
	ClientID     string
	ClientSecret string
	TokenFile    string // Where to save the token
	CallbackPort int
}

// Validate checks that client credentials are present.
func (c OAuth2Config) Validate() error {
	if c.ClientID == "" || c.ClientSecret == "" {
		return fmt.Errorf("%w: gmail.client_id and gmail.client_secret are required", common.ErrMissingConfig)
	}
	return nil
}

func (c OAuth2Config) oauth() *oauth2.Config {
	port := c.CallbackPort
	if port == 0 {
		port = DefaultCallbackPort
	}
	return &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  fmt.Sprintf("http://localhost:%d/callback", port),
		Scopes:       Scopes,
	}
}

// AuthenticateInteractive runs the installed-app flow: it prints a consent
// URL, waits for the browser redirect on the local callback server and
// exchanges the code for a token.
func AuthenticateInteractive(ctx context.Context, config OAuth2Config) (*oauth2.Token, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	oauthConfig := config.oauth()

	state, err := randomState()
	if err != nil {
		return nil, err
	}

	codeChan := make(chan string, 1)
	errorChan := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		code, cbErr := callbackCode(r, state)
		if cbErr != nil {
			errorChan <- cbErr
			w.WriteHeader(http.StatusBadRequest)
			_, _ = fmt.Fprintf(w, `<html><body>
				<h1>Sign-in Failed</h1>
				<p>%s. Please try again.</p>
			</body></html>`, cbErr)
			return
		}

		codeChan <- code
		_, _ = fmt.Fprint(w, `<html><body>
			<h1>Sign-in Successful!</h1>
			<p>You can close this window and return to the terminal.</p>
			<script>window.setTimeout(function(){window.close();}, 3000);</script>
		</body></html>`)
	})

	listener, err := net.Listen("tcp", fmt.Sprintf("localhost:%d", portOf(config)))
	if err != nil {
		return nil, fmt.Errorf("failed to start callback server: %w", err)
	}
	server := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if serveErr := server.Serve(listener); !errors.Is(serveErr, http.ErrServerClosed) {
			errorChan <- fmt.Errorf("callback server failed: %w", serveErr)
		}
	}()
	defer func() {
		if shutdownErr := server.Shutdown(context.Background()); shutdownErr != nil {
			slog.Warn("Error shutting down callback server", "error", shutdownErr)
		}
	}()

	authURL := oauthConfig.AuthCodeURL(state, oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "select_account consent"))

	slog.Info("🔐 Gmail sign-in required")
	slog.Info("Please visit this URL to authenticate", "url", authURL)
	slog.Info("Waiting for authentication...")

	var authCode string
	select {
	case authCode = <-codeChan:
		slog.Info("Received authorization code")
	case err := <-errorChan:
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(5 * time.Minute):
		return nil, fmt.Errorf("authentication timeout - no response received within 5 minutes")
	}

	token, err := oauthConfig.Exchange(ctx, authCode)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	if config.TokenFile != "" {
		if err := saveToken(config.TokenFile, token); err != nil {
			slog.Warn("Failed to save token to file", "error", err, "file", config.TokenFile)
		} else {
			slog.Info("Token saved successfully", "file", config.TokenFile)
		}
	}

	return token, nil
}

func callbackCode(r *http.Request, state string) (string, error) {
	query := r.URL.Query()
	if e := query.Get("error"); e != "" {
		return "", fmt.Errorf("authorization denied: %s", e)
	}
	if query.Get("state") != state {
		return "", fmt.Errorf("state mismatch")
	}
	code := query.Get("code")
	if code == "" {
		return "", fmt.Errorf("no authorization code received")
	}
	return code, nil
}

func portOf(config OAuth2Config) int {
	if config.CallbackPort == 0 {
		return DefaultCallbackPort
	}
	return config.CallbackPort
}

func randomState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// LoadToken loads a token from file.
func LoadToken(tokenFile string) (*oauth2.Token, error) {
	f, err := os.Open(tokenFile) // #nosec G304
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	token := &oauth2.Token{}
	err = json.NewDecoder(f).Decode(token)
	return token, err
}

// saveToken saves a token to file.
func saveToken(path string, token *oauth2.Token) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600) // #nosec G304
	if err != nil {
		return fmt.Errorf("failed to create token file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := json.NewEncoder(f).Encode(token); err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}

	return nil
}

// TokenSource returns a source that refreshes the stored token and writes
// refreshed tokens back to the token file. Without a usable stored token it
// runs the interactive flow first.
func TokenSource(ctx context.Context, config OAuth2Config) (oauth2.TokenSource, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var token *oauth2.Token
	if config.TokenFile != "" {
		loaded, err := LoadToken(config.TokenFile)
		if err == nil {
			slog.Debug("Loaded existing token from file")
			token = loaded
		} else {
			slog.Info("No existing token found, starting OAuth2 flow")
		}
	}

	if token == nil {
		var err error
		if token, err = AuthenticateInteractive(ctx, config); err != nil {
			return nil, err
		}
	}

	return &savingTokenSource{
		base: config.oauth().TokenSource(ctx, token),
		last: token,
		file: config.TokenFile,
	}, nil
}

type savingTokenSource struct {
	base oauth2.TokenSource
	last *oauth2.Token
	file string
}

func (s *savingTokenSource) Token() (*oauth2.Token, error) {
	token, err := s.base.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to refresh token: %w", err)
	}
	if s.file != "" && token.AccessToken != s.last.AccessToken {
		if err := saveToken(s.file, token); err != nil {
			slog.Warn("Failed to save refreshed token", "error", err)
		}
	}
	s.last = token
	return token, nil
}
