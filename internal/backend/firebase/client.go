// Package firebase implements service.Service against the Google Identity
// Toolkit (authentication) and Cloud Firestore (document store), the two
// external collaborators of this system. All requests are authorized as the
// signed-in user; there are no service-account credentials anywhere.
package firebase

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/charmbracelet/log"
	identitytoolkit "google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"

	"taskdeck/internal/config"
	"taskdeck/internal/logging"
	"taskdeck/internal/service"
)

// APITimeout is the per-request timeout for both services.
const APITimeout = 10 * time.Second

// Client implements service.Service.
type Client struct {
	cfg      *config.Config
	settings config.Settings
	idp      *identitytoolkit.RelyingpartyService
	log      *log.Logger

	mu   sync.Mutex
	sess *sessionToken     // nil when signed out
	fs   *firestore.Client // lazily built once a session exists
}

// New creates a client from config.toml and, if present, the stored session
// token. A missing token is not an error: identity commands (register,
// login, recover) work signed out.
func New(ctx context.Context, cfg *config.Config) (*Client, error) {
	settings, err := cfg.LoadSettings()
	if err != nil {
		return nil, err
	}

	idsvc, err := identitytoolkit.NewService(ctx, option.WithAPIKey(settings.APIKey))
	if err != nil {
		return nil, fmt.Errorf("create identity service: %w", err)
	}

	c := &Client{
		cfg:      cfg,
		settings: settings,
		idp:      idsvc.Relyingparty,
		log:      logging.New(os.Stderr, cfg.Debug),
	}

	if cfg.HasToken() {
		sess, err := loadToken(cfg.TokenPath())
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", config.TokenFile, err)
		}
		c.sess = sess
	}

	return c, nil
}

// Close releases the Firestore connection, if one was opened.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fs == nil {
		return nil
	}
	err := c.fs.Close()
	c.fs = nil
	return err
}

// store returns the Firestore client for the signed-in user, creating it on
// first use. Firestore accepts the user's ID token as bearer credentials, so
// the store enforces the same per-user security rules as the original app.
func (c *Client) store(ctx context.Context) (*firestore.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.fs != nil {
		return c.fs, nil
	}
	if c.sess == nil {
		return nil, service.ErrUnauthenticated
	}

	fs, err := firestore.NewClient(ctx, c.settings.ProjectID,
		option.WithTokenSource(c.tokenSource()))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", service.ErrUnavailable, err)
	}
	c.fs = fs
	return fs, nil
}
