package firebase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/googleapi"
	identitytoolkit "google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"

	"taskdeck/internal/service"
)

// CurrentUser implements service.Identity.
func (c *Client) CurrentUser(ctx context.Context) (service.User, error) {
	c.mu.Lock()
	sess := c.sess
	c.mu.Unlock()
	if sess == nil {
		return service.User{}, service.ErrUnauthenticated
	}

	idToken, err := c.freshIDToken()
	if err != nil {
		return service.User{}, fmt.Errorf("%w: %v", service.ErrUnauthenticated, err)
	}

	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	resp, err := c.idp.GetAccountInfo(&identitytoolkit.IdentitytoolkitRelyingpartyGetAccountInfoRequest{
		IdToken: idToken,
	}).Context(ctx).Do()
	if err != nil {
		return service.User{}, wrapIdentityErr(err)
	}
	if len(resp.Users) == 0 {
		return service.User{}, service.ErrUnauthenticated
	}

	u := resp.Users[0]
	return service.User{
		ID:            u.LocalId,
		Email:         u.Email,
		DisplayName:   u.DisplayName,
		EmailVerified: u.EmailVerified,
	}, nil
}

// SignIn implements service.Identity. Accounts with unverified emails are
// rejected and no session is persisted, mirroring the sign-out the web app
// performs.
func (c *Client) SignIn(ctx context.Context, email, password string) (service.User, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	resp, err := c.idp.VerifyPassword(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	if err != nil {
		return service.User{}, wrapIdentityErr(err)
	}

	info, err := c.idp.GetAccountInfo(&identitytoolkit.IdentitytoolkitRelyingpartyGetAccountInfoRequest{
		IdToken: resp.IdToken,
	}).Context(ctx).Do()
	if err != nil {
		return service.User{}, wrapIdentityErr(err)
	}
	if len(info.Users) == 0 {
		return service.User{}, service.ErrUnauthenticated
	}
	u := info.Users[0]

	if !u.EmailVerified {
		return service.User{}, fmt.Errorf("%w: verify your email before signing in, then try again", service.ErrUnauthenticated)
	}

	sess := &sessionToken{
		UserID:       resp.LocalId,
		Email:        resp.Email,
		IDToken:      resp.IdToken,
		RefreshToken: resp.RefreshToken,
		Expiry:       time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second),
	}
	if err := c.cfg.EnsureDir(); err != nil {
		return service.User{}, fmt.Errorf("create config directory: %w", err)
	}
	if err := saveToken(c.cfg.TokenPath(), sess); err != nil {
		return service.User{}, fmt.Errorf("save session: %w", err)
	}

	c.mu.Lock()
	c.sess = sess
	c.mu.Unlock()

	return service.User{
		ID:            u.LocalId,
		Email:         u.Email,
		DisplayName:   u.DisplayName,
		EmailVerified: true,
	}, nil
}

// SignOut implements service.Identity.
func (c *Client) SignOut() error {
	c.mu.Lock()
	c.sess = nil
	if c.fs != nil {
		c.fs.Close()
		c.fs = nil
	}
	c.mu.Unlock()
	return c.cfg.RemoveToken()
}

// Register implements service.Identity: creates the account, sets the
// display name, writes the user record and the deterministic personal list,
// and sends the verification email. The fresh session is used for the store
// writes and then discarded; the user signs in only after verifying.
func (c *Client) Register(ctx context.Context, username, email, password string) (service.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*APITimeout)
	defer cancel()

	resp, err := c.idp.SignupNewUser(&identitytoolkit.IdentitytoolkitRelyingpartySignupNewUserRequest{
		Email:    email,
		Password: password,
	}).Context(ctx).Do()
	if err != nil {
		return service.User{}, wrapIdentityErr(err)
	}

	if _, err := c.idp.SetAccountInfo(&identitytoolkit.IdentitytoolkitRelyingpartySetAccountInfoRequest{
		IdToken:     resp.IdToken,
		DisplayName: username,
	}).Context(ctx).Do(); err != nil {
		return service.User{}, wrapIdentityErr(err)
	}

	if err := c.seedUserDocuments(ctx, resp.IdToken, resp.LocalId, username, email); err != nil {
		return service.User{}, err
	}

	if _, err := c.idp.GetOobConfirmationCode(&identitytoolkit.Relyingparty{
		RequestType: "VERIFY_EMAIL",
		IdToken:     resp.IdToken,
	}).Context(ctx).Do(); err != nil {
		return service.User{}, wrapIdentityErr(err)
	}

	return service.User{
		ID:          resp.LocalId,
		Email:       email,
		DisplayName: username,
	}, nil
}

// seedUserDocuments writes the users record and the personal list with the
// one-off session from registration. The personal list ID is derived from
// the user ID, so it exists without any query and there is exactly one.
func (c *Client) seedUserDocuments(ctx context.Context, idToken, userID, username, email string) error {
	fs, err := firestore.NewClient(ctx, c.settings.ProjectID,
		option.WithTokenSource(staticTokenSource(idToken)))
	if err != nil {
		return fmt.Errorf("%w: %v", service.ErrUnavailable, err)
	}
	defer fs.Close()

	if _, err := fs.Collection(colUsers).Doc(userID).Create(ctx, map[string]interface{}{
		"username":  username,
		"email":     email,
		"createdAt": firestore.ServerTimestamp,
	}); err != nil {
		return wrapStoreErr(err)
	}

	if _, err := fs.Collection(colLists).Doc(service.PersonalListID(userID)).Create(ctx, map[string]interface{}{
		"name":      "My Tasks",
		"ownerId":   userID,
		"type":      string(service.ListPersonal),
		"createdAt": firestore.ServerTimestamp,
	}); err != nil {
		return wrapStoreErr(err)
	}

	return nil
}

// SendPasswordReset implements service.Identity.
func (c *Client) SendPasswordReset(ctx context.Context, email string) error {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	_, err := c.idp.GetOobConfirmationCode(&identitytoolkit.Relyingparty{
		RequestType: "PASSWORD_RESET",
		Email:       email,
	}).Context(ctx).Do()
	if err != nil {
		return wrapIdentityErr(err)
	}
	return nil
}

// UpdateDisplayName implements service.Identity. The name lives both on the
// identity account and in the users collection, so both are updated.
func (c *Client) UpdateDisplayName(ctx context.Context, name string) error {
	idToken, err := c.freshIDToken()
	if err != nil {
		return fmt.Errorf("%w: %v", service.ErrUnauthenticated, err)
	}

	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	if _, err := c.idp.SetAccountInfo(&identitytoolkit.IdentitytoolkitRelyingpartySetAccountInfoRequest{
		IdToken:     idToken,
		DisplayName: name,
	}).Context(ctx).Do(); err != nil {
		return wrapIdentityErr(err)
	}

	fs, err := c.store(ctx)
	if err != nil {
		return err
	}
	c.mu.Lock()
	userID := c.sess.UserID
	c.mu.Unlock()
	if _, err := fs.Collection(colUsers).Doc(userID).Update(ctx, []firestore.Update{
		{Path: "username", Value: name},
	}); err != nil {
		return wrapStoreErr(err)
	}
	return nil
}

// UpdatePassword implements service.Identity. Re-authenticates with the
// current password before setting the new one, like the account page does.
func (c *Client) UpdatePassword(ctx context.Context, current, next string) error {
	c.mu.Lock()
	sess := c.sess
	c.mu.Unlock()
	if sess == nil {
		return service.ErrUnauthenticated
	}

	ctx, cancel := context.WithTimeout(ctx, 2*APITimeout)
	defer cancel()

	reauth, err := c.idp.VerifyPassword(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
		Email:             sess.Email,
		Password:          current,
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	if err != nil {
		return wrapIdentityErr(err)
	}

	resp, err := c.idp.SetAccountInfo(&identitytoolkit.IdentitytoolkitRelyingpartySetAccountInfoRequest{
		IdToken:  reauth.IdToken,
		Password: next,
	}).Context(ctx).Do()
	if err != nil {
		return wrapIdentityErr(err)
	}

	// Password changes rotate the session; keep the new one if issued.
	if resp.IdToken != "" && resp.RefreshToken != "" {
		c.mu.Lock()
		c.sess.IDToken = resp.IdToken
		c.sess.RefreshToken = resp.RefreshToken
		c.sess.Expiry = time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second)
		sess := *c.sess
		c.mu.Unlock()
		if err := saveToken(c.cfg.TokenPath(), &sess); err != nil {
			return fmt.Errorf("save session: %w", err)
		}
	}
	return nil
}

// DeleteAccount implements service.Identity. Mirrors registration in
// reverse: re-authenticate, delete the users document while the store is
// still reachable, then delete the identity account and drop the session.
// Owned lists and their tasks stay behind; nothing cascades.
func (c *Client) DeleteAccount(ctx context.Context, password string) error {
	c.mu.Lock()
	sess := c.sess
	c.mu.Unlock()
	if sess == nil {
		return service.ErrUnauthenticated
	}

	ctx, cancel := context.WithTimeout(ctx, 2*APITimeout)
	defer cancel()

	reauth, err := c.idp.VerifyPassword(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
		Email:             sess.Email,
		Password:          password,
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	if err != nil {
		return wrapIdentityErr(err)
	}

	fs, err := c.store(ctx)
	if err != nil {
		return err
	}
	if _, err := fs.Collection(colUsers).Doc(reauth.LocalId).Delete(ctx); err != nil {
		return wrapStoreErr(err)
	}

	if _, err := c.idp.DeleteAccount(&identitytoolkit.IdentitytoolkitRelyingpartyDeleteAccountRequest{
		IdToken: reauth.IdToken,
	}).Context(ctx).Do(); err != nil {
		return wrapIdentityErr(err)
	}

	return c.SignOut()
}

// wrapIdentityErr maps Identity Toolkit error codes onto the service error
// kinds, with the same user-facing phrasing the original app chose.
func wrapIdentityErr(err error) error {
	if err == nil {
		return nil
	}

	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: request timed out", service.ErrUnavailable)
		}
		return fmt.Errorf("%w: %v", service.ErrUnavailable, err)
	}

	msg := gerr.Message
	switch {
	case strings.HasPrefix(msg, "EMAIL_NOT_FOUND"):
		return fmt.Errorf("%w: no account found with this email", service.ErrUserNotFound)
	case strings.HasPrefix(msg, "INVALID_PASSWORD"),
		strings.HasPrefix(msg, "INVALID_LOGIN_CREDENTIALS"):
		return fmt.Errorf("%w: invalid email or password", service.ErrUnauthenticated)
	case strings.HasPrefix(msg, "USER_DISABLED"):
		return fmt.Errorf("%w: this account has been disabled", service.ErrUnauthenticated)
	case strings.HasPrefix(msg, "EMAIL_EXISTS"):
		return fmt.Errorf("%w: an account with this email already exists", service.ErrValidation)
	case strings.HasPrefix(msg, "WEAK_PASSWORD"):
		return fmt.Errorf("%w: password is too weak, use at least 6 characters", service.ErrValidation)
	case strings.HasPrefix(msg, "INVALID_EMAIL"):
		return fmt.Errorf("%w: invalid email address", service.ErrValidation)
	case strings.HasPrefix(msg, "INVALID_ID_TOKEN"), strings.HasPrefix(msg, "TOKEN_EXPIRED"),
		strings.HasPrefix(msg, "CREDENTIAL_TOO_OLD_LOGIN_AGAIN"):
		return fmt.Errorf("%w: session expired (run: taskdeck login)", service.ErrUnauthenticated)
	case gerr.Code >= 500:
		return fmt.Errorf("%w: %s", service.ErrUnavailable, msg)
	}
	return fmt.Errorf("identity gateway: %s", msg)
}
