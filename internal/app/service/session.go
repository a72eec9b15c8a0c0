package service

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"kinbrio/internal/app/db"
	"kinbrio/internal/app/model"
	"kinbrio/internal/app/notify"
	"kinbrio/internal/pkg/errs"
	"kinbrio/internal/pkg/logx"
)

// WelcomeOrganizationName names the organization created for a first-time user.
const WelcomeOrganizationName = "Welcome Inc."

// LoginPassword signs in at the chat homeserver and returns the local user, creating one
// on first sign-in.
func (s *Service) LoginPassword(ctx context.Context, homeServer, user, password string) (model.User, notify.Session, error) {
	session, err := s.chat.LoginPassword(ctx, homeServer, user, password)
	if err != nil {
		return model.User{}, notify.Session{}, chatLoginError(err)
	}
	if !s.trustedSession(session) {
		logx.Warn("Chat login rejected, user id not served by homeserver",
			"matrix_user_id", session.UserID, "home_server", session.HomeServer)
		return model.User{}, notify.Session{}, errs.NewError(errs.ErrChatLoginFailed)
	}
	u, err := s.provision(ctx, session)
	return u, session, err
}

// LoginToken is LoginPassword for single-use SSO login tokens. Tokens are always redeemed
// at the configured homeserver.
func (s *Service) LoginToken(ctx context.Context, token string) (model.User, notify.Session, error) {
	session, err := s.chat.LoginToken(ctx, "", token)
	if err != nil {
		return model.User{}, notify.Session{}, chatLoginError(err)
	}
	u, err := s.provision(ctx, session)
	return u, session, err
}

// LoginChoices lists the ways of signing in at the configured homeserver. SSO choices
// return to /login_matrix.
func (s *Service) LoginChoices(ctx context.Context) ([]notify.LoginChoice, error) {
	choices, err := s.chat.LoginChoices(ctx, strings.TrimRight(s.cfg.BaseURL, "/")+"/login_matrix")
	if err != nil {
		logx.Warn("Chat login choices failed", "error", err.Error())
		return nil, errs.NewError(errs.ErrChatUpstream)
	}
	return choices, nil
}

// trustedSession reports whether the homeserver that answered may speak for session.UserID.
// The configured homeserver is trusted for any user id; any other homeserver only for ids
// carrying its own host as server name.
func (s *Service) trustedSession(session notify.Session) bool {
	if session.HomeServer == s.chat.HomeServer("") {
		return true
	}
	_, serverName, ok := strings.Cut(session.UserID, ":")
	if !ok || serverName == "" {
		return false
	}
	u, err := url.Parse(session.HomeServer)
	if err != nil {
		return false
	}
	return strings.EqualFold(serverName, u.Host)
}

func chatLoginError(err error) error {
	if errs.KindOf(err) == errs.KindUnauthorized {
		return errs.NewError(errs.ErrChatLoginFailed)
	}
	logx.Warn("Chat login failed", "error", err.Error())
	return errs.NewError(errs.ErrChatUpstream)
}

func (s *Service) provision(ctx context.Context, session notify.Session) (model.User, error) {
	u, err := s.store.GetUserByMatrixID(ctx, session.UserID)
	if err == nil {
		if u.MatrixHomeServer != "" && u.MatrixHomeServer != session.HomeServer {
			logx.Warn("Chat login rejected, homeserver differs from the user's",
				"user_key", u.Key.String(), "home_server", session.HomeServer)
			return model.User{}, errs.NewError(errs.ErrChatLoginFailed)
		}
		return u, nil
	}
	if !errors.Is(err, db.ErrNotFound) {
		return model.User{}, err
	}

	email, err := s.chat.ContactAddress(ctx, session.HomeServer, session.AccessToken)
	if err != nil {
		logx.Warn("Chat contact lookup failed", "matrix_user_id", session.UserID, "error", err.Error())
		email = ""
	}

	now := s.now()
	u = model.User{
		Key:              uuid.New(),
		OrganizationKey:  uuid.New(),
		Email:            email,
		MatrixUserID:     session.UserID,
		MatrixHomeServer: session.HomeServer,
		Created:          now,
	}
	org := model.Organization{
		Key:              u.OrganizationKey,
		OwnerKey:         u.Key,
		Name:             WelcomeOrganizationName,
		MatrixHomeServer: session.HomeServer,
		ContactEmail:     email,
		Created:          now,
	}

	err = s.store.ExecTx(ctx, func(q db.Querier) error {
		if err := q.InsertOrganization(ctx, org); err != nil {
			return err
		}
		return q.InsertUser(ctx, u)
	})
	if err != nil {
		return model.User{}, err
	}

	logx.Info("Provisioned new user", "user_key", u.Key.String(), "organization_key", org.Key.String())
	return u, nil
}
