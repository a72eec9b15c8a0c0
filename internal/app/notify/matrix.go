/*
Package notify delivers organization activity to Matrix chat rooms.

MatrixClient wraps mautrix for the calls the service needs: login, login choices,
whoami, joined rooms, sending plain text and reading the account's third-party ids.
Fanout selects the rooms subscribed to a category and Worker drains the notification outbox.
*/
package notify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"maunium.net/go/mautrix"
	"maunium.net/go/mautrix/id"

	"kinbrio/internal/pkg/errs"
	"kinbrio/internal/pkg/logx"
)

const (
	defaultHomeServer = "https://matrix-client.matrix.org"
	initialDeviceName = "Kinbrio-client"
	passwordIcon      = "/fs/images/sso/user_password.svg"
)

// Session is the result of a successful login.
type Session struct {
	UserID       string `json:"user_id"`
	AccessToken  string `json:"access_token"`
	DeviceID     string `json:"device_id"`
	RefreshToken string `json:"refresh_token"`
	HomeServer   string `json:"-"`
}

// LoginChoice is one way of signing in offered by the homeserver.
type LoginChoice struct {
	Display string `json:"display"`
	URL     string `json:"url"`
	Icon    string `json:"icon"`
}

// MatrixClient is a stateless homeserver client; every call names its homeserver and token.
type MatrixClient struct {
	httpClient *http.Client
	homeServer string
	deviceID   string
}

// NewMatrixClient builds a client. homeServer is used when a call passes an empty or
// unparsable homeserver URL.
func NewMatrixClient(httpClient *http.Client, homeServer, deviceID string) *MatrixClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if homeServer == "" {
		homeServer = defaultHomeServer
	}
	return &MatrixClient{httpClient: httpClient, homeServer: homeServer, deviceID: deviceID}
}

// HomeServer resolves the base URL used for a call.
func (c *MatrixClient) HomeServer(hs string) string {
	u, err := url.Parse(strings.TrimSpace(hs))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return strings.TrimRight(c.homeServer, "/")
	}
	return strings.TrimRight(u.String(), "/")
}

func (c *MatrixClient) client(homeServer, token string) (*mautrix.Client, error) {
	cli, err := mautrix.NewClient(c.HomeServer(homeServer), "", token)
	if err != nil {
		return nil, fmt.Errorf("matrix: new client: %w", err)
	}
	cli.Client = c.httpClient
	cli.Log = logx.Component("matrix")
	return cli, nil
}

// LoginPassword signs in with a Matrix user id or localpart and a password.
func (c *MatrixClient) LoginPassword(ctx context.Context, homeServer, user, password string) (Session, error) {
	return c.login(ctx, homeServer, &mautrix.ReqLogin{
		Type:       mautrix.AuthTypePassword,
		Identifier: mautrix.UserIdentifier{Type: mautrix.IdentifierTypeUser, User: user},
		Password:   password,
	})
}

// LoginToken exchanges a single-use login token, as issued by an SSO redirect.
func (c *MatrixClient) LoginToken(ctx context.Context, homeServer, token string) (Session, error) {
	return c.login(ctx, homeServer, &mautrix.ReqLogin{
		Type:  mautrix.AuthTypeToken,
		Token: token,
	})
}

func (c *MatrixClient) login(ctx context.Context, homeServer string, req *mautrix.ReqLogin) (Session, error) {
	req.DeviceID = id.DeviceID(c.deviceID)
	req.InitialDeviceDisplayName = initialDeviceName

	cli, err := c.client(homeServer, "")
	if err != nil {
		return Session{}, err
	}
	resp, err := cli.Login(ctx, req)
	if err != nil {
		return Session{}, classify("login", err)
	}
	return Session{
		UserID:      string(resp.UserID),
		AccessToken: resp.AccessToken,
		DeviceID:    string(resp.DeviceID),
		HomeServer:  c.HomeServer(homeServer),
	}, nil
}

// LoginChoices lists the password option and every SSO identity provider offered by the
// configured homeserver. SSO choices send the browser back to redirectURL with a loginToken.
func (c *MatrixClient) LoginChoices(ctx context.Context, redirectURL string) ([]LoginChoice, error) {
	cli, err := c.client("", "")
	if err != nil {
		return nil, err
	}
	var out struct {
		Flows []struct {
			Type              string `json:"type"`
			IdentityProviders []struct {
				ID   string `json:"id"`
				Name string `json:"name"`
				Icon string `json:"icon"`
			} `json:"identity_providers"`
		} `json:"flows"`
	}
	if _, err := cli.MakeRequest(ctx, http.MethodGet, cli.BuildClientURL("v3", "login"), nil, &out); err != nil {
		return nil, classify("login flows", err)
	}

	hs := c.HomeServer("")
	var choices []LoginChoice
	for _, flow := range out.Flows {
		switch flow.Type {
		case string(mautrix.AuthTypePassword):
			choices = append(choices, LoginChoice{Display: "Username and password", URL: "/login", Icon: passwordIcon})
		case string(mautrix.AuthTypeSSO):
			if len(flow.IdentityProviders) == 0 {
				choices = append(choices, LoginChoice{Display: "SSO", URL: ssoRedirect(hs, "", redirectURL)})
			}
			for _, idp := range flow.IdentityProviders {
				choices = append(choices, LoginChoice{
					Display: idp.Name,
					URL:     ssoRedirect(hs, idp.ID, redirectURL),
					Icon:    mediaURL(hs, idp.Icon),
				})
			}
		}
	}
	return choices, nil
}

func ssoRedirect(hs, idp, redirectURL string) string {
	path := hs + "/_matrix/client/v3/login/sso/redirect"
	if idp != "" {
		path += "/" + url.PathEscape(idp)
	}
	return path + "?" + url.Values{"redirectUrl": {redirectURL}}.Encode()
}

// mediaURL turns an mxc:// icon into a plain download link on hs.
func mediaURL(hs, icon string) string {
	if rest, ok := strings.CutPrefix(icon, "mxc://"); ok {
		return hs + "/_matrix/media/v3/download/" + rest
	}
	return icon
}

// WhoAmI returns the user id owning token.
func (c *MatrixClient) WhoAmI(ctx context.Context, homeServer, token string) (string, error) {
	cli, err := c.client(homeServer, token)
	if err != nil {
		return "", err
	}
	resp, err := cli.Whoami(ctx)
	if err != nil {
		return "", classify("whoami", err)
	}
	return string(resp.UserID), nil
}

// JoinedRooms returns the ids of the rooms the token's user has joined.
func (c *MatrixClient) JoinedRooms(ctx context.Context, homeServer, token string) (map[string]struct{}, error) {
	cli, err := c.client(homeServer, token)
	if err != nil {
		return nil, err
	}
	resp, err := cli.JoinedRooms(ctx)
	if err != nil {
		return nil, classify("joined rooms", err)
	}
	joined := make(map[string]struct{}, len(resp.JoinedRooms))
	for _, roomID := range resp.JoinedRooms {
		joined[string(roomID)] = struct{}{}
	}
	return joined, nil
}

// SendText posts a plain m.text message to roomID.
func (c *MatrixClient) SendText(ctx context.Context, homeServer, token, roomID, text string) error {
	cli, err := c.client(homeServer, token)
	if err != nil {
		return err
	}
	if _, err := cli.SendText(ctx, id.RoomID(roomID), text); err != nil {
		return classify("send", err)
	}
	return nil
}

// ContactAddress returns the first email or phone bound to the account, or "".
func (c *MatrixClient) ContactAddress(ctx context.Context, homeServer, token string) (string, error) {
	cli, err := c.client(homeServer, token)
	if err != nil {
		return "", err
	}
	resp, err := cli.GetOwn3PIDs(ctx)
	if err != nil {
		return "", classify("3pid", err)
	}
	for _, pid := range resp.ThreePIDs {
		medium := string(pid.Medium)
		if (medium == "email" || medium == "msisdn") && pid.Address != "" {
			return pid.Address, nil
		}
	}
	return "", nil
}

// classify attaches an errs.Kind based on the homeserver's errcode.
func classify(op string, err error) error {
	kind := errs.KindUpstream
	switch {
	case errors.Is(err, mautrix.MUnknownToken), errors.Is(err, mautrix.MMissingToken), errors.Is(err, mautrix.MForbidden):
		kind = errs.KindUnauthorized
	case errors.Is(err, mautrix.MLimitExceeded):
		kind = errs.KindRateLimited
	}
	return errs.WithKind(kind, fmt.Errorf("matrix: %s: %w", op, err))
}
