package handler

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"kinbrio/internal/app/live"
	"kinbrio/internal/pkg/auth/jwt"
	"kinbrio/internal/pkg/errs"
	"kinbrio/internal/pkg/logx"
	"kinbrio/internal/pkg/resp"
)

// HandleFeed upgrades the connection and streams the caller's organization events until
// the session expires or either side closes.
func HandleFeed(upgrader websocket.Upgrader, deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := jwt.SessionFromContext(r.Context())
		if claims == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket")
			return
		}

		client := live.NewClient(conn, claims.OrganizationKey, claims.Key, time.Unix(claims.ExpiresAt, 0))
		if !deps.Hub.Attach(client) {
			logx.Warn("Live feed unavailable, closing connection", "organization_key", claims.OrganizationKey.String())
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "feed unavailable"),
				time.Now().Add(time.Second))
			_ = conn.Close()
			return
		}

		go client.WritePump()

		logx.Info("Live feed client connected", "user_key", claims.Key.String(), "organization_key", claims.OrganizationKey.String())

		client.ReadPump()
	}
}
