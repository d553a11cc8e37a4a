package handlers

// live.go serves GET /api/v1/rounds/:id/live, the WebSocket feed of round changes.
// Auth runs before the upgrade, so only signed-in players can watch.

import (
	ws "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"github.com/becketmccurdy/buddiesgolf/internal/websocket"
)

const localLiveRound = "live_round_id"

// LiveUpgrade rejects plain HTTP requests and unknown rounds before the protocol switch.
func LiveUpgrade(d *Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !ws.IsWebSocketUpgrade(c) {
			return errorJSON(c, fiber.StatusUpgradeRequired, "websocket upgrade required")
		}
		id, ok := parseID(c)
		if !ok {
			return errorJSON(c, fiber.StatusBadRequest, "invalid round id")
		}
		round, err := d.Store.GetRound(c.UserContext(), id)
		if err != nil {
			return d.storeError(c, err, "load round")
		}
		if round == nil {
			return errorJSON(c, fiber.StatusNotFound, "round not found")
		}
		c.Locals(localLiveRound, id.String())
		return c.Next()
	}
}

// LiveRound streams websocket.Event frames until the client disconnects or the hub stops.
// Messages from the client are read only to notice the disconnect.
func LiveRound(d *Deps) fiber.Handler {
	return ws.New(func(conn *ws.Conn) {
		roundID, _ := conn.Locals(localLiveRound).(string)
		client := websocket.NewClient(roundID)
		if !d.Hub.Register(client) {
			return
		}
		defer d.Hub.Unregister(client)

		go func() {
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					d.Hub.Unregister(client)
					return
				}
			}
		}()

		for msg := range client.Send {
			if err := conn.WriteMessage(ws.TextMessage, msg); err != nil {
				d.Log.Debug("live write failed", "round_id", roundID, "error", err)
				return
			}
		}
	})
}
