package websocket

import (
	"encoding/json"
	"time"

	"farkle-be/internal/service"
	"farkle-be/internal/service/game"
	"farkle-be/internal/state"

	"github.com/gorilla/websocket"
	"github.com/kataras/iris/v12"
	"go.uber.org/zap"
)

// Connect 把一条 HTTP 请求升级为游戏连接
// 读循环把客户端动作提交给调度器，写协程消费响应通道，
// 连接断开时通知调度器清理对应玩家
func Connect(appState *state.AppState) iris.Handler {
	return func(ctx iris.Context) {
		conn, err := upgrader.Upgrade(
			ctx.ResponseWriter(),
			ctx.Request(),
			nil,
		)
		if err != nil {
			zap.L().Error("升级到WebSocket失败", zap.Error(err))
			ctx.StatusCode(iris.StatusBadRequest)
			return
		}

		defer conn.Close()

		conn.SetReadDeadline(time.Now().Add(HEARTBEAT_TIMEOUT))
		conn.SetPongHandler(heartbeatHandler(conn))

		clientID := game.GenID()
		clientIP := ctx.RemoteAddr()

		respCh := make(chan game.ResponseWrapper, 64)

		appState.Hub.Register(&service.Client{
			ID:     clientID,
			RespCh: respCh,
		})

		zap.L().Info(
			"客户端连接建立",
			zap.String("client_ip", clientIP),
			zap.String("client_id", clientID),
		)

		// 写协程的退出信号
		writeDoneCh := make(chan struct{})
		defer close(writeDoneCh)

		// 写协程：心跳 + 响应下发
		go func() {
			ticker := time.NewTicker(HEARTBEAT_INTERVAL)
			defer ticker.Stop()

			for {
				select {
				case <-writeDoneCh:
					zap.L().Debug(
						"WebSocket写入协程退出",
						zap.String("client_id", clientID),
					)
					return

				case <-ticker.C:
					conn.SetWriteDeadline(time.Now().Add(HEARTBEAT_TIMEOUT))

					if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
						zap.L().Error(
							"发送心跳失败",
							zap.String("client_id", clientID),
							zap.Error(err),
						)
						return
					}

				case resp := <-respCh:
					if err := conn.WriteJSON(resp); err != nil {
						zap.L().Error(
							"发送消息失败",
							zap.String("client_id", clientID),
							zap.Error(err),
						)
						return
					}
				}
			}
		}()

		// 读循环（主协程）
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(
					err,
					websocket.CloseGoingAway,
					websocket.CloseAbnormalClosure,
				) {
					zap.L().Error(
						"读取消息失败",
						zap.String("client_id", clientID),
						zap.Error(err),
					)
				}

				break
			}

			var wrapper game.RequestWrapper

			if err := json.Unmarshal(msg, &wrapper); err != nil {
				zap.L().Error(
					"解析消息失败",
					zap.String("client_id", clientID),
					zap.Error(err),
				)

				respCh <- game.WrapErrResponse("Invalid request format")

				continue
			}

			if !appState.Hub.Submit(clientID, wrapper) {
				respCh <- game.WrapErrResponse("Server busy, try again later")
			}
		}

		// 读循环退出即客户端断开，交给调度器清理玩家
		appState.Hub.Disconnect(clientID)

		zap.L().Info(
			"客户端连接关闭",
			zap.String("client_ip", clientIP),
			zap.String("client_id", clientID),
		)
	}
}
