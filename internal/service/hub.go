package service

import (
	"time"

	"farkle-be/internal/service/game"

	"go.uber.org/zap"
)

// Farkle 结算前的展示窗口：先广播失败的投掷，
// 等客户端看清骰面后再清分移交回合
const FARKLE_RESOLVE_DELAY = 2 * time.Second

// Client 是一条已注册的连接
// RespCh 由连接的写协程消费
type Client struct {
	ID     string
	RespCh chan game.ResponseWrapper
}

// HubAction 聚合进入调度循环的所有事件
// 连接注册、断开和游戏动作都走同一条队列，逐个处理
type HubAction struct {
	SenderID   string
	Register   *Client
	Disconnect *struct{}
	Request    *game.RequestWrapper
}

type farkleResolution struct {
	RoomCode string
}

// Hub 是实时调度器：唯一持有注册表写权的协程
// 所有房间状态的变更都在 Run 循环内串行完成，
// 延迟的 Farkle 结算经由 tmoCh 回到同一条队列，
// 不会越过中途到达的其他动作
type Hub struct {
	registry *Registry
	clients  map[string]*Client

	actionCh chan HubAction
	tmoCh    chan farkleResolution
	doneCh   chan struct{}

	farkleDelay time.Duration
}

func NewHub(registry *Registry) *Hub {
	return &Hub{
		registry:    registry,
		clients:     make(map[string]*Client),
		actionCh:    make(chan HubAction, 256),
		tmoCh:       make(chan farkleResolution, 16),
		doneCh:      make(chan struct{}),
		farkleDelay: FARKLE_RESOLVE_DELAY,
	}
}

func (h *Hub) Register(client *Client) {
	h.actionCh <- HubAction{
		SenderID: client.ID,
		Register: client,
	}
}

func (h *Hub) Disconnect(senderID string) {
	h.actionCh <- HubAction{
		SenderID:   senderID,
		Disconnect: &struct{}{},
	}
}

func (h *Hub) Submit(senderID string, wrapper game.RequestWrapper) bool {
	select {
	case h.actionCh <- HubAction{SenderID: senderID, Request: &wrapper}:
		return true
	default:
		zap.L().Error(
			"提交动作失败：调度队列已满",
			zap.String("sender_id", senderID),
			zap.String("request_type", wrapper.ReqType),
		)
		return false
	}
}

func (h *Hub) Close() {
	close(h.doneCh)
}

// Run 是调度主循环，应当在独立协程中运行
func (h *Hub) Run() {
	zap.L().Info("调度器启动", zap.Int("room_count", len(h.registry.Rooms())))

	for {
		select {
		case act := <-h.actionCh:
			h.handleAction(act)

		case res := <-h.tmoCh:
			h.resolveFarkle(res.RoomCode)

		case <-h.doneCh:
			zap.L().Info("收到退出信号，调度器结束")
			return
		}
	}
}

func (h *Hub) handleAction(act HubAction) {
	if act.Register != nil {
		h.clients[act.Register.ID] = act.Register

		zap.L().Info(
			"连接已注册",
			zap.String("client_id", act.Register.ID),
		)

		// 新连接一注册就推送一次大厅列表
		h.unicast(act.Register.ID, game.WrapResponse(
			game.RESP_ROOM_LIST,
			h.registry.Summaries(),
		))

		return
	}

	if act.Disconnect != nil {
		delete(h.clients, act.SenderID)
		h.removeEverywhere(act.SenderID)

		zap.L().Info(
			"连接已断开",
			zap.String("client_id", act.SenderID),
		)

		return
	}

	if act.Request != nil {
		h.dispatch(act.SenderID, *act.Request)
	}
}

// scheduleFarkleResolution 在展示窗口结束后把结算事件投回队列
func (h *Hub) scheduleFarkleResolution(roomCode string) {
	time.AfterFunc(h.farkleDelay, func() {
		select {
		case h.tmoCh <- farkleResolution{RoomCode: roomCode}:
		case <-h.doneCh:
		}
	})
}

func (h *Hub) unicast(clientID string, resp game.ResponseWrapper) {
	client, ok := h.clients[clientID]
	if !ok {
		zap.L().Warn(
			"无法找到连接进行单播",
			zap.String("client_id", clientID),
		)
		return
	}

	select {
	case client.RespCh <- resp:
	default:
		zap.L().Warn(
			"发送单播响应失败：连接响应通道已满",
			zap.String("client_id", clientID),
		)
	}
}

func (h *Hub) unicastErr(clientID, errMsg string) {
	h.unicast(clientID, game.WrapErrResponse(errMsg))
}

func (h *Hub) broadcastAll(resp game.ResponseWrapper) {
	for id := range h.clients {
		h.unicast(id, resp)
	}
}

// broadcastRoom 只发给房间内的玩家
func (h *Hub) broadcastRoom(room *game.Room, resp game.ResponseWrapper) {
	for _, p := range room.Players {
		if _, ok := h.clients[p.ID]; ok {
			h.unicast(p.ID, resp)
		}
	}
}
