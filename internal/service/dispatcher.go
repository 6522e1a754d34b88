package service

import (
	"farkle-be/internal/service/game"

	"go.uber.org/zap"
)

// dispatch 把一条客户端动作映射到对应房间的状态机调用
// 校验失败只私发 error，房间状态保持原样
func (h *Hub) dispatch(senderID string, wrapper game.RequestWrapper) {
	switch wrapper.ReqType {
	case game.REQ_GET_ROOM_LIST:
		h.unicast(senderID, game.WrapResponse(
			game.RESP_ROOM_LIST,
			h.registry.Summaries(),
		))

	case game.REQ_JOIN_GAME:
		h.handleJoinGame(senderID, wrapper)

	case game.REQ_START_GAME:
		h.handleStartGame(senderID, wrapper)

	case game.REQ_ROLL:
		h.handleRoll(senderID, wrapper)

	case game.REQ_TOGGLE_DIE:
		h.handleToggleDie(senderID, wrapper)

	case game.REQ_BANK:
		h.handleBank(senderID, wrapper)

	case game.REQ_RESTART:
		h.handleRestart(senderID, wrapper)

	case game.REQ_FORCE_NEXT_TURN:
		h.handleForceNextTurn(senderID, wrapper)

	case game.REQ_LEAVE_GAME:
		h.removeEverywhere(senderID)

	default:
		zap.L().Warn(
			"未知的请求类型",
			zap.String("sender_id", senderID),
			zap.String("request_type", wrapper.ReqType),
		)
		h.unicastErr(senderID, "Unknown request")
	}
}

// handleJoinGame 处理加入与重连
// 同名玩家视为断线重连：顶替连接标识并恢复在线状态
func (h *Hub) handleJoinGame(senderID string, wrapper game.RequestWrapper) {
	req := game.TryUnwrapJoinGameRequest(wrapper)
	if req == nil {
		h.unicastErr(senderID, "Invalid Room")
		return
	}

	room := h.registry.Get(req.RoomCode)
	if room == nil {
		h.unicastErr(senderID, "Invalid Room")
		return
	}

	existing := room.FindPlayerByName(req.PlayerName)

	if existing == nil && len(room.Players) >= game.MAX_PLAYERS {
		h.unicastErr(senderID, "Room Full")
		return
	}

	if existing != nil {
		// 房主重连时顺带更新房主标识，保持 hostId 始终指向在场玩家
		if room.HostID == existing.ID {
			room.HostID = senderID
		}

		existing.ID = senderID
		existing.Connected = true

		zap.L().Info(
			"玩家断线重连",
			zap.String("room_code", room.RoomCode),
			zap.String("player_name", req.PlayerName),
			zap.String("player_id", senderID),
		)
	} else {
		if !room.AddPlayer(senderID, req.PlayerName) {
			h.unicastErr(senderID, "Room Full")
			return
		}

		zap.L().Info(
			"玩家加入房间",
			zap.String("room_code", room.RoomCode),
			zap.String("player_name", req.PlayerName),
			zap.String("player_id", senderID),
		)
	}

	snapshot := room.Snapshot()

	h.unicast(senderID, game.WrapResponse(
		game.RESP_JOINED,
		game.JoinedResponse{
			PlayerID: senderID,
			State:    snapshot,
		},
	))

	h.broadcastRoom(room, game.WrapResponse(game.RESP_GAME_STATE, snapshot))

	// 人数变化影响大厅展示，向所有连接广播
	h.broadcastAll(game.WrapResponse(game.RESP_ROOM_LIST, h.registry.Summaries()))
}

// handleStartGame 人数不足时静默失败
func (h *Hub) handleStartGame(senderID string, wrapper game.RequestWrapper) {
	req := game.TryUnwrapRoomActionRequest(wrapper)
	if req == nil {
		return
	}

	room := h.registry.Get(req.RoomCode)
	if room == nil {
		return
	}

	if !room.Start() {
		return
	}

	zap.L().Info("游戏开始", zap.String("room_code", room.RoomCode))

	h.broadcastRoom(room, game.WrapResponse(game.RESP_GAME_START, room.Snapshot()))
	h.broadcastAll(game.WrapResponse(game.RESP_ROOM_LIST, h.registry.Summaries()))
}

// handleRoll 广播投掷结果
// Farkle 时先让客户端看到失败的骰面，结算延后进队列
func (h *Hub) handleRoll(senderID string, wrapper game.RequestWrapper) {
	req := game.TryUnwrapRoomActionRequest(wrapper)
	if req == nil {
		return
	}

	room := h.registry.Get(req.RoomCode)
	if room == nil {
		return
	}

	result, err := room.Roll(senderID)
	if err != nil {
		h.unicastErr(senderID, err.Error())
		return
	}

	h.broadcastRoom(room, game.WrapResponse(
		game.RESP_ROLL_RESULT,
		game.RollResultResponse{
			Dice:    result.Dice,
			Farkle:  result.Farkle,
			HotDice: result.HotDice,
			State:   room.Snapshot(),
		},
	))

	if result.Farkle {
		zap.L().Info(
			"Farkle，等待结算",
			zap.String("room_code", room.RoomCode),
			zap.String("player_id", senderID),
		)

		h.scheduleFarkleResolution(room.RoomCode)
	}
}

// resolveFarkle 执行延迟到期的 Farkle 结算
func (h *Hub) resolveFarkle(roomCode string) {
	room := h.registry.Get(roomCode)
	if room == nil {
		return
	}

	room.ResolveFarkle()

	h.broadcastRoom(room, game.WrapResponse(game.RESP_GAME_STATE, room.Snapshot()))
}

func (h *Hub) handleToggleDie(senderID string, wrapper game.RequestWrapper) {
	req := game.TryUnwrapToggleDieRequest(wrapper)
	if req == nil {
		return
	}

	room := h.registry.Get(req.RoomCode)
	if room == nil {
		return
	}

	room.ToggleSelection(senderID, req.DieID)

	h.broadcastRoom(room, game.WrapResponse(game.RESP_GAME_STATE, room.Snapshot()))
}

func (h *Hub) handleBank(senderID string, wrapper game.RequestWrapper) {
	req := game.TryUnwrapRoomActionRequest(wrapper)
	if req == nil {
		return
	}

	room := h.registry.Get(req.RoomCode)
	if room == nil {
		return
	}

	if err := room.Bank(senderID); err != nil {
		h.unicastErr(senderID, err.Error())
		return
	}

	h.broadcastRoom(room, game.WrapResponse(game.RESP_GAME_STATE, room.Snapshot()))
}

// handleRestart 只在一局结束后有效，其余情况静默忽略
func (h *Hub) handleRestart(senderID string, wrapper game.RequestWrapper) {
	req := game.TryUnwrapRoomActionRequest(wrapper)
	if req == nil {
		return
	}

	room := h.registry.Get(req.RoomCode)
	if room == nil {
		return
	}

	if !room.Restart() {
		return
	}

	zap.L().Info("重新开赛", zap.String("room_code", room.RoomCode))

	h.broadcastRoom(room, game.WrapResponse(game.RESP_GAME_START, room.Snapshot()))
}

// handleForceNextTurn 房主专用：跳过卡住的回合
func (h *Hub) handleForceNextTurn(senderID string, wrapper game.RequestWrapper) {
	req := game.TryUnwrapRoomActionRequest(wrapper)
	if req == nil {
		return
	}

	room := h.registry.Get(req.RoomCode)
	if room == nil {
		return
	}

	if room.HostID != senderID {
		h.unicastErr(senderID, "Only the host can force a turn skip.")
		return
	}

	room.ForceNextTurn()

	zap.L().Info(
		"房主强制跳过回合",
		zap.String("room_code", room.RoomCode),
		zap.String("host_id", senderID),
	)

	h.broadcastRoom(room, game.WrapResponse(game.RESP_GAME_STATE, room.Snapshot()))
	h.broadcastRoom(room, game.WrapResponse(
		game.RESP_MESSAGE,
		game.SystemMessageResponse{
			Type: "system",
			Text: "Host forced next turn.",
		},
	))
}

// removeEverywhere 把一条连接对应的玩家从所有房间移除
// 连接不记录自己属于哪个房间，按身份逐个房间匹配；
// 清空的房间整体回收为等待状态而不是删除
func (h *Hub) removeEverywhere(senderID string) {
	for _, room := range h.registry.Rooms() {
		room.RemovePlayer(senderID)

		h.broadcastRoom(room, game.WrapResponse(game.RESP_GAME_STATE, room.Snapshot()))

		if len(room.Players) == 0 {
			room.Reset()
		}
	}

	h.broadcastAll(game.WrapResponse(game.RESP_ROOM_LIST, h.registry.Summaries()))
}
