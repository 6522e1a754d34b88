package game

import (
	"encoding/json"

	"go.uber.org/zap"
)

// 客户端请求类型
const (
	REQ_GET_ROOM_LIST   = "get_room_list"
	REQ_JOIN_GAME       = "join_game"
	REQ_START_GAME      = "start_game"
	REQ_ROLL            = "roll"
	REQ_TOGGLE_DIE      = "toggle_die"
	REQ_BANK            = "bank"
	REQ_RESTART         = "restart"
	REQ_FORCE_NEXT_TURN = "force_next_turn"
	REQ_LEAVE_GAME      = "leave_game"
)

// 服务端响应类型
const (
	RESP_ERROR = "error"

	RESP_ROOM_LIST   = "room_list"
	RESP_JOINED      = "joined"
	RESP_GAME_STATE  = "game_state_update"
	RESP_GAME_START  = "game_start"
	RESP_ROLL_RESULT = "roll_result"
	RESP_MESSAGE     = "message"
)

type RequestWrapper struct {
	ReqType string          `json:"request_type"`
	Data    json.RawMessage `json:"data"`
}

type ResponseWrapper struct {
	RespType string `json:"response_type"`
	Data     any    `json:"data"`
	ErrMsg   string `json:"error_message,omitempty"`
}

func WrapResponse(respType string, data any) ResponseWrapper {
	return ResponseWrapper{
		RespType: respType,
		Data:     data,
	}
}

func WrapErrResponse(errMsg string) ResponseWrapper {
	return ResponseWrapper{
		RespType: RESP_ERROR,
		ErrMsg:   errMsg,
	}
}

// 请求载荷沿用原有前端的字段命名（camelCase）

type JoinGameRequest struct {
	RoomCode   string `json:"roomCode"`
	PlayerName string `json:"playerName"`
}

// RoomActionRequest 覆盖所有只携带房间号的动作
// （start_game / roll / bank / restart / force_next_turn）
type RoomActionRequest struct {
	RoomCode string `json:"roomCode"`
}

type ToggleDieRequest struct {
	RoomCode string `json:"roomCode"`
	DieID    string `json:"dieId"`
}

// 响应载荷

type JoinedResponse struct {
	PlayerID string `json:"playerId"`
	State    *Room  `json:"state"`
}

type RollResultResponse struct {
	Dice    []*Die `json:"dice"`
	Farkle  bool   `json:"farkle"`
	HotDice bool   `json:"hotDice"`
	State   *Room  `json:"state"`
}

type SystemMessageResponse struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func TryUnwrapJoinGameRequest(wrapper RequestWrapper) *JoinGameRequest {
	if wrapper.ReqType != REQ_JOIN_GAME {
		return nil
	}

	var joinGameRequest JoinGameRequest

	err := json.Unmarshal(wrapper.Data, &joinGameRequest)
	if err != nil {
		zap.L().Error(
			"Failed to unwrap JoinGameRequest",
			zap.Error(err),
			zap.Any("wrapper", wrapper),
		)
		return nil
	}

	return &joinGameRequest
}

func TryUnwrapRoomActionRequest(wrapper RequestWrapper) *RoomActionRequest {
	var roomActionRequest RoomActionRequest

	err := json.Unmarshal(wrapper.Data, &roomActionRequest)
	if err != nil {
		zap.L().Error(
			"Failed to unwrap RoomActionRequest",
			zap.Error(err),
			zap.Any("wrapper", wrapper),
		)
		return nil
	}

	return &roomActionRequest
}

func TryUnwrapToggleDieRequest(wrapper RequestWrapper) *ToggleDieRequest {
	if wrapper.ReqType != REQ_TOGGLE_DIE {
		return nil
	}

	var toggleDieRequest ToggleDieRequest

	err := json.Unmarshal(wrapper.Data, &toggleDieRequest)
	if err != nil {
		zap.L().Error(
			"Failed to unwrap ToggleDieRequest",
			zap.Error(err),
			zap.Any("wrapper", wrapper),
		)
		return nil
	}

	return &toggleDieRequest
}
