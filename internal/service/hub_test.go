package service

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"farkle-be/internal/service/game"

	"github.com/stretchr/testify/require"
)

func newTestHub(t *testing.T) *Hub {
	t.Helper()

	h := NewHub(NewRegistry(DefaultRoomCodes...))
	h.farkleDelay = 20 * time.Millisecond

	go h.Run()
	t.Cleanup(h.Close)

	return h
}

func newTestClient(id string) *Client {
	return &Client{
		ID:     id,
		RespCh: make(chan game.ResponseWrapper, 64),
	}
}

// recvType 消费响应通道直到出现指定类型的消息
func recvType(t *testing.T, c *Client, respType string) game.ResponseWrapper {
	t.Helper()

	deadline := time.After(2 * time.Second)

	for {
		select {
		case resp := <-c.RespCh:
			if resp.RespType == respType {
				return resp
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %q on client %s", respType, c.ID)
		}
	}
}

func wrapReq(t *testing.T, reqType string, payload any) game.RequestWrapper {
	t.Helper()

	data, err := json.Marshal(payload)
	require.NoError(t, err)

	return game.RequestWrapper{ReqType: reqType, Data: data}
}

func joinRoom(t *testing.T, h *Hub, c *Client, roomCode, name string) *game.Room {
	t.Helper()

	h.Register(c)
	recvType(t, c, game.RESP_ROOM_LIST)

	h.Submit(c.ID, wrapReq(t, game.REQ_JOIN_GAME, game.JoinGameRequest{
		RoomCode:   roomCode,
		PlayerName: name,
	}))

	resp := recvType(t, c, game.RESP_JOINED)
	joined, ok := resp.Data.(game.JoinedResponse)
	require.True(t, ok)
	require.Equal(t, c.ID, joined.PlayerID)

	return joined.State
}

func TestRegisterPushesRoomList(t *testing.T) {
	h := newTestHub(t)
	c := newTestClient("c1")

	h.Register(c)

	resp := recvType(t, c, game.RESP_ROOM_LIST)
	summaries, ok := resp.Data.([]game.RoomSummary)
	require.True(t, ok)
	require.Len(t, summaries, 5)
	require.Equal(t, "Table 1", summaries[0].Name)
}

func TestJoinGame(t *testing.T) {
	t.Run("invalid room", func(t *testing.T) {
		h := newTestHub(t)
		c := newTestClient("c1")

		h.Register(c)
		recvType(t, c, game.RESP_ROOM_LIST)

		h.Submit(c.ID, wrapReq(t, game.REQ_JOIN_GAME, game.JoinGameRequest{
			RoomCode:   "Table 99",
			PlayerName: "Alice",
		}))

		resp := recvType(t, c, game.RESP_ERROR)
		require.Equal(t, "Invalid Room", resp.ErrMsg)
	})

	t.Run("join and lobby broadcast", func(t *testing.T) {
		h := newTestHub(t)
		lobby := newTestClient("lobby")
		c := newTestClient("c1")

		h.Register(lobby)
		recvType(t, lobby, game.RESP_ROOM_LIST)

		state := joinRoom(t, h, c, "Table 1", "Alice")
		require.Len(t, state.Players, 1)
		require.Equal(t, "c1", state.HostID)

		// 人数变化必须推送给大厅里的所有连接
		resp := recvType(t, lobby, game.RESP_ROOM_LIST)
		summaries := resp.Data.([]game.RoomSummary)
		require.Equal(t, 1, summaries[0].Count)
	})

	t.Run("room full", func(t *testing.T) {
		h := newTestHub(t)

		for i := 0; i < game.MAX_PLAYERS; i++ {
			c := newTestClient(fmt.Sprintf("c%d", i))
			joinRoom(t, h, c, "Table 1", fmt.Sprintf("Player%d", i))
		}

		late := newTestClient("late")
		h.Register(late)
		recvType(t, late, game.RESP_ROOM_LIST)

		h.Submit(late.ID, wrapReq(t, game.REQ_JOIN_GAME, game.JoinGameRequest{
			RoomCode:   "Table 1",
			PlayerName: "Latecomer",
		}))

		resp := recvType(t, late, game.RESP_ERROR)
		require.Equal(t, "Room Full", resp.ErrMsg)
	})

	t.Run("same name is a reconnect", func(t *testing.T) {
		h := newTestHub(t)

		c1 := newTestClient("c1")
		joinRoom(t, h, c1, "Table 1", "Alice")

		c2 := newTestClient("c2")
		state := joinRoom(t, h, c2, "Table 1", "Alice")

		require.Len(t, state.Players, 1, "reconnect must not duplicate the player")
		require.Equal(t, "c2", state.Players[0].ID, "identity is reassigned to the new connection")
		require.True(t, state.Players[0].Connected)
		require.Equal(t, "c2", state.HostID, "host identity follows the reconnect")
	})
}

func TestGetRoomListIsIdempotent(t *testing.T) {
	h := newTestHub(t)
	c := newTestClient("c1")

	h.Register(c)
	first := recvType(t, c, game.RESP_ROOM_LIST).Data.([]game.RoomSummary)

	h.Submit(c.ID, wrapReq(t, game.REQ_GET_ROOM_LIST, struct{}{}))
	second := recvType(t, c, game.RESP_ROOM_LIST).Data.([]game.RoomSummary)

	h.Submit(c.ID, wrapReq(t, game.REQ_GET_ROOM_LIST, struct{}{}))
	third := recvType(t, c, game.RESP_ROOM_LIST).Data.([]game.RoomSummary)

	require.Equal(t, first, second)
	require.Equal(t, second, third)
}

func TestStartGame(t *testing.T) {
	h := newTestHub(t)

	c1 := newTestClient("c1")
	joinRoom(t, h, c1, "Table 1", "Alice")

	// 单人开局静默失败，不广播任何开始消息
	h.Submit(c1.ID, wrapReq(t, game.REQ_START_GAME, game.RoomActionRequest{RoomCode: "Table 1"}))

	c2 := newTestClient("c2")
	joinRoom(t, h, c2, "Table 1", "Bob")

	h.Submit(c1.ID, wrapReq(t, game.REQ_START_GAME, game.RoomActionRequest{RoomCode: "Table 1"}))

	resp := recvType(t, c1, game.RESP_GAME_START)
	state := resp.Data.(*game.Room)
	require.Equal(t, game.STATUS_PLAYING, state.GameStatus)
	require.Equal(t, 0, state.CurrentPlayerIndex)

	recvType(t, c2, game.RESP_GAME_START)
}

// 完整的 Farkle 场景：首掷留一个 5，再掷剩余五个骰子全废，
// 投掷结果先广播、延迟结算后清分移交回合
func TestRollFarkleResolvesAfterDelay(t *testing.T) {
	h := newTestHub(t)

	c1 := newTestClient("c1")
	joinRoom(t, h, c1, "Table 1", "Alice")

	c2 := newTestClient("c2")
	joinRoom(t, h, c2, "Table 1", "Bob")

	h.Submit(c1.ID, wrapReq(t, game.REQ_START_GAME, game.RoomActionRequest{RoomCode: "Table 1"}))
	recvType(t, c1, game.RESP_GAME_START)

	// 开局已确认，此后骰子序列只会在调度循环内被读取
	room := h.registry.Get("Table 1")
	faces := []int{5, 2, 3, 4, 6, 3, 2, 3, 4, 6, 2}
	i := 0
	room.RollDie = func() int {
		v := faces[i%len(faces)]
		i++
		return v
	}

	h.Submit(c1.ID, wrapReq(t, game.REQ_ROLL, game.RoomActionRequest{RoomCode: "Table 1"}))

	first := recvType(t, c1, game.RESP_ROLL_RESULT).Data.(game.RollResultResponse)
	require.False(t, first.Farkle)
	require.Len(t, first.Dice, 6)

	var fiveID string
	for _, d := range first.Dice {
		if d.Value == 5 {
			fiveID = d.ID
			break
		}
	}
	require.NotEmpty(t, fiveID)

	h.Submit(c1.ID, wrapReq(t, game.REQ_TOGGLE_DIE, game.ToggleDieRequest{
		RoomCode: "Table 1",
		DieID:    fiveID,
	}))
	recvType(t, c1, game.RESP_GAME_STATE)

	// c2 同样收到第一次投掷的广播，先消费掉
	require.False(t, recvType(t, c2, game.RESP_ROLL_RESULT).Data.(game.RollResultResponse).Farkle)

	h.Submit(c1.ID, wrapReq(t, game.REQ_ROLL, game.RoomActionRequest{RoomCode: "Table 1"}))

	second := recvType(t, c2, game.RESP_ROLL_RESULT).Data.(game.RollResultResponse)
	require.True(t, second.Farkle)
	require.Len(t, second.Dice, 5)
	require.Equal(t, 50, second.State.RoundAccumulatedScore, "the losing roll is visible before the wipe")
	require.Equal(t, 0, second.State.CurrentPlayerIndex)

	// 延迟结算：清分、移交回合、总分不变
	resolved := recvType(t, c2, game.RESP_GAME_STATE).Data.(*game.Room)
	require.Equal(t, 0, resolved.RoundAccumulatedScore)
	require.Equal(t, 1, resolved.CurrentPlayerIndex)
	require.Equal(t, 0, resolved.Players[0].Score)
}

func TestForceNextTurn(t *testing.T) {
	h := newTestHub(t)

	c1 := newTestClient("c1")
	joinRoom(t, h, c1, "Table 1", "Alice")

	c2 := newTestClient("c2")
	joinRoom(t, h, c2, "Table 1", "Bob")

	h.Submit(c1.ID, wrapReq(t, game.REQ_START_GAME, game.RoomActionRequest{RoomCode: "Table 1"}))
	recvType(t, c2, game.RESP_GAME_START)

	t.Run("rejected for non-host", func(t *testing.T) {
		h.Submit(c2.ID, wrapReq(t, game.REQ_FORCE_NEXT_TURN, game.RoomActionRequest{RoomCode: "Table 1"}))

		resp := recvType(t, c2, game.RESP_ERROR)
		require.Equal(t, "Only the host can force a turn skip.", resp.ErrMsg)
	})

	t.Run("host skips a stuck turn", func(t *testing.T) {
		h.Submit(c1.ID, wrapReq(t, game.REQ_FORCE_NEXT_TURN, game.RoomActionRequest{RoomCode: "Table 1"}))

		state := recvType(t, c2, game.RESP_GAME_STATE).Data.(*game.Room)
		require.Equal(t, 1, state.CurrentPlayerIndex)
		require.Equal(t, 0, state.RoundAccumulatedScore)

		msg := recvType(t, c2, game.RESP_MESSAGE).Data.(game.SystemMessageResponse)
		require.Equal(t, "system", msg.Type)
		require.Equal(t, "Host forced next turn.", msg.Text)
	})
}

func TestLeaveAndDisconnect(t *testing.T) {
	h := newTestHub(t)

	c1 := newTestClient("c1")
	joinRoom(t, h, c1, "Table 1", "Alice")

	c2 := newTestClient("c2")
	joinRoom(t, h, c2, "Table 1", "Bob")

	// 消费 c1 队列里两次加入的状态广播
	recvType(t, c1, game.RESP_GAME_STATE)
	both := recvType(t, c1, game.RESP_GAME_STATE).Data.(*game.Room)
	require.Len(t, both.Players, 2)

	// leave_game 与传输层断开走同一条清理路径
	h.Submit(c2.ID, wrapReq(t, game.REQ_LEAVE_GAME, struct{}{}))

	state := recvType(t, c1, game.RESP_GAME_STATE).Data.(*game.Room)
	require.Len(t, state.Players, 1)
	require.Equal(t, "Alice", state.Players[0].Name)

	// 最后一人断开后房间整体回收为等待状态
	h.Disconnect(c1.ID)

	probe := newTestClient("probe")
	h.Register(probe)

	summaries := recvType(t, probe, game.RESP_ROOM_LIST).Data.([]game.RoomSummary)
	require.Equal(t, 0, summaries[0].Count)
	require.Equal(t, game.STATUS_WAITING, summaries[0].Status)
}

func TestRestartKeepsPlayers(t *testing.T) {
	h := newTestHub(t)

	c1 := newTestClient("c1")
	joinRoom(t, h, c1, "Table 1", "Alice")

	c2 := newTestClient("c2")
	joinRoom(t, h, c2, "Table 1", "Bob")

	h.Submit(c1.ID, wrapReq(t, game.REQ_START_GAME, game.RoomActionRequest{RoomCode: "Table 1"}))
	recvType(t, c1, game.RESP_GAME_START)
	recvType(t, c1, game.RESP_ROOM_LIST)

	// 结束一局后重新开赛
	room := h.registry.Get("Table 1")
	h.Submit(c1.ID, wrapReq(t, game.REQ_RESTART, game.RoomActionRequest{RoomCode: "Table 1"}))

	// 进行中的重开请求被静默忽略，房间保持原样
	h.Submit(c1.ID, wrapReq(t, game.REQ_GET_ROOM_LIST, struct{}{}))
	summaries := recvType(t, c1, game.RESP_ROOM_LIST).Data.([]game.RoomSummary)
	require.Equal(t, game.STATUS_PLAYING, summaries[0].Status)

	room.Players[0].Score = 10000
	room.EndGame()

	h.Submit(c1.ID, wrapReq(t, game.REQ_RESTART, game.RoomActionRequest{RoomCode: "Table 1"}))

	state := recvType(t, c1, game.RESP_GAME_START).Data.(*game.Room)
	require.Equal(t, game.STATUS_PLAYING, state.GameStatus)
	require.Len(t, state.Players, 2)
	require.Equal(t, 0, state.Players[0].Score)
	require.Nil(t, state.Winner)
}
