package game

import (
	"errors"
	"math/rand"
	"sort"
)

// RollResult 是一次投掷的结果，用于广播给整个房间
type RollResult struct {
	Dice       []*Die
	Farkle     bool
	HotDice    bool
	RoundScore int
}

func NewRoom(code string) *Room {
	return &Room{
		RoomCode:              code,
		Players:               make([]*Player, 0, MAX_PLAYERS),
		CurrentPlayerIndex:    0,
		RoundAccumulatedScore: 0,
		DiceCountToRoll:       6,
		CurrentDice:           make([]*Die, 0, 6),
		FinalRoundTriggeredBy: -1,
		GameStatus:            STATUS_WAITING,
		RollDie: func() int {
			return rand.Intn(6) + 1
		},
	}
}

// Reset 把房间恢复到初始状态，玩家列表也会被清空
// 与 Restart 不同，Reset 用于房间完全空置后的回收
func (r *Room) Reset() {
	r.Players = r.Players[:0]
	r.CurrentPlayerIndex = 0
	r.ResetRound()
	r.IsFinalRound = false
	r.FinalRoundTriggeredBy = -1
	r.GameStatus = STATUS_WAITING
	r.Winner = nil
	r.HostID = ""
}

// ResetRound 清空回合内状态
// 在新回合开始、Farkle 结算和存分之后各调用一次
func (r *Room) ResetRound() {
	r.RoundAccumulatedScore = 0
	r.DiceCountToRoll = 6
	r.CurrentDice = r.CurrentDice[:0]
}

func (r *Room) CurrentPlayer() *Player {
	if len(r.Players) == 0 {
		return nil
	}

	return r.Players[r.CurrentPlayerIndex]
}

func (r *Room) FindPlayerByName(name string) *Player {
	for _, p := range r.Players {
		if p.Name == name {
			return p
		}
	}

	return nil
}

// AddPlayer 按加入顺序追加玩家，第一个加入者成为房主
func (r *Room) AddPlayer(id, name string) bool {
	if len(r.Players) >= MAX_PLAYERS {
		return false
	}

	r.Players = append(r.Players, &Player{
		ID:        id,
		Name:      name,
		Score:     0,
		Connected: true,
	})

	if r.HostID == "" {
		r.HostID = id
	}

	return true
}

// RemovePlayer 移除玩家并修正回合指针
// 指针的调整规则：被移除者在指针之前则指针左移一位；
// 被移除者正是当前回合玩家，则下一位玩家顺位继承回合
// （数组左移后指针天然指向下一位，越界时回绕到 0），
// 且游戏进行中时重置回合状态以示公平
// 返回值表示本次移除是否影响了当前回合
func (r *Room) RemovePlayer(id string) bool {
	idx := -1

	for i, p := range r.Players {
		if p.ID == id {
			idx = i
			break
		}
	}

	if idx == -1 {
		return false
	}

	wasCurrentTurn := idx == r.CurrentPlayerIndex

	r.Players = append(r.Players[:idx], r.Players[idx+1:]...)

	if idx < r.CurrentPlayerIndex {
		r.CurrentPlayerIndex--
	} else if idx == r.CurrentPlayerIndex {
		if r.CurrentPlayerIndex >= len(r.Players) {
			r.CurrentPlayerIndex = 0
		}

		if r.GameStatus == STATUS_PLAYING && len(r.Players) > 0 {
			r.ResetRound()
		}
	}

	// 房主迁移：顺延给剩余的第一位玩家
	if r.HostID == id {
		if len(r.Players) > 0 {
			r.HostID = r.Players[0].ID
		} else {
			r.HostID = ""
		}
	}

	return wasCurrentTurn
}

// Start 开始游戏，至少需要两名玩家
func (r *Room) Start() bool {
	if len(r.Players) < 2 {
		return false
	}

	r.GameStatus = STATUS_PLAYING
	r.CurrentPlayerIndex = 0
	r.ResetRound()

	return true
}

// Roll 执行一次投掷
// 桌面上已有骰子时必须先选中一组合法的计分骰，
// 其分数计入回合累积分后再投掷剩余的骰子；
// 全部选中则触发 hot dice，重新投六个
func (r *Room) Roll(playerID string) (*RollResult, error) {
	if r.GameStatus != STATUS_PLAYING {
		return nil, errors.New("Game not active")
	}
	if r.CurrentPlayer().ID != playerID {
		return nil, errors.New("Not your turn")
	}

	scoreFromSelection := 0

	if len(r.CurrentDice) > 0 {
		selected := make([]int, 0, len(r.CurrentDice))

		for _, d := range r.CurrentDice {
			if d.Selected {
				selected = append(selected, d.Value)
			}
		}

		if len(selected) == 0 {
			return nil, errors.New("Must select dice to re-roll")
		}

		if !IsScoringSelection(selected) {
			return nil, errors.New("Invalid selection")
		}

		scoreFromSelection = CalculateScore(selected)
		r.RoundAccumulatedScore += scoreFromSelection

		remaining := len(r.CurrentDice) - len(selected)
		if remaining == 0 {
			// hot dice：整组骰子都计分，重新投六个
			r.DiceCountToRoll = 6
		} else {
			r.DiceCountToRoll = remaining
		}
	}

	newDice := make([]*Die, 0, r.DiceCountToRoll)
	for i := 0; i < r.DiceCountToRoll; i++ {
		newDice = append(newDice, &Die{
			ID:       GenID(),
			Value:    r.RollDie(),
			Selected: false,
		})
	}

	r.CurrentDice = newDice

	rolledValues := make([]int, 0, len(newDice))
	for _, d := range newDice {
		rolledValues = append(rolledValues, d.Value)
	}

	return &RollResult{
		Dice:       newDice,
		Farkle:     !HasPossibleMoves(rolledValues),
		HotDice:    scoreFromSelection > 0 && r.DiceCountToRoll == 6,
		RoundScore: r.RoundAccumulatedScore,
	}, nil
}

// ToggleSelection 切换某个骰子的选中状态
// 此处不做计分校验，合法性在投掷和存分时统一检查
func (r *Room) ToggleSelection(playerID, dieID string) {
	if r.GameStatus != STATUS_PLAYING {
		return
	}
	if r.CurrentPlayer().ID != playerID {
		return
	}

	for _, d := range r.CurrentDice {
		if d.ID == dieID {
			d.Selected = !d.Selected
			return
		}
	}
}

// Bank 把选中骰子的分数和回合累积分存入玩家总分
// 没有选中骰子且回合累积分为 0 时不允许存 0 分
func (r *Room) Bank(playerID string) error {
	if r.GameStatus != STATUS_PLAYING {
		return errors.New("Game not active")
	}
	if r.CurrentPlayer().ID != playerID {
		return errors.New("Not your turn")
	}

	selected := make([]int, 0, len(r.CurrentDice))
	for _, d := range r.CurrentDice {
		if d.Selected {
			selected = append(selected, d.Value)
		}
	}

	scoreToAdd := 0

	if len(selected) > 0 {
		if !IsScoringSelection(selected) {
			return errors.New("Invalid selection")
		}
		scoreToAdd = CalculateScore(selected)
	} else if len(r.CurrentDice) > 0 && r.RoundAccumulatedScore == 0 {
		return errors.New("Cannot bank 0")
	}

	r.RoundAccumulatedScore += scoreToAdd
	r.Players[r.CurrentPlayerIndex].Score += r.RoundAccumulatedScore

	r.checkWinCondition()

	if r.GameStatus != STATUS_FINISHED {
		r.NextTurn()
	}

	return nil
}

// ResolveFarkle 结算一次 Farkle：清空回合分并移交回合
// 由调度器在广播投掷结果之后延迟调用
func (r *Room) ResolveFarkle() {
	r.RoundAccumulatedScore = 0
	r.NextTurn()
}

// ForceNextTurn 房主强制跳过当前回合，用于处理失联的玩家
func (r *Room) ForceNextTurn() {
	r.RoundAccumulatedScore = 0
	r.NextTurn()
}

// NextTurn 把回合移交给下一位玩家
// 最后一轮进行中且指针回到触发者时结束游戏
func (r *Room) NextTurn() {
	if len(r.Players) == 0 {
		return
	}

	r.CurrentPlayerIndex = (r.CurrentPlayerIndex + 1) % len(r.Players)
	r.ResetRound()

	if r.IsFinalRound && r.CurrentPlayerIndex == r.FinalRoundTriggeredBy {
		r.EndGame()
	}
}

// checkWinCondition 在存分后检查是否达到目标分
// 首次达到时进入最后一轮：其余每名玩家各有一次回合
func (r *Room) checkWinCondition() {
	p := r.Players[r.CurrentPlayerIndex]

	if p.Score >= WINNING_SCORE && !r.IsFinalRound {
		r.IsFinalRound = true
		r.FinalRoundTriggeredBy = r.CurrentPlayerIndex
	}
}

// EndGame 结束游戏并评出胜者，最高分相同视为平局
func (r *Room) EndGame() {
	r.GameStatus = STATUS_FINISHED

	sorted := make([]*Player, len(r.Players))
	copy(sorted, r.Players)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})

	if len(sorted) == 0 {
		return
	}

	if len(sorted) > 1 && sorted[0].Score == sorted[1].Score {
		r.Winner = WINNER_TIE
		return
	}

	winner := *sorted[0]
	r.Winner = &winner
}

// Restart 在一局结束后重新开赛：清零比分但保留玩家列表
func (r *Room) Restart() bool {
	if r.GameStatus != STATUS_FINISHED {
		return false
	}

	for _, p := range r.Players {
		p.Score = 0
	}

	r.CurrentPlayerIndex = 0
	r.ResetRound()
	r.IsFinalRound = false
	r.FinalRoundTriggeredBy = -1
	r.Winner = nil
	r.GameStatus = STATUS_PLAYING

	return true
}

// Snapshot 生成一份用于序列化的深拷贝
// 写协程在连接上序列化快照时，房间可能正在处理下一条动作，
// 因此不能直接引用房间内部的切片
func (r *Room) Snapshot() *Room {
	players := make([]*Player, len(r.Players))
	for i, p := range r.Players {
		cp := *p
		players[i] = &cp
	}

	dice := make([]*Die, len(r.CurrentDice))
	for i, d := range r.CurrentDice {
		cp := *d
		dice[i] = &cp
	}

	return &Room{
		RoomCode:              r.RoomCode,
		Players:               players,
		CurrentPlayerIndex:    r.CurrentPlayerIndex,
		RoundAccumulatedScore: r.RoundAccumulatedScore,
		DiceCountToRoll:       r.DiceCountToRoll,
		CurrentDice:           dice,
		IsFinalRound:          r.IsFinalRound,
		FinalRoundTriggeredBy: r.FinalRoundTriggeredBy,
		GameStatus:            r.GameStatus,
		Winner:                r.Winner,
		HostID:                r.HostID,
	}
}
