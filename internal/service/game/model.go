package game

// 游戏状态
const (
	STATUS_WAITING  = "waiting"
	STATUS_PLAYING  = "playing"
	STATUS_FINISHED = "finished"
)

// 平局时 Winner 字段的取值
const WINNER_TIE = "tie"

// 每个房间的玩家上限
const MAX_PLAYERS = 5

// Die 是一次投掷产生的单个骰子
// 每次投掷都会生成全新的骰子，旧的 id 不再复用
type Die struct {
	ID       string `json:"id"`
	Value    int    `json:"value"`
	Selected bool   `json:"selected"`
}

// Player 代表房间内的一名玩家
// ID 即连接标识，同名重连时会被替换成新连接的 ID
type Player struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Score     int    `json:"score"`
	Connected bool   `json:"connected"`
}

// Room 是单个房间的权威游戏状态
// 所有字段只允许由房间自身的状态机方法修改
type Room struct {
	RoomCode string `json:"roomCode"`

	// 玩家顺序即回合顺序（按加入顺序）
	Players            []*Player `json:"players"`
	CurrentPlayerIndex int       `json:"currentPlayerIndex"`

	// 回合内状态
	RoundAccumulatedScore int    `json:"roundAccumulatedScore"`
	DiceCountToRoll       int    `json:"diceCountToRoll"`
	CurrentDice           []*Die `json:"currentDice"`

	IsFinalRound bool `json:"isFinalRound"`
	// 触发最后一轮的玩家下标，-1 表示未触发
	FinalRoundTriggeredBy int `json:"finalRoundTriggeredBy"`

	GameStatus string `json:"gameStatus"`
	// 获胜玩家的快照，平局时为字符串 "tie"
	Winner any    `json:"winner"`
	HostID string `json:"hostId,omitempty"`

	// 骰子点数来源，测试中可替换为固定序列
	RollDie func() int `json:"-"`
}

// RoomSummary 是大厅列表里展示的房间概要
type RoomSummary struct {
	Name   string `json:"name"`
	Count  int    `json:"count"`
	Max    int    `json:"max"`
	Status string `json:"status"`
}
