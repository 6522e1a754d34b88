package service

import (
	"farkle-be/internal/service/game"
)

// 进程启动时创建的固定牌桌，运行期间不增不减
var DefaultRoomCodes = []string{
	"Table 1",
	"Table 2",
	"Table 3",
	"Table 4",
	"Table 5",
}

// Registry 持有全部房间，生命周期与进程一致
// 房间内部状态只能通过房间自身的方法修改，
// Registry 只负责查找和生成大厅概要
type Registry struct {
	order []string
	rooms map[string]*game.Room
}

func NewRegistry(codes ...string) *Registry {
	rg := &Registry{
		order: make([]string, 0, len(codes)),
		rooms: make(map[string]*game.Room, len(codes)),
	}

	for _, code := range codes {
		if _, exists := rg.rooms[code]; exists {
			continue
		}

		rg.order = append(rg.order, code)
		rg.rooms[code] = game.NewRoom(code)
	}

	return rg
}

func (rg *Registry) Get(code string) *game.Room {
	return rg.rooms[code]
}

// Rooms 按创建顺序返回所有房间
func (rg *Registry) Rooms() []*game.Room {
	rooms := make([]*game.Room, 0, len(rg.order))

	for _, code := range rg.order {
		rooms = append(rooms, rg.rooms[code])
	}

	return rooms
}

// Summaries 生成大厅列表，人数只统计在线玩家
func (rg *Registry) Summaries() []game.RoomSummary {
	summaries := make([]game.RoomSummary, 0, len(rg.order))

	for _, code := range rg.order {
		room := rg.rooms[code]

		count := 0
		for _, p := range room.Players {
			if p.Connected {
				count++
			}
		}

		summaries = append(summaries, game.RoomSummary{
			Name:   room.RoomCode,
			Count:  count,
			Max:    game.MAX_PLAYERS,
			Status: room.GameStatus,
		})
	}

	return summaries
}
