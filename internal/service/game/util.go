package game

import (
	"github.com/google/uuid"
)

// GenID 生成一个足够短且足够不重复的标识
// 用于骰子 id 和连接 id，不承诺任何密码学强度
func GenID() string {
	id, err := uuid.NewV7()
	if err != nil {
		panic("Failed to generate UUID: " + err.Error())
	}

	s := id.String()

	return s[len(s)-12:]
}
