package game

// Farkle 计分规则
// 三个相同点数的骰子按下表计分，每多一个骰子倍率加一
// （四个 = 两倍，五个 = 三倍，六个 = 四倍）
// 不足三个时只有 1 和 5 单独计分
const (
	TRIPLE_1 = 1000
	TRIPLE_2 = 200
	TRIPLE_3 = 300
	TRIPLE_4 = 400
	TRIPLE_5 = 500
	TRIPLE_6 = 600

	SINGLE_1 = 100
	SINGLE_5 = 50

	// 六个骰子组成 1-6 顺子的固定分数
	STRAIGHT_SCORE = 1500

	// 获胜需要达到的总分
	WINNING_SCORE = 10000
)

var tripleValues = [7]int{0, TRIPLE_1, TRIPLE_2, TRIPLE_3, TRIPLE_4, TRIPLE_5, TRIPLE_6}

func countFaces(faces []int) [7]int {
	var counts [7]int

	for _, f := range faces {
		if f >= 1 && f <= 6 {
			counts[f]++
		}
	}

	return counts
}

func isStraight(faces []int) bool {
	if len(faces) != 6 {
		return false
	}

	counts := countFaces(faces)

	for f := 1; f <= 6; f++ {
		if counts[f] != 1 {
			return false
		}
	}

	return true
}

// CalculateScore 计算一组骰子点数的总分
func CalculateScore(faces []int) int {
	if len(faces) == 0 {
		return 0
	}

	if isStraight(faces) {
		return STRAIGHT_SCORE
	}

	counts := countFaces(faces)
	score := 0

	for face := 1; face <= 6; face++ {
		count := counts[face]

		if count >= 3 {
			// 三个起算，每多一个骰子倍率加一
			multiplier := count - 2
			score += tripleValues[face] * multiplier

			continue
		}

		// 不足三个时只有 1 和 5 计分
		if face == 1 {
			score += count * SINGLE_1
		}
		if face == 5 {
			score += count * SINGLE_5
		}
	}

	return score
}

// IsScoringSelection 判断一次选择是否合法
// 要求选中的每一个骰子都参与计分，否则会把废骰一起锁进分数里
func IsScoringSelection(faces []int) bool {
	if isStraight(faces) {
		return true
	}

	counts := countFaces(faces)

	for face := 1; face <= 6; face++ {
		count := counts[face]

		// 出现了不足三个的 2/3/4/6，整个选择无效
		if count > 0 && count < 3 && face != 1 && face != 5 {
			return false
		}
	}

	return true
}

// HasPossibleMoves 判断一次投掷是否存在任何可计分的子集
// 只要有 1、有 5 或任意点数凑满三个即可，否则为 Farkle
func HasPossibleMoves(faces []int) bool {
	counts := countFaces(faces)

	if counts[1] > 0 || counts[5] > 0 {
		return true
	}

	for face := 2; face <= 6; face++ {
		if counts[face] >= 3 {
			return true
		}
	}

	return false
}
