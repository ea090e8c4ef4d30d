package game

import "math/rand"

// 内置词库。客户端可以通过 PickWord 提交任意词，
// 词库只用于兜底的随机选词和给选词人的候选列表
var defaultWordBase = []string{
	"крокодил",
	"радуга",
	"велосипед",
	"чайник",
	"облако",
	"гитара",
	"маяк",
	"черепаха",
	"зонтик",
	"самовар",
	"компас",
	"водопад",
	"фонарь",
	"парашют",
	"мельница",
	"якорь",
	"подсолнух",
	"телескоп",
	"карусель",
	"снеговик",
}

const DEFAULT_WORD_VARIANTS = 3

func numberOfWordVariants(settings *Settings) int {
	if settings == nil || settings.NumberOfWordVariants <= 0 {
		return DEFAULT_WORD_VARIANTS
	}

	return settings.NumberOfWordVariants
}

func randomWord() string {
	return defaultWordBase[rand.Intn(len(defaultWordBase))]
}

// 为选词人生成 n 个互不相同的候选词
func wordVariants(n int) []string {
	if n <= 0 {
		return nil
	}

	if n > len(defaultWordBase) {
		n = len(defaultWordBase)
	}

	perm := rand.Perm(len(defaultWordBase))

	variants := make([]string, 0, n)
	for _, idx := range perm[:n] {
		variants = append(variants, defaultWordBase[idx])
	}

	return variants
}
