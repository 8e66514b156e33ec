package atari

import "sort"

// knownGames — игры, для которых в публичном бакете есть replay датасеты.
// 46 игр мульти-игрового датасета: 41 обучающая плюс 5 held-out.
var knownGames = map[string]bool{
	"Alien":          true,
	"Amidar":         true,
	"Assault":        true,
	"Asterix":        true,
	"Atlantis":       true,
	"BankHeist":      true,
	"BattleZone":     true,
	"BeamRider":      true,
	"Boxing":         true,
	"Breakout":       true,
	"Carnival":       true,
	"Centipede":      true,
	"ChopperCommand": true,
	"CrazyClimber":   true,
	"DemonAttack":    true,
	"DoubleDunk":     true,
	"Enduro":         true,
	"FishingDerby":   true,
	"Freeway":        true,
	"Frostbite":      true,
	"Gopher":         true,
	"Gravitar":       true,
	"Hero":           true,
	"IceHockey":      true,
	"Jamesbond":      true,
	"Kangaroo":       true,
	"Krull":          true,
	"KungFuMaster":   true,
	"MsPacman":       true,
	"NameThisGame":   true,
	"Phoenix":        true,
	"Pong":           true,
	"Pooyan":         true,
	"Qbert":          true,
	"Riverraid":      true,
	"RoadRunner":     true,
	"Robotank":       true,
	"Seaquest":       true,
	"SpaceInvaders":  true,
	"StarGunner":     true,
	"TimePilot":      true,
	"UpNDown":        true,
	"VideoPinball":   true,
	"WizardOfWor":    true,
	"YarsRevenge":    true,
	"Zaxxon":         true,
}

// IsKnownGame проверяет, есть ли игра в каталоге.
func IsKnownGame(name string) bool {
	return knownGames[name]
}

// KnownGames возвращает отсортированный список игр каталога.
func KnownGames() []string {
	games := make([]string, 0, len(knownGames))
	for g := range knownGames {
		games = append(games, g)
	}
	sort.Strings(games)
	return games
}
