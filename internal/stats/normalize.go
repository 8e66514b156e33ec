package stats

// baseline — опубликованные скоры random и human игроков для одной игры.
type baseline struct {
	Random float64
	Human  float64
}

// baselines — таблица random/human скоров по играм Atari.
// Значения из литературы по Atari-57 (Mnih et al. / Wang et al.).
var baselines = map[string]baseline{
	"Alien":          {227.8, 7127.7},
	"Amidar":         {5.8, 1719.5},
	"Assault":        {222.4, 742.0},
	"Asterix":        {210.0, 8503.3},
	"Asteroids":      {719.1, 47388.7},
	"Atlantis":       {12850.0, 29028.1},
	"BankHeist":      {14.2, 753.1},
	"BattleZone":     {2360.0, 37187.5},
	"BeamRider":      {363.9, 16926.5},
	"Berzerk":        {123.7, 2630.4},
	"Bowling":        {23.1, 160.7},
	"Boxing":         {0.1, 12.1},
	"Breakout":       {1.7, 30.5},
	"Centipede":      {2090.9, 12017.0},
	"ChopperCommand": {811.0, 7387.8},
	"CrazyClimber":   {10780.5, 35829.4},
	"DemonAttack":    {152.1, 1971.0},
	"DoubleDunk":     {-18.6, -16.4},
	"Enduro":         {0.0, 860.5},
	"FishingDerby":   {-91.7, -38.7},
	"Freeway":        {0.0, 29.6},
	"Frostbite":      {65.2, 4334.7},
	"Gopher":         {257.6, 2412.5},
	"Gravitar":       {173.0, 3351.4},
	"Hero":           {1027.0, 30826.4},
	"IceHockey":      {-11.2, 0.9},
	"Jamesbond":      {29.0, 302.8},
	"Kangaroo":       {52.0, 3035.0},
	"Krull":          {1598.0, 2665.5},
	"KungFuMaster":   {258.5, 22736.3},
	"MsPacman":       {307.3, 6951.6},
	"NameThisGame":   {2292.3, 8049.0},
	"Phoenix":        {761.4, 7242.6},
	"Pong":           {-20.7, 14.6},
	"Qbert":          {163.9, 13455.0},
	"Riverraid":      {1338.5, 17118.0},
	"RoadRunner":     {11.5, 7845.0},
	"Robotank":       {2.2, 11.9},
	"Seaquest":       {68.4, 42054.7},
	"SpaceInvaders":  {148.0, 1668.7},
	"StarGunner":     {664.0, 10250.0},
	"TimePilot":      {3568.0, 5229.2},
	"UpNDown":        {533.4, 11693.2},
	"VideoPinball":   {16256.9, 17667.9},
	"WizardOfWor":    {563.5, 4756.5},
	"YarsRevenge":    {3092.9, 54576.9},
	"Zaxxon":         {32.5, 9173.3},
}

// HumanNormalized возвращает human-normalized score для игры:
// (score - random) / (human - random).
// Второй результат false, если для игры нет опубликованных baseline'ов.
func HumanNormalized(game string, score float64) (float64, bool) {
	b, ok := baselines[game]
	if !ok {
		return 0, false
	}
	return (score - b.Random) / (b.Human - b.Random), true
}

// HumanNormalizedAll нормализует каждую сумму наград выборки.
// Второй результат false, если для игры нет baseline'ов.
func HumanNormalizedAll(game string, scores []float64) ([]float64, bool) {
	if _, ok := baselines[game]; !ok {
		return nil, false
	}
	normalized := make([]float64, len(scores))
	for i, s := range scores {
		normalized[i], _ = HumanNormalized(game, s)
	}
	return normalized, true
}

// HasBaseline проверяет наличие baseline'ов для игры.
func HasBaseline(game string) bool {
	_, ok := baselines[game]
	return ok
}
