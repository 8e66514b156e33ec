package replay

import (
	"errors"
	"math/rand"
)

// ErrNoEpisodes — в шарде нет ни одного завершённого эпизода.
var ErrNoEpisodes = errors.New("shard contains no complete episodes")

// Trajectory — один эпизод из replay буфера.
//
// ReturnsToGo[i] — сумма наград от шага i до конца эпизода,
// Timesteps[i] — номер шага внутри эпизода.
type Trajectory struct {
	Observations []uint8
	ObsRowSize   int

	Actions     []int32
	Rewards     []float32
	ReturnsToGo []float32
	Timesteps   []int32
}

// Steps возвращает длину траектории.
func (t *Trajectory) Steps() int {
	return len(t.Actions)
}

// Return возвращает суммарную награду эпизода.
func (t *Trajectory) Return() float64 {
	if len(t.ReturnsToGo) == 0 {
		return 0
	}
	return float64(t.ReturnsToGo[0])
}

// Observation возвращает срез кадра шага i без копирования.
func (t *Trajectory) Observation(i int) []uint8 {
	return t.Observations[i*t.ObsRowSize : (i+1)*t.ObsRowSize]
}

// SplitEpisodes режет шард на завершённые эпизоды по терминальным флагам.
//
// Хвост после последнего терминала отбрасывается: эпизод не завершён,
// его return неизвестен.
func SplitEpisodes(shard *Shard) ([]*Trajectory, error) {
	terms := shard.Terminals.Int32
	rowSize := shard.Observations.RowSize()

	var trajectories []*Trajectory
	start := 0
	for i, t := range terms {
		if t == 0 {
			continue
		}
		end := i + 1
		trajectories = append(trajectories, buildTrajectory(shard, rowSize, start, end))
		start = end
	}

	if len(trajectories) == 0 {
		return nil, ErrNoEpisodes
	}
	return trajectories, nil
}

// SampleTrajectories выбирает до n случайных эпизодов шарда.
// Выбор детерминирован для данного seed.
func SampleTrajectories(shard *Shard, n int, seed int64) ([]*Trajectory, error) {
	all, err := SplitEpisodes(shard)
	if err != nil {
		return nil, err
	}
	if n <= 0 || n >= len(all) {
		return all, nil
	}

	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(all), func(i, j int) {
		all[i], all[j] = all[j], all[i]
	})
	return all[:n], nil
}

// buildTrajectory собирает эпизод из шагов [start, end) шарда.
func buildTrajectory(shard *Shard, rowSize, start, end int) *Trajectory {
	n := end - start
	traj := &Trajectory{
		Observations: shard.Observations.Uint8[start*rowSize : end*rowSize],
		ObsRowSize:   rowSize,
		Actions:      shard.Actions.Int32[start:end],
		Rewards:      shard.Rewards.Float32[start:end],
		ReturnsToGo:  make([]float32, n),
		Timesteps:    make([]int32, n),
	}

	// Суффиксные суммы наград.
	var acc float32
	for i := n - 1; i >= 0; i-- {
		acc += traj.Rewards[i]
		traj.ReturnsToGo[i] = acc
	}
	for i := 0; i < n; i++ {
		traj.Timesteps[i] = int32(i)
	}
	return traj
}
