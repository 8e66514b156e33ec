package replay

import (
	"compress/gzip"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Поля шарда replay буфера.
const (
	FieldObservation = "observation"
	FieldAction      = "action"
	FieldReward      = "reward"
	FieldTerminal    = "terminal"
)

// Fields — все поля шарда в порядке чтения.
var Fields = []string{FieldObservation, FieldAction, FieldReward, FieldTerminal}

// ErrShardMismatch — массивы шарда имеют разную длину.
var ErrShardMismatch = errors.New("shard arrays have mismatched lengths")

// Shard — массивы одного чекпоинта, выровненные по шагам.
type Shard struct {
	Checkpoint int

	Observations *Array
	Actions      *Array
	Rewards      *Array
	Terminals    *Array
}

// Steps возвращает число шагов в шарде.
func (s *Shard) Steps() int {
	return s.Observations.Len()
}

// ShardFileName возвращает имя файла поля шарда в бакете и на диске:
// $store$_<field>_ckpt.<N>.gz.
func ShardFileName(field string, checkpoint int) string {
	return fmt.Sprintf("$store$_%s_ckpt.%d.gz", field, checkpoint)
}

// ShardFileNames возвращает имена всех четырёх файлов чекпоинта.
func ShardFileNames(checkpoint int) []string {
	names := make([]string, 0, len(Fields))
	for _, f := range Fields {
		names = append(names, ShardFileName(f, checkpoint))
	}
	return names
}

// ReadShard читает все поля чекпоинта из каталога.
func ReadShard(dir string, checkpoint int) (*Shard, error) {
	shard := &Shard{Checkpoint: checkpoint}
	for _, field := range Fields {
		arr, err := readGzipArray(filepath.Join(dir, ShardFileName(field, checkpoint)))
		if err != nil {
			return nil, fmt.Errorf("read field %s of checkpoint %d: %w", field, checkpoint, err)
		}
		switch field {
		case FieldObservation:
			shard.Observations = arr
		case FieldAction:
			shard.Actions = arr
		case FieldReward:
			shard.Rewards = arr
		case FieldTerminal:
			shard.Terminals = arr
		}
	}

	n := shard.Observations.Len()
	if shard.Actions.Len() != n || shard.Rewards.Len() != n || shard.Terminals.Len() != n {
		return nil, fmt.Errorf("%w: obs=%d act=%d rew=%d term=%d",
			ErrShardMismatch,
			shard.Observations.Len(), shard.Actions.Len(),
			shard.Rewards.Len(), shard.Terminals.Len())
	}
	return shard, nil
}

// readGzipArray открывает gzip файл и парсит NPY массив.
func readGzipArray(path string) (*Array, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("open gzip: %w", err)
	}
	defer gz.Close()

	return ReadArray(gz)
}
