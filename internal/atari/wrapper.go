package atari

import "context"

// History — наблюдение фиксированной длины: последние N кадров
// вместе с действиями и наградами, которые к ним привели.
//
// Семантика слотов: Actions[i] и Rewards[i] — действие, применённое
// В кадре Observations[i], и награда, полученная ЗА него. Для текущего
// кадра действие ещё не известно, поэтому последний слот содержит
// placeholder (0). Terminals[i]=1 помечает padding до начала эпизода.
type History struct {
	Observations []Frame   `json:"observations"`
	Actions      []int32   `json:"actions"`
	Rewards      []float32 `json:"rewards"`
	Terminals    []int32   `json:"terminals"`
}

// SequenceWrapper оборачивает Env и подменяет наблюдение историей
// фиксированной длины.
//
// При reset история добивается N-1 "терминальными" нулевыми кадрами,
// чтобы первый шаг эпизода уже имел полный контекст. При step действие
// и награда записываются в предыдущий слот, а новый кадр добавляется
// с placeholder'ами.
type SequenceWrapper struct {
	env      Env
	numStack int

	obsStack  []Frame
	actStack  []int32
	rewStack  []float32
	doneStack []int32
}

// NewSequenceWrapper создаёт обёртку с историей из numStack кадров.
func NewSequenceWrapper(env Env, numStack int) *SequenceWrapper {
	if numStack < 1 {
		numStack = 1
	}
	return &SequenceWrapper{
		env:      env,
		numStack: numStack,
	}
}

// NumStack возвращает длину истории.
func (w *SequenceWrapper) NumStack() int {
	return w.numStack
}

// Reset начинает новый эпизод.
func (w *SequenceWrapper) Reset(ctx context.Context, seed int64) (History, error) {
	obs, err := w.env.Reset(ctx, seed)
	if err != nil {
		return History{}, err
	}

	w.obsStack = w.obsStack[:0]
	w.actStack = w.actStack[:0]
	w.rewStack = w.rewStack[:0]
	w.doneStack = w.doneStack[:0]

	// N-1 кадров "до начала эпизода".
	for i := 0; i < w.numStack-1; i++ {
		w.push(ZeroFrame(), 0, 0, 1)
	}

	// Текущий кадр с placeholder действием и наградой.
	w.push(obs, 0, 0, 0)

	return w.snapshot(), nil
}

// Step выполняет действие и возвращает обновлённую историю.
func (w *SequenceWrapper) Step(ctx context.Context, action int) (History, float64, bool, error) {
	if len(w.obsStack) == 0 {
		return History{}, 0, false, ErrEpisodeOver
	}

	// Действие применяется к текущему (последнему) кадру.
	w.actStack[len(w.actStack)-1] = int32(action)

	obs, rew, done, err := w.env.Step(ctx, action)
	if err != nil {
		return History{}, 0, false, err
	}

	// Награда за применённое действие — в тот же слот.
	w.rewStack[len(w.rewStack)-1] = float32(rew)

	// Новый кадр с неизвестным пока действием.
	w.push(obs, 0, 0, 0)

	return w.snapshot(), rew, done, nil
}

// Close закрывает обёрнутое окружение.
func (w *SequenceWrapper) Close() error {
	return w.env.Close()
}

// push добавляет кадр в историю, вытесняя самый старый.
func (w *SequenceWrapper) push(obs Frame, act int32, rew float32, done int32) {
	w.obsStack = append(w.obsStack, obs)
	w.actStack = append(w.actStack, act)
	w.rewStack = append(w.rewStack, rew)
	w.doneStack = append(w.doneStack, done)

	if len(w.obsStack) > w.numStack {
		w.obsStack = w.obsStack[1:]
		w.actStack = w.actStack[1:]
		w.rewStack = w.rewStack[1:]
		w.doneStack = w.doneStack[1:]
	}
}

// snapshot возвращает копию текущей истории.
func (w *SequenceWrapper) snapshot() History {
	h := History{
		Observations: make([]Frame, len(w.obsStack)),
		Actions:      make([]int32, len(w.actStack)),
		Rewards:      make([]float32, len(w.rewStack)),
		Terminals:    make([]int32, len(w.doneStack)),
	}
	for i, obs := range w.obsStack {
		frame := make(Frame, len(obs))
		copy(frame, obs)
		h.Observations[i] = frame
	}
	copy(h.Actions, w.actStack)
	copy(h.Rewards, w.rewStack)
	copy(h.Terminals, w.doneStack)
	return h
}
