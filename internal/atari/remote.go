package atari

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultGatewayTimeout = 60 * time.Second

// RemoteEnv — окружение, шагающее через HTTP env-gateway.
//
// Gateway держит пул живых эмуляторов и отдаёт обработанные кадры
// (grayscale 84x84, frame skip уже применён). Протокол:
//
//	POST   {base}/envs                  {"game": "Breakout"}  → {"env_id": "..."}
//	POST   {base}/envs/{id}/reset       {"seed": 123}         → {"observation": <base64>}
//	POST   {base}/envs/{id}/step        {"action": 4}         → {"observation", "reward", "done"}
//	DELETE {base}/envs/{id}
type RemoteEnv struct {
	baseURL string
	game    string
	envID   string
	client  *http.Client
}

// NewRemoteEnv создаёт окружение для игры на указанном gateway.
// Выполняет POST /envs для аллокации эмулятора.
func NewRemoteEnv(ctx context.Context, baseURL, game string) (*RemoteEnv, error) {
	e := &RemoteEnv{
		baseURL: baseURL,
		game:    game,
		client:  &http.Client{Timeout: defaultGatewayTimeout},
	}

	var resp struct {
		EnvID string `json:"env_id"`
	}
	if err := e.post(ctx, "/envs", map[string]any{"game": game}, &resp); err != nil {
		return nil, fmt.Errorf("allocate env for %s: %w", game, err)
	}
	if resp.EnvID == "" {
		return nil, fmt.Errorf("%w: empty env_id", ErrGateway)
	}
	e.envID = resp.EnvID
	return e, nil
}

// Game возвращает имя игры.
func (e *RemoteEnv) Game() string {
	return e.game
}

// Reset начинает новый эпизод.
func (e *RemoteEnv) Reset(ctx context.Context, seed int64) (Frame, error) {
	var resp struct {
		Observation []byte `json:"observation"`
	}
	err := e.post(ctx, "/envs/"+e.envID+"/reset", map[string]any{"seed": seed}, &resp)
	if err != nil {
		return nil, fmt.Errorf("reset env %s: %w", e.envID, err)
	}
	return e.checkFrame(resp.Observation)
}

// Step выполняет действие.
func (e *RemoteEnv) Step(ctx context.Context, action int) (Frame, float64, bool, error) {
	if action < 0 || action >= NumActions {
		return nil, 0, false, fmt.Errorf("%w: %d", ErrInvalidAction, action)
	}

	var resp struct {
		Observation []byte  `json:"observation"`
		Reward      float64 `json:"reward"`
		Done        bool    `json:"done"`
	}
	err := e.post(ctx, "/envs/"+e.envID+"/step", map[string]any{"action": action}, &resp)
	if err != nil {
		return nil, 0, false, fmt.Errorf("step env %s: %w", e.envID, err)
	}

	frame, err := e.checkFrame(resp.Observation)
	if err != nil {
		return nil, 0, false, err
	}
	return frame, resp.Reward, resp.Done, nil
}

// Close освобождает эмулятор на gateway.
func (e *RemoteEnv) Close() error {
	if e.envID == "" {
		return nil
	}
	req, err := http.NewRequest(http.MethodDelete, e.baseURL+"/envs/"+e.envID, nil)
	if err != nil {
		return err
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("release env %s: %w", e.envID, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	e.envID = ""
	return nil
}

// post выполняет POST с JSON телом и парсит JSON ответ.
func (e *RemoteEnv) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrGateway, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return fmt.Errorf("%w: HTTP %d: %s", ErrGateway, resp.StatusCode, string(raw))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// checkFrame валидирует размер кадра от gateway.
func (e *RemoteEnv) checkFrame(obs []byte) (Frame, error) {
	if len(obs) != FrameLen {
		return nil, fmt.Errorf("%w: frame size %d, want %d", ErrGateway, len(obs), FrameLen)
	}
	return Frame(obs), nil
}
