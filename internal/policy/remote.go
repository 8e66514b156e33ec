package policy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shaiso/mgdt/internal/atari"
	"github.com/shaiso/mgdt/internal/domain"
)

// ErrInference — inference сервер вернул ошибку.
var ErrInference = errors.New("inference request failed")

// RemotePolicy отправляет батч историй inference серверу.
//
// Протокол: POST {url}/v1/actions с историями и сэмплирующими
// параметрами, в ответ — по одному действию на окружение.
type RemotePolicy struct {
	url    string
	spec   domain.PolicySpec
	client *http.Client
}

// NewRemotePolicy создаёт политику для inference сервера из spec.
func NewRemotePolicy(spec domain.PolicySpec) (*RemotePolicy, error) {
	if spec.URL == "" {
		return nil, errors.New("remote policy requires url")
	}
	return &RemotePolicy{
		url:    spec.URL,
		spec:   spec,
		client: &http.Client{Timeout: 5 * time.Minute},
	}, nil
}

// actionRequest — тело запроса к inference серверу.
type actionRequest struct {
	Histories []atari.History `json:"histories"`

	ActionTemperature   float64 `json:"action_temperature,omitempty"`
	ReturnTemperature   float64 `json:"return_temperature,omitempty"`
	OptWeight           float64 `json:"opt_weight,omitempty"`
	NumSamples          int     `json:"num_samples,omitempty"`
	ActionTopPercentile float64 `json:"action_top_percentile,omitempty"`
}

// actionResponse — ответ inference сервера.
type actionResponse struct {
	Actions []int `json:"actions"`
}

// SelectActions запрашивает действия для батча.
func (p *RemotePolicy) SelectActions(ctx context.Context, histories []atari.History) ([]int, error) {
	body, err := json.Marshal(actionRequest{
		Histories:           histories,
		ActionTemperature:   p.spec.ActionTemperature,
		ReturnTemperature:   p.spec.ReturnTemperature,
		OptWeight:           p.spec.OptWeight,
		NumSamples:          p.spec.NumSamples,
		ActionTopPercentile: p.spec.ActionTopPercentile,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal inference request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url+"/v1/actions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInference, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, fmt.Errorf("%w: HTTP %d: %s", ErrInference, resp.StatusCode, string(raw))
	}

	var parsed actionResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode inference response: %w", err)
	}

	if len(parsed.Actions) != len(histories) {
		return nil, fmt.Errorf("%w: got %d actions for %d envs",
			ErrInference, len(parsed.Actions), len(histories))
	}
	for _, a := range parsed.Actions {
		if a < 0 || a >= atari.NumActions {
			return nil, fmt.Errorf("%w: action %d out of range", ErrInference, a)
		}
	}
	return parsed.Actions, nil
}

// Close ничего не освобождает: HTTP клиент переиспользует соединения.
func (p *RemotePolicy) Close() error {
	return nil
}
