package engine

import (
	"sort"

	"github.com/shaiso/mgdt/internal/domain"
)

// ID узлов плана.
const (
	NodeWeights   = "weights"
	NodeAggregate = "aggregate"
)

// NodeFetch возвращает ID узла загрузки датасета игры.
func NodeFetch(game string) string {
	return "fetch:" + game
}

// NodeRollout возвращает ID узла rollout игры.
func NodeRollout(game string) string {
	return "rollout:" + game
}

// Node — узел плана оценки.
type Node struct {
	// ID — идентификатор узла ("weights", "fetch:Breakout", ...).
	ID string

	// Type — тип task, который выполняет узел.
	Type string

	// Game — имя игры для fetch/rollout узлов.
	Game string

	// InDegree — количество входящих рёбер (зависимостей).
	InDegree int

	// DependsOn — узлы, от которых зависит этот узел.
	DependsOn []*Node

	// Dependents — узлы, которые зависят от этого узла.
	Dependents []*Node
}

// Plan — DAG задач оценки benchmark.
type Plan struct {
	// Nodes — все узлы плана (ID → Node).
	Nodes map[string]*Node

	// RootNodes — узлы без зависимостей (точки входа).
	RootNodes []*Node

	// Order — топологически отсортированный список узлов.
	Order []*Node
}

// BuildPlan строит план оценки из BenchmarkSpec.
//
// Структура плана:
//   - "weights" — если нужна загрузка весов
//   - "fetch:<game>" — по узлу на игру, если нужны датасеты
//   - "rollout:<game>" — по узлу на игру; зависит от weights и fetch игры
//   - "aggregate" — зависит от всех rollout узлов
//
// Spec должен быть предварительно провалидирован через Validate.
func BuildPlan(spec *domain.BenchmarkSpec) (*Plan, error) {
	if err := Validate(spec); err != nil {
		return nil, err
	}

	plan := &Plan{Nodes: make(map[string]*Node)}

	var weightsNode *Node
	if spec.NeedsWeights() {
		weightsNode = plan.addNode(NodeWeights, domain.TaskTypeWeights, "")
	}

	aggregate := plan.addNode(NodeAggregate, domain.TaskTypeAggregate, "")

	for i := range spec.Games {
		game := spec.Games[i].Name

		var fetchNode *Node
		if spec.NeedsData() {
			fetchNode = plan.addNode(NodeFetch(game), domain.TaskTypeFetch, game)
		}

		rolloutNode := plan.addNode(NodeRollout(game), domain.TaskTypeRollout, game)
		if weightsNode != nil {
			plan.addEdge(weightsNode, rolloutNode)
		}
		if fetchNode != nil {
			plan.addEdge(fetchNode, rolloutNode)
		}
		plan.addEdge(rolloutNode, aggregate)
	}

	plan.findRootNodes()

	order, err := plan.topologicalSort()
	if err != nil {
		return nil, err
	}
	plan.Order = order

	return plan, nil
}

// addNode добавляет узел в план.
func (p *Plan) addNode(id, taskType, game string) *Node {
	node := &Node{
		ID:         id,
		Type:       taskType,
		Game:       game,
		DependsOn:  make([]*Node, 0),
		Dependents: make([]*Node, 0),
	}
	p.Nodes[id] = node
	return node
}

// addEdge добавляет ребро между узлами.
// Дубликаты игнорируются, чтобы не задвоить InDegree.
func (p *Plan) addEdge(from, to *Node) {
	for _, dep := range to.DependsOn {
		if dep.ID == from.ID {
			return
		}
	}
	from.Dependents = append(from.Dependents, to)
	to.DependsOn = append(to.DependsOn, from)
	to.InDegree++
}

// findRootNodes находит узлы без входящих рёбер.
func (p *Plan) findRootNodes() {
	p.RootNodes = make([]*Node, 0)
	for _, node := range p.Nodes {
		if node.InDegree == 0 {
			p.RootNodes = append(p.RootNodes, node)
		}
	}
	sort.Slice(p.RootNodes, func(i, j int) bool {
		return p.RootNodes[i].ID < p.RootNodes[j].ID
	})
}

// topologicalSort выполняет топологическую сортировку (алгоритм Кана).
// Возвращает ошибку при обнаружении цикла.
func (p *Plan) topologicalSort() ([]*Node, error) {
	inDegree := make(map[string]int)
	for id, node := range p.Nodes {
		inDegree[id] = node.InDegree
	}

	queue := make([]*Node, len(p.RootNodes))
	copy(queue, p.RootNodes)

	order := make([]*Node, 0, len(p.Nodes))

	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		order = append(order, node)

		for _, dependent := range node.Dependents {
			inDegree[dependent.ID]--
			if inDegree[dependent.ID] == 0 {
				queue = append(queue, dependent)
			}
		}
	}

	if len(order) != len(p.Nodes) {
		return nil, ErrCyclicDependency
	}
	return order, nil
}

// GetNode возвращает узел по ID.
func (p *Plan) GetNode(id string) *Node {
	return p.Nodes[id]
}

// Size возвращает количество узлов плана.
func (p *Plan) Size() int {
	return len(p.Nodes)
}

// GetReadyNodes возвращает узлы, готовые к выполнению.
//
// Узел готов, если все его зависимости завершены, а сам он ещё не
// завершён, не выполняется и не провален.
func (p *Plan) GetReadyNodes(completed, running, failed map[string]bool) []*Node {
	if completed == nil {
		completed = make(map[string]bool)
	}
	if running == nil {
		running = make(map[string]bool)
	}
	if failed == nil {
		failed = make(map[string]bool)
	}

	ready := make([]*Node, 0)
	for _, node := range p.Order {
		if completed[node.ID] || running[node.ID] || failed[node.ID] {
			continue
		}

		allDepsCompleted := true
		for _, dep := range node.DependsOn {
			if !completed[dep.ID] {
				allDepsCompleted = false
				break
			}
		}
		if allDepsCompleted {
			ready = append(ready, node)
		}
	}
	return ready
}

// IsComplete проверяет, все ли узлы завершены.
func (p *Plan) IsComplete(completed map[string]bool) bool {
	for _, node := range p.Nodes {
		if !completed[node.ID] {
			return false
		}
	}
	return true
}
