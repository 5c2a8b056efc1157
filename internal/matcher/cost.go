package matcher

import (
	"math"

	"github.com/ludo-technologies/astdiff/internal/tree"
)

// CostModel defines the interface for calculating edit operation costs
type CostModel interface {
	// Insert returns the cost of inserting a node
	Insert(node *tree.Node) float64

	// Delete returns the cost of deleting a node
	Delete(node *tree.Node) float64

	// Rename returns the cost of turning node1 into node2.
	// Nodes of different types must never be renamed into each other.
	Rename(node1, node2 *tree.Node) float64
}

// UniformCostModel charges 1 for every insert, delete and label change
type UniformCostModel struct{}

// NewUniformCostModel creates a new uniform cost model
func NewUniformCostModel() *UniformCostModel {
	return &UniformCostModel{}
}

// Insert returns the cost of inserting a node (always 1.0)
func (c *UniformCostModel) Insert(node *tree.Node) float64 {
	return 1.0
}

// Delete returns the cost of deleting a node (always 1.0)
func (c *UniformCostModel) Delete(node *tree.Node) float64 {
	return 1.0
}

// Rename is free for identical payloads, 1 for a label change and infinite
// across types.
func (c *UniformCostModel) Rename(node1, node2 *tree.Node) float64 {
	if node1.Type() != node2.Type() {
		return math.Inf(1)
	}
	if node1.Label() == node2.Label() {
		return 0.0
	}
	return 1.0
}

// WeightedCostModel allows custom weights for different operation types
type WeightedCostModel struct {
	InsertWeight  float64
	DeleteWeight  float64
	RenameWeight  float64
	BaseCostModel CostModel
}

// NewWeightedCostModel creates a new weighted cost model
func NewWeightedCostModel(insertWeight, deleteWeight, renameWeight float64, baseCostModel CostModel) *WeightedCostModel {
	if baseCostModel == nil {
		baseCostModel = NewUniformCostModel()
	}
	return &WeightedCostModel{
		InsertWeight:  insertWeight,
		DeleteWeight:  deleteWeight,
		RenameWeight:  renameWeight,
		BaseCostModel: baseCostModel,
	}
}

// Insert returns the weighted cost of inserting a node
func (c *WeightedCostModel) Insert(node *tree.Node) float64 {
	return c.InsertWeight * c.BaseCostModel.Insert(node)
}

// Delete returns the weighted cost of deleting a node
func (c *WeightedCostModel) Delete(node *tree.Node) float64 {
	return c.DeleteWeight * c.BaseCostModel.Delete(node)
}

// Rename returns the weighted cost of renaming node1 to node2
func (c *WeightedCostModel) Rename(node1, node2 *tree.Node) float64 {
	base := c.BaseCostModel.Rename(node1, node2)
	if math.IsInf(base, 1) {
		return base
	}
	return c.RenameWeight * base
}
