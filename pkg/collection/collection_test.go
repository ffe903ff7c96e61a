package collection

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type node struct {
	ID     uint
	Parent uint
}

func TestGroupAndKey(t *testing.T) {
	nodes := []node{{1, 0}, {2, 1}, {3, 1}, {4, 2}}

	byParent := GroupBy(nodes, func(n node) uint { return n.Parent })
	assert.Equal(t, []node{{2, 1}, {3, 1}}, byParent[1])

	byID := KeyBy(nodes, func(n node) uint { return n.ID })
	assert.Equal(t, uint(2), byID[4].Parent)
}

func TestMapFilterUnique(t *testing.T) {
	ids := Map([]node{{1, 0}, {2, 1}}, func(n node) uint { return n.ID })
	assert.Equal(t, []uint{1, 2}, ids)
	assert.Equal(t, []int{2, 4}, Filter([]int{1, 2, 3, 4}, func(i int) bool { return i%2 == 0 }))
	assert.Equal(t, []uint{3, 1, 2}, Unique([]uint{3, 1, 3, 2, 1}))
}

func TestChunk(t *testing.T) {
	assert.Equal(t, [][]int{{1, 2}, {3, 4}, {5}}, Chunk([]int{1, 2, 3, 4, 5}, 2))
	assert.Nil(t, Chunk([]int{}, 3))
}
