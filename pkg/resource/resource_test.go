package resource

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type shop struct {
	ID   uint
	Name string
}

func shopView(s shop) Map { return Map{"id": s.ID, "name": s.Name} }

func TestManyNeverNil(t *testing.T) {
	out := Many(shopView, nil)
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestOne(t *testing.T) {
	assert.Equal(t, Map{"id": uint(2), "name": "b"}, One(shopView, shop{2, "b"}))
	assert.Len(t, Many(shopView, []shop{{1, "a"}, {2, "b"}}), 2)
}
