package record

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mongoose-kitchen/mongoose/internal/orm/schema"
)

func TestSnapshot(t *testing.T) {
	s := NewSnapshot([]string{"id", "name"})

	assert.Nil(t, s.Get("id"))
	assert.Nil(t, s.Get("unknown"))

	s.Merge(schema.Row{"name": "rice", "extra": 1})
	assert.Equal(t, []string{"id", "name", "extra"}, s.Columns())

	m := s.Map()
	m["name"] = "changed"
	assert.Equal(t, "rice", s.Get("name"), "Map must return a copy")

	s.Reset([]string{"id", "name"})
	assert.Equal(t, []string{"id", "name"}, s.Columns())
	assert.Nil(t, s.Get("name"))
}

func TestRelations(t *testing.T) {
	r := NewRelations()

	_, ok := r.Get("ingredients")
	assert.False(t, ok)

	r.Set("ingredients", []schema.Row{})
	v, ok := r.Get("ingredients")
	assert.True(t, ok)
	assert.Empty(t, v)
	assert.Len(t, r.Map(), 1)

	r.Delete("ingredients")
	assert.Empty(t, r.Map())

	r.Set("recipes", nil)
	r.Clear()
	assert.Empty(t, r.Map())
}
