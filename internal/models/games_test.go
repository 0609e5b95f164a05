package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGameChanges_Columns(t *testing.T) {
	t.Run("only supplied fields", func(t *testing.T) {
		name := "New Name"

		cols := GameChanges{Name: &name}.Columns()

		assert.Equal(t, map[string]any{"name": "New Name"}, cols)
	})

	t.Run("zero values are kept", func(t *testing.T) {
		empty := ""
		published := false

		cols := GameChanges{AppVersion: &empty, IsPublished: &published}.Columns()

		assert.Equal(t, map[string]any{"app_version": "", "is_published": false}, cols)
	})

	t.Run("empty", func(t *testing.T) {
		assert.Empty(t, GameChanges{}.Columns())
	})
}
