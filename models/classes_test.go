package models

import (
	"testing"

	"github.com/nvr-ai/go-yolo/models/model"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestYOLOVOCClasses(t *testing.T) {
	require.Len(t, YOLOVOCClasses.Classes, 20)
	assert.Equal(t, OutputClass{0, "aeroplane"}, YOLOVOCClasses.Classes[0])
	assert.Equal(t, OutputClass{14, "person"}, YOLOVOCClasses.Classes[14])
	assert.Equal(t, OutputClass{19, "tvmonitor"}, YOLOVOCClasses.Classes[19])

	for i, c := range YOLOVOCClasses.Classes {
		assert.Equal(t, i, c.Index, "indices are zero-based and contiguous")
	}
}

func TestYOLOClasses(t *testing.T) {
	require.Len(t, YOLOClasses.Classes, 80)
	assert.Equal(t, "person", YOLOClasses.Classes[0].Name)
	assert.Equal(t, "toothbrush", YOLOClasses.Classes[79].Name)

	for i, c := range YOLOClasses.Classes {
		assert.Equal(t, i, c.Index, "indices are zero-based and contiguous")
	}
}

func TestAllClassSetsMatchModelFamilies(t *testing.T) {
	families := map[model.Family]int{
		model.ModelFamilyYOLO:    80,
		model.ModelFamilyYOLOVOC: 20,
	}

	require.Len(t, AllClassSets, len(families))
	for _, set := range AllClassSets {
		want, ok := families[set.Style]
		require.True(t, ok, "set %q has no model family", set.Style)
		assert.Len(t, set.Classes, want)
		assert.NotEqual(t, "__background__", set.Classes[0].Name)
	}
}

func TestClassManager(t *testing.T) {
	mgr := DefaultClassManager()

	t.Run("name by index", func(t *testing.T) {
		name, err := mgr.GetName(model.ModelFamilyYOLOVOC, 6)
		require.NoError(t, err)
		assert.Equal(t, "car", name)

		name, err = mgr.GetName(model.ModelFamilyYOLO, 2)
		require.NoError(t, err)
		assert.Equal(t, "car", name)
	})

	t.Run("index by name", func(t *testing.T) {
		idx, err := mgr.GetIndex(model.ModelFamilyYOLO, "dog")
		require.NoError(t, err)
		assert.Equal(t, 16, idx)
	})

	t.Run("map between styles", func(t *testing.T) {
		c, err := mgr.MapClass(model.ModelFamilyYOLOVOC, 14, model.ModelFamilyYOLO)
		require.NoError(t, err)
		assert.Equal(t, OutputClass{Index: 0, Name: "person"}, c)
	})

	t.Run("out of range", func(t *testing.T) {
		_, err := mgr.GetName(model.ModelFamilyYOLOVOC, 20)
		assert.True(t, errors.Is(err, ErrUnknownClass))

		_, err = mgr.GetName(model.ModelFamilyYOLOVOC, -1)
		assert.True(t, errors.Is(err, ErrUnknownClass))
	})

	t.Run("unknown name", func(t *testing.T) {
		_, err := mgr.MapClass(model.ModelFamilyYOLO, 0, model.Family("nope"))
		assert.Error(t, err)

		_, err = mgr.GetIndex(model.ModelFamilyYOLOVOC, "giraffe")
		assert.True(t, errors.Is(err, ErrUnknownClass))
	})

	t.Run("unregistered style", func(t *testing.T) {
		empty := NewClassManager()
		_, err := empty.GetName(model.ModelFamilyYOLO, 0)
		assert.Error(t, err)
	})
}

func TestNewClassManagerDoesNotMutateSets(t *testing.T) {
	set := OutputClassSet{Style: "custom", Classes: []OutputClass{{0, "a"}, {1, "b"}}}
	mgr := NewClassManager(set)

	assert.Nil(t, set.nameToIdx)

	idx, err := mgr.GetIndex("custom", "b")
	require.NoError(t, err)
	assert.Equal(t, 1, idx)
}

func TestLookupName(t *testing.T) {
	assert.Equal(t, "aeroplane", LookupName(model.ModelFamilyYOLOVOC, 0))
	assert.Equal(t, "person", LookupName(model.ModelFamilyYOLO, 0))
	assert.Equal(t, "", LookupName(model.ModelFamilyYOLOVOC, 99))
	assert.Equal(t, "", LookupName("unknown", 0))
}
