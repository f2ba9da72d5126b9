package utils_test

import (
	"reflect"
	"testing"

	"oolang.dev/compiler/pkg/utils"
)

func TestOrderedMap(t *testing.T) {
	test := func(om *utils.OrderedMap[string, int], wantKeys []string, wantValues []int) {
		if got := om.Keys(); !reflect.DeepEqual(got, wantKeys) {
			t.Errorf("expected keys %v, got %v", wantKeys, got)
		}
		if got := om.Entries(); !reflect.DeepEqual(got, wantValues) {
			t.Errorf("expected values %v, got %v", wantValues, got)
		}
	}

	t.Run("preserves insertion order", func(t *testing.T) {
		om := utils.OrderedMap[string, int]{}
		om.Set("c", 3)
		om.Set("a", 1)
		om.Set("b", 2)

		test(&om, []string{"c", "a", "b"}, []int{3, 1, 2})
	})

	t.Run("re-setting a key keeps its original position", func(t *testing.T) {
		om := utils.OrderedMap[string, int]{}
		om.Set("a", 1)
		om.Set("b", 2)
		om.Set("a", 10)

		test(&om, []string{"a", "b"}, []int{10, 2})
	})

	t.Run("Get reports presence", func(t *testing.T) {
		om := utils.OrderedMap[string, int]{}
		om.Set("a", 1)

		if v, ok := om.Get("a"); !ok || v != 1 {
			t.Errorf("expected (1, true), got (%d, %v)", v, ok)
		}
		if _, ok := om.Get("missing"); ok {
			t.Errorf("expected missing key to report false")
		}
	})
}
