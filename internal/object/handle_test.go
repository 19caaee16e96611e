package object

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildgraph/bsi/internal/value"
)

type fakeEntity struct{ name string }

func TestHandleEqualityIsByEntityIdentity(t *testing.T) {
	e := &fakeEntity{name: "foo"}
	h1 := New(KindTarget, e, nil, "")
	h2 := New(KindTarget, e, nil, "")
	assert.True(t, h1.Equal(h2))

	h3 := New(KindTarget, &fakeEntity{name: "foo"}, nil, "")
	assert.False(t, h1.Equal(h3))
}

func TestHandleTruthyAlwaysTrue(t *testing.T) {
	h := New(KindFile, &fakeEntity{}, nil, "")
	assert.True(t, h.Truthy())
}

func TestHandleMethodRejectsPrivateNames(t *testing.T) {
	h := New(KindTarget, &fakeEntity{}, map[string]Method{
		"_private": func(h *Handle, args []value.Value, kwargs *value.Dict) (value.Value, error) {
			return value.Null{}, nil
		},
	}, "")
	_, err := h.Method("_private")
	require.Error(t, err)
}

func TestHandleMethodUnknownErrors(t *testing.T) {
	h := New(KindTarget, &fakeEntity{}, map[string]Method{}, "")
	_, err := h.Method("nope")
	require.Error(t, err)
}

func TestHandleMethodFound(t *testing.T) {
	called := false
	h := New(KindTarget, &fakeEntity{}, map[string]Method{
		"found": func(h *Handle, args []value.Value, kwargs *value.Dict) (value.Value, error) {
			called = true
			return value.Bool(true), nil
		},
	}, "")
	m, err := h.Method("found")
	require.NoError(t, err)
	v, err := m(h, nil, value.NewDict())
	require.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, value.Bool(true), v)
}

func TestHandleFreeze(t *testing.T) {
	h := New(KindConfigurationData, &fakeEntity{}, nil, "")
	assert.False(t, h.Frozen())
	h.Freeze()
	assert.True(t, h.Frozen())
}
