package container

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
)

type cat struct{}

type box[T any] struct{ v T }

func TestParamName(t *testing.T) {
	tests := map[string]string{
		"Cat":             "cat",
		"CatsController":  "cats_controller",
		"ICatsRepository": "icats_repository",
		"HTTPServer":      "http_server",
		"UserID":          "user_id",
		"already_snake":   "already_snake",
	}
	for in, want := range tests {
		assert.Equal(t, want, paramName(in), in)
	}
}

func TestShortName(t *testing.T) {
	tests := []struct {
		key  Key
		name string
		ok   bool
	}{
		{TypeKey[*cat](), "cat", true},
		{TypeKey[**cat](), "cat", true},
		{TypeKey[cat](), "cat", true},
		{TypeKey[[]int](), "", false},
		{TypeKey[box[int]](), "", false},
		{Name("config"), "config", true},
		{Name("app.config"), "app.config", false},
	}
	for _, tt := range tests {
		name, ok := shortName(tt.key)
		assert.Equal(t, tt.ok, ok, tt.key.String())
		if tt.ok {
			assert.Equal(t, tt.name, name, tt.key.String())
		}
	}
}

func TestKey(t *testing.T) {
	assert.Equal(t, KeyOf(reflect.TypeFor[*cat]()), TypeKey[*cat]())
	assert.NotEqual(t, TypeKey[*cat](), Name("cat"))
	assert.True(t, Name("cat").IsName())
	assert.False(t, TypeKey[*cat]().IsName())
	assert.True(t, Key{}.IsZero())
	assert.Equal(t, "<none>", Key{}.String())
	assert.Equal(t, "*container.cat", TypeKey[*cat]().String())
	assert.Nil(t, Name("cat").Type())

	text, err := Name("cat").MarshalText()
	assert.NoError(t, err)
	assert.Equal(t, "cat", string(text))
}

func TestErrorIsMatchesByCode(t *testing.T) {
	err := errCircularDependency([]Key{Name("a"), Name("b"), Name("a")})
	assert.ErrorIs(t, err, ErrCircularDependency)
	assert.NotErrorIs(t, err, ErrDuplicateRegistration)
	assert.Equal(t, "container: circular dependency: a -> b -> a", err.Error())
}
