package binding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByLCY/scholar/dsl"
)

func sampleData() map[string]any {
	return map[string]any{
		"student": map[string]any{
			"first_name":  "Ada",
			"file_number": int64(4521),
			"courses":     []any{map[string]any{"title": "Algebra"}},
		},
		"university": struct{ Name string }{Name: "State University"},
	}
}

func TestInterpolate(t *testing.T) {
	got := Interpolate("cert-${student.file_number}-${student.unknown}", sampleData())
	assert.Equal(t, "cert-4521-${student.unknown}", got)
	assert.Equal(t, "plain", Interpolate("plain", nil))
}

func TestSplitPath(t *testing.T) {
	assert.Equal(t, []string{"student", "courses", "0", "title"}, SplitPath("student.courses[0].title"))
	assert.Equal(t, []string{"a", "b"}, SplitPath(`a["b"]`))
}

func TestResolve(t *testing.T) {
	data := sampleData()

	v, ok := Resolve(data, SplitPath("student.courses[0].title"))
	require.True(t, ok)
	assert.Equal(t, "Algebra", v)

	v, ok = Resolve(data, []string{"university", "Name"})
	require.True(t, ok)
	assert.Equal(t, "State University", v)

	_, ok = Resolve(data, []string{"student", "courses", "3"})
	assert.False(t, ok)
}

func TestMissingReportsAbsentPaths(t *testing.T) {
	a, err := dsl.Analyze(`
{{ student.first_name }} {{ student.last_name }} {{ faculty.name }}
{% for c in student.courses %}{{ c.title }}{% endfor %}
{{ student.first_name|upper }}`)
	require.NoError(t, err)

	assert.Equal(t, []string{"faculty.name", "student.last_name"}, Missing(sampleData(), a))
}

func TestMissingAcceptsAttributesOfScalars(t *testing.T) {
	a, err := dsl.Analyze(`{{ student.first_name.upper }}`)
	require.NoError(t, err)
	assert.Empty(t, Missing(sampleData(), a))
}

func TestMissingScopesLoopVariables(t *testing.T) {
	a, err := dsl.Analyze(`{% for student in students %}{{ student.name }}{% endfor %}{{ student.id }}`)
	require.NoError(t, err)

	data := map[string]any{"students": []any{map[string]any{"name": "Ada"}}}
	assert.Equal(t, []string{"student.id"}, Missing(data, a))
}

func TestMissingSkipsDefaultedPaths(t *testing.T) {
	a, err := dsl.Analyze(`{{ student.nickname|default:"-" }} {{ student.alias|upper|default:"" }} {{ student.title|upper }}`)
	require.NoError(t, err)

	assert.Equal(t, []string{"student.title"}, Missing(sampleData(), a))
}
