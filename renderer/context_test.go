package renderer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextKeepsInsertionOrder(t *testing.T) {
	var c Context
	c.Set("student", 1)
	c.Set("specialty", 2)
	c.Set("generated_date", "x")
	c.Set("student", 3)

	assert.Equal(t, []string{"student", "specialty", "generated_date"}, c.Keys())
	assert.Equal(t, 3, c.Len())
	v, ok := c.Get("student")
	assert.True(t, ok)
	assert.Equal(t, 3, v)
	assert.False(t, c.Has("faculty"))
}

func TestContextMapIsACopy(t *testing.T) {
	c := NewContext(1)
	c.Set("a", "b")
	m := c.Map()
	m["a"] = "changed"
	v, _ := c.Get("a")
	assert.Equal(t, "b", v)
}

func TestContextFromMapHonoursOrder(t *testing.T) {
	c := ContextFromMap(map[string]any{"b": 2, "a": 1, "c": 3}, "c", "a", "missing")
	keys := c.Keys()
	assert.Equal(t, []string{"c", "a"}, keys[:2])
	assert.Equal(t, 3, c.Len())
}

func TestNewDocumentDerivesContentType(t *testing.T) {
	doc := NewDocument("DOCX", "certificate-7", []byte("x"))
	assert.Equal(t, "docx", doc.Format)
	assert.Equal(t, "certificate-7.docx", doc.Filename)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.wordprocessingml.document", doc.ContentType)
	assert.Equal(t, "application/octet-stream", ContentType("bin"))
}

func TestTemplateRefPath(t *testing.T) {
	ref := TemplateRef{Folder: "certificate", Name: "enrollment"}
	assert.Equal(t, "root/certificate/enrollment.odt", ref.Path("root", ".odt"))
	assert.Equal(t, "certificate/enrollment", ref.String())
}
