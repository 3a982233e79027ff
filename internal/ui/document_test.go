package ui

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocument_RowLocator(t *testing.T) {
	doc := NewDocument(true)
	doc.AddRow(RowSpec{ProductID: "7", Title: "Belt", Price: 650, Quantity: 1})
	doc.AddRow(RowSpec{ProductID: "8", Title: "Holster", Price: 1250, Quantity: 3})
	regions := doc.Regions()

	row, ok := regions.Row("8")
	require.True(t, ok)
	assert.Equal(t, 3, row.(*RowElement).State().Quantity)

	_, ok = regions.Row("missing")
	assert.False(t, ok)

	// second lookup is served from the index
	again, ok := regions.Row("8")
	require.True(t, ok)
	assert.Same(t, row, again)

	row.Remove()
	_, ok = regions.Row("8")
	assert.False(t, ok, "removed rows are not found")
}

func TestRegions_NilLocator(t *testing.T) {
	_, ok := Regions{}.Row("1")
	assert.False(t, ok)
}

func TestDocument_InitialButtonState(t *testing.T) {
	doc := NewDocument(false)
	low := doc.AddRow(RowSpec{ProductID: "1", Quantity: 1})
	high := doc.AddRow(RowSpec{ProductID: "2", Quantity: 99})

	assert.True(t, low.State().DecreaseDisabled)
	assert.False(t, low.State().IncreaseDisabled)
	assert.False(t, high.State().DecreaseDisabled)
	assert.True(t, high.State().IncreaseDisabled)
}

func TestDocument_RowWithoutInputKeepsQuantity(t *testing.T) {
	doc := NewDocument(false)
	r := doc.AddRow(RowSpec{ProductID: "1", Quantity: 2, NoInput: true, NoButtons: true})

	r.SetQuantity(5)
	r.SetDecreaseDisabled(true)
	r.SetIncreaseDisabled(true)

	assert.False(t, r.HasQuantityInput())
	s := r.State()
	assert.Equal(t, 2, s.Quantity)
	assert.False(t, s.DecreaseDisabled)
	assert.False(t, s.IncreaseDisabled)
}

func TestDocument_SummaryAndRender(t *testing.T) {
	doc := NewDocument(true)
	link := doc.AddLink("/cart/", true)
	r := doc.AddRow(RowSpec{ProductID: "42", Title: "Belt", Price: 650, Quantity: 2})
	toast := doc.Regions().Toast

	link.Badge.SetText("2")
	link.Badge.SetVisible(true)
	r.SetRemoving(true)
	toast.SetMessage("Added")
	toast.SetKind(KindSuccess)
	toast.SetVisible(true)

	_, ok := doc.Total()
	assert.False(t, ok)
	doc.ApplySummary(1250.5)
	total, ok := doc.Total()
	require.True(t, ok)
	assert.Equal(t, 1250.5, total)

	var buf bytes.Buffer
	require.NoError(t, doc.Render(&buf))
	out := buf.String()
	assert.Contains(t, out, "[/cart/ (2)]")
	assert.Contains(t, out, "#42")
	assert.Contains(t, out, "(removing)")
	assert.Contains(t, out, "1,250.50")
	assert.Contains(t, out, "<success> Added")
}

func TestDocument_RenderEmpty(t *testing.T) {
	doc := NewDocument(false)
	r := doc.AddRow(RowSpec{ProductID: "1", Quantity: 1})
	r.Remove()
	doc.Reload()

	var buf bytes.Buffer
	require.NoError(t, doc.Render(&buf))
	assert.Contains(t, buf.String(), "cart is empty")
	assert.Equal(t, 1, doc.Reloads())
}
