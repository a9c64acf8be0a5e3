package gateway

import (
	"testing"

	"catalogdash/domain"
	"catalogdash/pipeline"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeProducts_Tolerant(t *testing.T) {
	body := `[
		{"id":1,"title":"Shirt","price":20,"category":"clothing","rating":{"rate":4,"count":1}},
		{"id":2,"title":"Hat","price":null,"category":"accessories","rating":{"rate":3,"count":1}},
		{"id":3,"title":"Lamp","price":9,"category":"home","rating":"great"},
		{"id":4,"title":"Vase","price":9,"category":"home"},
		null,
		"junk",
		{"id":7,"title":42,"price":9,"category":"home","rating":{"rate":2,"count":1}}
	]`

	products, err := DecodeProducts([]byte(body))
	require.NoError(t, err)
	require.Len(t, products, 7)

	assert.True(t, products[0].Valid())
	assert.False(t, products[1].Price.Valid)
	assert.Equal(t, 3, products[2].ID)
	assert.Equal(t, "Lamp", products[2].Title, "fields around a mistyped rating are kept")
	assert.False(t, products[2].Rating.Rate.Valid)
	assert.False(t, products[3].Valid(), "missing rating leaves rate invalid")
	assert.Equal(t, domain.Product{}, products[4])
	assert.Equal(t, domain.Product{}, products[5])
	assert.Equal(t, 7, products[6].ID)
	assert.Empty(t, products[6].Title)

	for _, p := range products[1:] {
		assert.False(t, p.Valid())
	}
}

func TestDecodeProducts_MistypedExtraFieldsStayValid(t *testing.T) {
	body := `[
		{"id":1,"title":"Mug","price":8,"category":"kitchen","rating":{"rate":4,"count":120.0}},
		{"id":2,"title":"Cup","price":3,"category":"kitchen","rating":{"rate":5,"count":"12"}},
		{"id":3,"title":"Pan","price":30,"description":{"text":"steel"},"category":"kitchen","rating":{"rate":3,"count":4}},
		{"id":4,"title":"Pot","price":25,"category":"kitchen","image":7,"rating":{"rate":3.5,"count":2}}
	]`

	products, err := DecodeProducts([]byte(body))
	require.NoError(t, err)
	require.Len(t, products, 4)

	for i, p := range products {
		assert.Equal(t, i+1, p.ID)
		assert.True(t, p.Valid(), "record %d should stay valid", p.ID)
	}
	assert.Equal(t, "Mug", products[0].Title)
	assert.Equal(t, 4.0, products[0].Rating.Rate.Value)
	assert.Zero(t, products[0].Rating.Count)
	assert.Zero(t, products[1].Rating.Count)
	assert.Empty(t, products[2].Description)
	assert.Equal(t, 30.0, products[2].Price.Value)
	assert.Empty(t, products[3].Image)

	assert.Equal(t, []string{"kitchen"}, pipeline.Categories(products))
	assert.Equal(t, pipeline.Bounds{Min: 3, Max: 30}, pipeline.PriceBounds(products))
}

func TestDecodeProducts_NotAnArray(t *testing.T) {
	_, err := DecodeProducts([]byte(`{"id":1}`))
	require.Error(t, err)

	_, err = DecodeProducts([]byte(`not json`))
	require.Error(t, err)
}

func TestDecodeCatalog(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantIDs []int
		wantErr bool
	}{
		{"empty", "  \n", []int{}, false},
		{"array", `[{"id":1},{"id":2}]`, []int{1, 2}, false},
		{"ndjson", "{\"id\":1}\n\n{\"id\":7}\n", []int{1, 7}, false},
		{"single object", `{"id":4}`, []int{4}, false},
		{"broken ndjson line", "{\"id\":1}\n{\"id\":\n", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			products, err := DecodeCatalog([]byte(tt.input))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			ids := make([]int, 0, len(products))
			for _, p := range products {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}
