package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nalyk/shopbot/internal/navigation"
)

func TestParseItemsJSONGroupsByProduct(t *testing.T) {
	content := []byte(`[
		{"product_id": 1, "private_data": "key-a"},
		{"product_id": 2, "private_data": "key-b"},
		{"product_id": 1, "private_data": "key-c"}
	]`)

	batches, err := ParseItemsJSON(content, navigation.RootCategoryID)
	require.NoError(t, err)
	assert.Equal(t, []string{"key-a", "key-c"}, batches[1])
	assert.Equal(t, []string{"key-b"}, batches[2])
}

func TestParseItemsJSONFallsBackToTarget(t *testing.T) {
	content := []byte(`[{"private_data": "key-a"}]`)

	batches, err := ParseItemsJSON(content, 7)
	require.NoError(t, err)
	assert.Equal(t, []string{"key-a"}, batches[7])
}

func TestParseItemsJSONErrors(t *testing.T) {
	cases := map[string][]byte{
		"not json":          []byte("{broken"),
		"empty array":       []byte("[]"),
		"missing data":      []byte(`[{"product_id": 1}]`),
		"no target at root": []byte(`[{"private_data": "x"}]`),
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseItemsJSON(content, navigation.RootCategoryID)
			assert.Error(t, err)
		})
	}
}

func TestParseItemsText(t *testing.T) {
	batches, err := ParseItemsText([]byte("one\r\ntwo\n\n  three  \n"), 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two", "three"}, batches[5])
}

func TestParseItemsTextRequiresTarget(t *testing.T) {
	_, err := ParseItemsText([]byte("one"), navigation.RootCategoryID)
	assert.Error(t, err)
}

func TestParseItemsTextEmpty(t *testing.T) {
	_, err := ParseItemsText([]byte("\n\n\n"), 5)
	assert.Error(t, err)
}
