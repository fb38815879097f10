package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTerms(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  *string
		key  string
		want []string
	}{
		{name: "nil", raw: nil, key: "term", want: nil},
		{name: "blank", raw: StringPtr("  "), key: "term", want: nil},
		{name: "objects", raw: StringPtr(`[{"term":"data-quality","scheme":null},{"term":"go"}]`), key: "term", want: []string{"data-quality", "go"}},
		{name: "strings", raw: StringPtr(`["Jane Doe", "John"]`), key: "name", want: []string{"Jane Doe", "John"}},
		{name: "foreign key keeps its position", raw: StringPtr(`[{"label":"x"},{"name":"Ann"}]`), key: "name", want: []string{"", "Ann"}},
		{name: "blank and non-string items", raw: StringPtr(`["  ", 7, "go"]`), key: "term", want: []string{"", "", "go"}},
		{name: "empty array", raw: StringPtr(`[]`), key: "term", want: nil},
		{name: "not json", raw: StringPtr(`{broken`), key: "term", want: nil},
		{name: "object not array", raw: StringPtr(`{"term":"go"}`), key: "term", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseTerms(tt.raw, tt.key)
			assert.Equal(t, tt.want, got.Names)
			assert.Equal(t, tt.raw, got.Raw)
		})
	}
}

func TestFirstOf(t *testing.T) {
	t.Parallel()

	assert.Nil(t, FirstOf(nil))
	assert.Nil(t, FirstOf([]string{}))

	first := FirstOf([]string{"a", "b"})
	require.NotNil(t, first)
	assert.Equal(t, "a", *first)

	assert.Nil(t, FirstOf([]string{"", "b"}))
}

func TestFirstOfOnlyReadsElementZero(t *testing.T) {
	t.Parallel()

	tags := ParseTerms(StringPtr(`[{"x":1},{"term":"go"}]`), "term")
	assert.Nil(t, FirstOf(tags.Names))

	authors := ParseTerms(StringPtr(`[{"name":"Ada"},{"x":1}]`), "name")
	require.NotNil(t, FirstOf(authors.Names))
	assert.Equal(t, "Ada", *FirstOf(authors.Names))
}

func TestNewTermsRoundTrip(t *testing.T) {
	t.Parallel()

	terms := NewTerms("name", "Ada", "Grace")
	require.NotNil(t, terms.Raw)
	assert.JSONEq(t, `[{"name":"Ada"},{"name":"Grace"}]`, *terms.Raw)
	assert.Equal(t, []string{"Ada", "Grace"}, ParseTerms(terms.Raw, "name").Names)
}
